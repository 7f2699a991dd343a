package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/lootgrid/api/sse"
	"github.com/kasuganosora/lootgrid/audit"
	"github.com/kasuganosora/lootgrid/cache"
	"github.com/kasuganosora/lootgrid/config"
	"github.com/kasuganosora/lootgrid/game/holder"
	"github.com/kasuganosora/lootgrid/game/lootbag"
	mw "github.com/kasuganosora/lootgrid/middleware"
	"github.com/kasuganosora/lootgrid/scheduler"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Deps are the services the HTTP API is built on.
type Deps struct {
	Holders   *holder.Manager
	LootBags  *lootbag.Manager
	Scheduler *scheduler.Scheduler
	Audit     *audit.Service
	PubSub    cache.PubSub
	Server    config.ServerConfig
	Security  config.SecurityConfig
	Logger    *zap.Logger
}

// NewRouter builds the gin engine with every route and middleware.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(mw.TraceID(), mw.Logger(d.Logger, "/health"), mw.Recovery(d.Logger))
	if d.Security.RateLimitRPS > 0 {
		r.Use(mw.RateLimit(rate.Limit(d.Security.RateLimitRPS), d.Security.RateLimitBurst))
	}

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	invH := NewInventoryHandler(d.Holders, d.Audit, d.Logger)
	bagH := NewLootBagHandler(d.LootBags, d.Holders, d.Logger)
	adminH := NewAdminHandler(d.Holders, d.LootBags, d.Scheduler, d.Audit, d.Logger)

	api := r.Group("/api")
	{
		invG := api.Group("/inventories")
		invH.Register(invG)
		if d.PubSub != nil {
			sseH := sse.NewHandler(d.PubSub, d.Holders, d.Logger)
			invG.GET("/:owner/events", sseH.ServeSSE)
		}

		api.GET("/lootbags", bagH.List)
		api.GET("/lootbags/:id", bagH.Get)
		api.POST("/lootbags/:id/take", bagH.Take)
		api.GET("/maps/:map/drops", bagH.Recent)

		adminG := api.Group("/admin")
		adminG.Use(mw.IPWhitelist(d.Security.AdminIPs), mw.AdminAuth(d.Server.AdminKey))
		adminG.GET("/metrics", adminH.Metrics)
		adminG.GET("/scheduler", adminH.ListSchedulerTasks)
		adminG.POST("/save", adminH.Save)
		adminG.POST("/lootbags/sweep", adminH.SweepLootBags)
		adminG.GET("/audit/:owner", adminH.AuditTrail)
	}
	return r
}
