package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/lootgrid/audit"
	"github.com/kasuganosora/lootgrid/game/holder"
	"github.com/kasuganosora/lootgrid/game/lootbag"
	"github.com/kasuganosora/lootgrid/scheduler"
	"go.uber.org/zap"
)

// AdminHandler handles admin-only REST endpoints.
// Routes should be protected by middleware.AdminAuth.
type AdminHandler struct {
	holders *holder.Manager
	bags    *lootbag.Manager
	sched   *scheduler.Scheduler
	audit   *audit.Service
	logger  *zap.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(
	holders *holder.Manager,
	bags *lootbag.Manager,
	sched *scheduler.Scheduler,
	auditSvc *audit.Service,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{holders: holders, bags: bags, sched: sched, audit: auditSvc, logger: logger}
}

// Metrics returns live counters.
// GET /api/admin/metrics
func (h *AdminHandler) Metrics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"open_inventories": h.holders.Count(),
		"loot_bags":        h.bags.Count(),
		"scheduler_tasks":  len(h.sched.Stats()),
	})
}

// ListSchedulerTasks returns run statistics of every scheduler task.
// GET /api/admin/scheduler
func (h *AdminHandler) ListSchedulerTasks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tasks": h.sched.Stats()})
}

// Save writes every dirty inventory now.
// POST /api/admin/save
func (h *AdminHandler) Save(c *gin.Context) {
	n, err := h.holders.SaveDirty(c.Request.Context())
	if err != nil {
		h.logger.Error("admin save failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "saved": n})
		return
	}
	h.logger.Info("admin forced save", zap.Int("saved", n))
	c.JSON(http.StatusOK, gin.H{"saved": n})
}

// SweepLootBags removes empty and expired loot bags now.
// POST /api/admin/lootbags/sweep
func (h *AdminHandler) SweepLootBags(c *gin.Context) {
	var removed int
	h.holders.Exclusive(func() { removed = h.bags.Sweep(time.Now()) })
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

// AuditTrail returns recent audit entries of an owner.
// GET /api/admin/audit/:owner?limit=
func (h *AdminHandler) AuditTrail(c *gin.Context) {
	ownerID, err := strconv.ParseInt(c.Param("owner"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid owner id"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 || limit > 500 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}
	logs, err := h.audit.Recent(c.Request.Context(), ownerID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": logs})
}
