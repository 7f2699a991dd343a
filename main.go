package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	apirest "github.com/kasuganosora/lootgrid/api/rest"
	"github.com/kasuganosora/lootgrid/audit"
	"github.com/kasuganosora/lootgrid/cache"
	"github.com/kasuganosora/lootgrid/config"
	dbadapter "github.com/kasuganosora/lootgrid/db"
	"github.com/kasuganosora/lootgrid/game/holder"
	"github.com/kasuganosora/lootgrid/game/item"
	"github.com/kasuganosora/lootgrid/game/lootbag"
	"github.com/kasuganosora/lootgrid/model"
	"github.com/kasuganosora/lootgrid/resource"
	"github.com/kasuganosora/lootgrid/scheduler"
	"go.uber.org/zap"
)

func main() {
	cfgPath := "config/config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ---- Logger ----
	var logger *zap.Logger
	var logErr error
	if cfg.Server.Debug {
		logger, logErr = zap.NewDevelopment()
	} else {
		logger, logErr = zap.NewProduction()
	}
	if logErr != nil {
		log.Fatalf("logger: %v", logErr)
	}
	defer logger.Sync()

	if cfg.Server.AdminKey == "" {
		logger.Warn("server.admin_key is not set; admin endpoints are disabled")
	}

	// ---- Database ----
	db, err := dbadapter.Open(cfg.Database)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	logger.Info("DB initialized", zap.String("mode", cfg.Database.Mode))

	// ---- Audit ----
	auditSvc := audit.New(db, logger)
	defer auditSvc.Stop(context.Background())

	// ---- Cache / PubSub ----
	cacheConfig := cache.CacheConfig{
		RedisAddr:       cfg.Cache.RedisAddr,
		RedisPassword:   cfg.Cache.RedisPassword,
		RedisDB:         cfg.Cache.RedisDB,
		KeyPrefix:       cfg.Cache.KeyPrefix,
		LocalGCInterval: cfg.Cache.LocalGCInterval,
		LocalPubSubBuf:  cfg.Cache.LocalPubSubBuf,
	}
	c, err := cache.NewCache(cacheConfig)
	if err != nil {
		log.Fatalf("cache: %v", err)
	}
	pubsub, err := cache.NewPubSub(cacheConfig)
	if err != nil {
		log.Fatalf("pubsub: %v", err)
	}
	logger.Info("Cache initialized", zap.Bool("redis", cfg.Cache.RedisAddr != ""))

	// ---- RMMV item catalog ----
	res := resource.NewLoader(cfg.RPGMaker.DataPath)
	if err := res.Load(); err != nil {
		logger.Warn("resource load warning", zap.Error(err))
	}
	catalog := resource.NewCatalog(res, cfg.Inventory.DefaultMaxStack)
	logger.Info("item catalog loaded", zap.Int("definitions", catalog.Len()))

	// ---- Inventories ----
	bags := lootbag.NewManager(lootbag.Config{
		SlotsPerRow: cfg.LootBag.SlotsPerRow,
		Rows:        cfg.LootBag.Rows,
		Lifetime:    time.Duration(cfg.LootBag.LifetimeS) * time.Second,
		SpawnOffset: cfg.LootBag.SpawnOffset,
	}, catalog, c, logger.Named("lootbag"))

	holders := holder.NewManager(holder.Config{
		Inventory: item.Config{
			SlotsPerRow:   cfg.Inventory.SlotsPerRow,
			InitialRows:   cfg.Inventory.InitialRows,
			MaxRows:       cfg.Inventory.MaxRows,
			UpgradeItem:   item.ItemID(cfg.Inventory.UpgradeItemID),
			UpgradeAmount: cfg.Inventory.UpgradeAmount,
			MergeDistance: cfg.Inventory.MergeDistance,
		},
		SnapshotTTL: cfg.Cache.SnapshotTTL,
	}, catalog, item.NewStore(db, logger), bags, c, pubsub, logger.Named("holder"))

	// ---- Scheduler ----
	sched := scheduler.New(logger)
	defer sched.Stop()

	sched.AddTicker("auto_save", time.Duration(cfg.Inventory.SaveIntervalS)*time.Second, func(ctx context.Context) error {
		_, err := holders.SaveDirty(ctx)
		return err
	})
	sched.AddTicker("lootbag_sweep", time.Duration(cfg.LootBag.SweepIntervalS)*time.Second, func(context.Context) error {
		holders.Exclusive(func() { bags.Sweep(time.Now()) })
		return nil
	})

	// ---- Gin HTTP Server ----
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := apirest.NewRouter(apirest.Deps{
		Holders:   holders,
		LootBags:  bags,
		Scheduler: sched,
		Audit:     auditSvc,
		PubSub:    pubsub,
		Server:    cfg.Server,
		Security:  cfg.Security,
		Logger:    logger,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r,
	}
	go func() {
		logger.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
	if err := holders.CloseAll(shutdownCtx); err != nil {
		logger.Error("saving inventories on shutdown", zap.Error(err))
	}
}
