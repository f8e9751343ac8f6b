package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	orderapp "github.com/brickdesk/backend/internal/application/order"
	syncapp "github.com/brickdesk/backend/internal/application/sync"
	"github.com/brickdesk/backend/internal/domain/sync"
	"github.com/brickdesk/backend/internal/infrastructure/cache"
	"github.com/brickdesk/backend/internal/infrastructure/config"
	"github.com/brickdesk/backend/internal/infrastructure/logger"
	"github.com/brickdesk/backend/internal/infrastructure/marketplace"
	"github.com/brickdesk/backend/internal/infrastructure/persistence"
	"github.com/brickdesk/backend/internal/infrastructure/scheduler"
	"github.com/brickdesk/backend/internal/interfaces/http/handler"
	"github.com/brickdesk/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting BrickDesk backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	tokenCache, err := cache.NewRedisTokenCache(cache.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer func() {
		if err := tokenCache.Close(); err != nil {
			log.Error("Error closing redis connection", zap.Error(err))
		}
	}()
	log.Info("Redis connected")

	// Repositories
	runRepo := persistence.NewGormSyncRunRepository(db.DB)
	cursorRepo := persistence.NewGormSyncCursorRepository(db.DB)
	credentialRepo := persistence.NewGormCredentialRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	transactionRepo := persistence.NewGormTransactionRepository(db.DB)
	snapshotRepo := persistence.NewGormPriceSnapshotRepository(db.DB)

	// Reconcilers
	orderReconciler := syncapp.NewOrderReconciler(orderRepo, log)
	transactionReconciler := syncapp.NewTransactionReconciler(transactionRepo, log)
	snapshotReconciler := syncapp.NewSnapshotReconciler(snapshotRepo, log)

	// Platform adapters
	timeout := cfg.Marketplace.TimeoutSeconds

	brickLinkConfig := marketplace.NewBrickLinkConfig()
	brickLinkConfig.TimeoutSeconds = timeout
	brickLink, err := marketplace.NewBrickLinkAdapter(brickLinkConfig, log)
	if err != nil {
		log.Fatal("Failed to create BrickLink adapter", zap.Error(err))
	}

	brickOwlConfig := marketplace.NewBrickOwlConfig()
	brickOwlConfig.TimeoutSeconds = timeout
	brickOwl, err := marketplace.NewBrickOwlAdapter(brickOwlConfig, log)
	if err != nil {
		log.Fatal("Failed to create BrickOwl adapter", zap.Error(err))
	}

	amazonConfig := marketplace.NewAmazonConfig()
	amazonConfig.TimeoutSeconds = timeout
	if cfg.Marketplace.AmazonMarketplaceID != "" {
		amazonConfig.MarketplaceID = cfg.Marketplace.AmazonMarketplaceID
	}
	amazonOrders, err := marketplace.NewAmazonOrdersAdapter(amazonConfig, tokenCache, log)
	if err != nil {
		log.Fatal("Failed to create Amazon orders adapter", zap.Error(err))
	}
	amazonPricing, err := marketplace.NewAmazonPricingAdapter(amazonConfig, tokenCache, log)
	if err != nil {
		log.Fatal("Failed to create Amazon pricing adapter", zap.Error(err))
	}

	ebayConfig := marketplace.NewEbayConfig()
	ebayConfig.TimeoutSeconds = timeout
	ebay, err := marketplace.NewEbayAdapter(ebayConfig, tokenCache, log)
	if err != nil {
		log.Fatal("Failed to create eBay adapter", zap.Error(err))
	}

	payPalConfig := marketplace.NewPayPalConfig()
	payPalConfig.TimeoutSeconds = timeout
	payPal, err := marketplace.NewPayPalAdapter(payPalConfig, tokenCache, log)
	if err != nil {
		log.Fatal("Failed to create PayPal adapter", zap.Error(err))
	}

	// Job registry. Page sizes respect each platform's documented
	// limits; overlaps absorb clock skew between our cursor and the
	// platform's last-modified timestamps.
	registry := syncapp.NewRegistry()
	jobs := []*syncapp.Job{
		{
			Type:            sync.JobTypeBrickLinkOrders,
			Source:          brickLink,
			Normalizer:      marketplace.NewBrickLinkNormalizer(log),
			Reconciler:      orderReconciler,
			PageSize:        50,
			InterBatchDelay: cfg.Sync.InterBatchDelay,
			CursorOverlap:   5 * time.Minute,
			FullWindow:      180 * 24 * time.Hour,
		},
		{
			Type:            sync.JobTypeBrickOwlOrders,
			Source:          brickOwl,
			Normalizer:      marketplace.NewBrickOwlNormalizer(log),
			Reconciler:      orderReconciler,
			PageSize:        50,
			InterBatchDelay: cfg.Sync.InterBatchDelay,
			CursorOverlap:   5 * time.Minute,
			FullWindow:      180 * 24 * time.Hour,
		},
		{
			Type:            sync.JobTypeAmazonOrders,
			Source:          amazonOrders,
			Normalizer:      marketplace.NewAmazonOrderNormalizer(log),
			Reconciler:      orderReconciler,
			PageSize:        100,
			InterBatchDelay: cfg.Sync.InterBatchDelay,
			CursorOverlap:   5 * time.Minute,
			FullWindow:      365 * 24 * time.Hour,
		},
		{
			Type:            sync.JobTypeEbayOrders,
			Source:          ebay,
			Normalizer:      marketplace.NewEbayNormalizer(log),
			Reconciler:      orderReconciler,
			PageSize:        200,
			InterBatchDelay: cfg.Sync.InterBatchDelay,
			CursorOverlap:   5 * time.Minute,
			FullWindow:      90 * 24 * time.Hour,
		},
		{
			Type:            sync.JobTypeAmazonPricing,
			Source:          amazonPricing,
			Normalizer:      marketplace.NewAmazonPricingNormalizer(),
			Reconciler:      snapshotReconciler,
			PageSize:        20,
			InterBatchDelay: cfg.Sync.InterBatchDelay,
			FullWindow:      24 * time.Hour,
		},
		{
			Type:            sync.JobTypePayPalTransactions,
			Source:          payPal,
			Normalizer:      marketplace.NewPayPalNormalizer(),
			Reconciler:      transactionReconciler,
			PageSize:        100,
			InterBatchDelay: cfg.Sync.InterBatchDelay,
			CursorOverlap:   15 * time.Minute,
			FullWindow:      365 * 24 * time.Hour,
		},
	}
	for _, job := range jobs {
		if err := registry.Register(job); err != nil {
			log.Fatal("Failed to register sync job", zap.String("job_type", string(job.Type)), zap.Error(err))
		}
	}

	// Application services
	coordinator := syncapp.NewCoordinator(registry, runRepo, cursorRepo, credentialRepo, log)
	syncService := syncapp.NewService(coordinator, runRepo, cursorRepo, log)
	orderService := orderapp.NewService(orderRepo, log)

	// Background workers
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	janitor := scheduler.NewJanitor(runRepo, cfg.Scheduler.JanitorPeriod, cfg.Sync.StaleRunThreshold, log)
	go janitor.Run(ctx)

	if cfg.Scheduler.Enabled {
		autoSync := scheduler.NewAutoSyncScheduler(syncService, cursorRepo, cfg.Scheduler.PollInterval, log)
		go autoSync.Run(ctx)
		log.Info("Auto-sync scheduler started", zap.Duration("poll_interval", cfg.Scheduler.PollInterval))
	}

	// HTTP server
	engine := router.New(cfg, log,
		handler.NewSyncHandler(syncService),
		handler.NewOrderHandler(orderService),
	)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
		os.Exit(1)
	}
	log.Info("Shutdown complete")
}
