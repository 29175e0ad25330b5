package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/futscout/scout-engine/internal/api"
	"github.com/futscout/scout-engine/internal/cache"
	"github.com/futscout/scout-engine/internal/config"
	"github.com/futscout/scout-engine/internal/features"
	"github.com/futscout/scout-engine/internal/ingest"
	"github.com/futscout/scout-engine/internal/provider"
	"github.com/futscout/scout-engine/internal/scheduler"
	"github.com/futscout/scout-engine/internal/scout"
	"github.com/futscout/scout-engine/internal/store"
	"github.com/futscout/scout-engine/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	structuredLogger := logger.InitLogger(cfg.LogLevel, cfg.IsDevelopment())
	logger.WithService("scout-engine").WithFields(logrus.Fields{
		"environment":    cfg.Env,
		"port":           cfg.Port,
		"reference_team": cfg.ReferenceTeam,
	}).Info("Starting scout engine")

	// Setup Gin mode
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := store.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		logger.WithService("scout-engine").Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.AutoMigrate(); err != nil {
		logger.WithService("scout-engine").Fatalf("Failed to migrate database: %v", err)
	}

	// Connect to Redis
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.WithService("scout-engine").Fatalf("Failed to parse Redis URL: %v", err)
	}
	redisClient := redis.NewClient(opt)
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.WithService("scout-engine").Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// Initialize services
	st := store.NewStore(db)
	cacheService := cache.NewCacheService(redisClient, structuredLogger)
	breakerService := provider.NewCircuitBreakerService(
		cfg.CircuitBreakerThreshold,
		cfg.ExternalAPITimeout,
		structuredLogger,
	)

	var statsClient *provider.Client
	var syncService *ingest.SyncService
	if cfg.SyncEnabled && cfg.StatsAPIUser != "" {
		statsClient = provider.NewClient(
			cfg.StatsAPIBaseURL,
			cfg.StatsAPIUser,
			cfg.StatsAPIPassword,
			cfg.StatsAPIRateLimit,
			structuredLogger,
		)
		syncService = ingest.NewSyncService(statsClient, breakerService, st, features.DefaultCatalog(), structuredLogger)
		logger.WithService("scout-engine").Info("Upstream stats sync enabled")
	} else {
		logger.WithService("scout-engine").Info("Upstream stats sync disabled, serving stored data only")
	}

	engine := scout.NewEngine(cfg, st, cacheService)

	// Build the first snapshot from whatever is already stored. An empty
	// database is not fatal, queries answer 409 until data arrives.
	buildCtx, cancelBuild := context.WithTimeout(context.Background(), 2*time.Minute)
	if err := engine.Rebuild(buildCtx); err != nil {
		logger.WithService("scout-engine").WithError(err).Warn("Initial engine build failed")
	}
	cancelBuild()

	var refreshService *scheduler.RefreshService
	if cfg.EnableBackgroundJobs {
		refreshService = scheduler.NewRefreshService(cfg, engine, syncService, structuredLogger)
		if err := refreshService.Start(); err != nil {
			logger.WithService("scout-engine").Fatalf("Failed to start refresh service: %v", err)
		}
	}

	// Initialize router
	router := api.NewRouter(api.Deps{
		Config:  cfg,
		Engine:  engine,
		Store:   st,
		Cache:   cacheService,
		Refresh: refreshService,
		Client:  statsClient,
		Breaker: breakerService,
		Logger:  structuredLogger,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		logger.WithService("scout-engine").WithField("port", cfg.Port).Info("Scout engine started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithService("scout-engine").Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.WithService("scout-engine").Info("Shutting down scout engine...")

	if refreshService != nil {
		if err := refreshService.Stop(); err != nil {
			logger.WithService("scout-engine").WithError(err).Warn("Refresh service shutdown failed")
		}
	}

	// The server has 5 seconds to finish the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithService("scout-engine").Fatalf("Scout engine forced to shutdown: %v", err)
	}

	logger.WithService("scout-engine").Info("Scout engine exited")
}
