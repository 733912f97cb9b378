package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	config "github.com/gramseva/mgnrega-dashboard/configs"
	"github.com/gramseva/mgnrega-dashboard/internal/application/services"
	"github.com/gramseva/mgnrega-dashboard/internal/core/ports"
	"github.com/gramseva/mgnrega-dashboard/internal/infrastructure/datagov"
	"github.com/gramseva/mgnrega-dashboard/internal/infrastructure/db"
	"github.com/gramseva/mgnrega-dashboard/internal/infrastructure/health"
	"github.com/gramseva/mgnrega-dashboard/internal/infrastructure/httpserver"
	"github.com/gramseva/mgnrega-dashboard/internal/infrastructure/redis"
	"github.com/gramseva/mgnrega-dashboard/internal/infrastructure/repositories"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Setup logger
	logger := logrus.New()
	if cfg.Log.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(level)
	}

	logger.Info("Starting MGNREGA district dashboard service...")

	// Initialize database (apply pool settings from config)
	database, err := db.NewDatabase(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database:", err)
	}
	defer database.Close()

	logger.Info("Connected to database successfully")

	// Initialize Redis client
	redisClient, err := redis.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()

	logger.Info("Connected to Redis successfully")

	// Run migrations
	if err := database.Migrate("./migrations"); err != nil {
		logger.Warn("Failed to run migrations:", err)
	}

	// Hot cache and rate-limit counters share the Redis client
	redisCache := redis.NewRedisCache(redisClient, "appcache")
	redisRateLimitRepo := repositories.NewRateLimitRedisRepository(redisClient)

	// Durable cache store with the Redis hot layer in front
	baseReportStore := repositories.NewReportStoreRepository(database, logger, cfg.Cache.TTL)
	reportStore := repositories.NewCachingReportStore(baseReportStore, redisCache, cfg.Cache.HotTTL)
	districtRepo := repositories.NewDistrictRepository(database, logger)

	// Upstream client for the open-data API
	upstreamClient := datagov.NewClient(&cfg.Upstream, logger)

	// Wire services
	districtService := services.NewDistrictService(districtRepo, logger)
	lookupService := services.NewLookupService(reportStore, upstreamClient, districtService, &services.LookupConfig{
		MaxStaleness:  cfg.Cache.MaxStaleness,
		MaxConcurrent: cfg.Upstream.MaxConcurrent,
	}, logger)
	refreshService := services.NewRefreshService(reportStore, upstreamClient, districtService, logger)
	presenter := services.NewDashboardPresenter()

	rateLimiterService := services.NewRateLimiterService(redisRateLimitRepo, &services.RateLimiterConfig{
		RequestsPerWindow: cfg.RateLimit.DefaultRequestsPerMinute,
		BurstMultiplier:   cfg.RateLimit.BurstMultiplier,
		Window:            cfg.RateLimit.Window,
		KeyPrefix:         cfg.RateLimit.KeyPrefix,
	}, logger)

	hcSlice := []ports.HealthChecker{
		health.NewDBHealthChecker(database),
		health.NewRedisHealthChecker(redisClient),
		health.NewUpstreamHealthChecker(cfg.Upstream.BaseURL),
	}

	// Create server configuration
	serverConfig := &httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		TLSCertFile:  cfg.Server.TLSCertFile,
		TLSKeyFile:   cfg.Server.TLSKeyFile,
	}

	// Initialize HTTP server using ServerDeps for clearer wiring
	deps := httpserver.ServerDeps{
		LookupService:      lookupService,
		DistrictService:    districtService,
		RefreshService:     refreshService,
		UpstreamClient:     upstreamClient,
		Presenter:          presenter,
		RateLimiterService: rateLimiterService,
		HealthCheckers:     hcSlice,
	}

	server := httpserver.NewServer(serverConfig, logger, deps)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("Failed to start server:", err)
		}
	}()

	logger.Infof("Server started on %s:%s", cfg.Server.Host, cfg.Server.Port)

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}
