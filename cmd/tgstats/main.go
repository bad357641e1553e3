package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/letsdoitintime/tg-stats-bot-sub000/internal/application"
	"github.com/letsdoitintime/tg-stats-bot-sub000/internal/domain"
	"github.com/letsdoitintime/tg-stats-bot-sub000/internal/infrastructure/api"
	"github.com/letsdoitintime/tg-stats-bot-sub000/internal/infrastructure/auth"
	"github.com/letsdoitintime/tg-stats-bot-sub000/internal/infrastructure/cache"
	"github.com/letsdoitintime/tg-stats-bot-sub000/internal/infrastructure/config"
	"github.com/letsdoitintime/tg-stats-bot-sub000/internal/infrastructure/database"
	"github.com/letsdoitintime/tg-stats-bot-sub000/internal/infrastructure/logging"
	"github.com/letsdoitintime/tg-stats-bot-sub000/internal/infrastructure/metrics"
	"github.com/letsdoitintime/tg-stats-bot-sub000/internal/infrastructure/postgres"
	"github.com/letsdoitintime/tg-stats-bot-sub000/internal/infrastructure/worker"
)

// identityCacheTTL bounds how long display names may lag profile updates.
const identityCacheTTL = 5 * time.Minute

func main() {
	logger := logging.New()
	logger.Info("tgstats starting up")

	if err := run(logger); err != nil {
		logger.Error("application failed", "error", err.Error())
		os.Exit(1)
	}
}

func run(logger *logging.Logger) error {
	// load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err.Error())
		return err
	}

	// establish database connection
	conn, err := database.New(cfg.Database, logger)
	if err != nil {
		return err
	}
	defer conn.Close()

	// run migrations
	migrator := database.NewMigrator(conn, logger)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := migrator.Run(ctx); err != nil {
		return err
	}

	// verify health after migrations
	if err := conn.HealthCheck(ctx); err != nil {
		return err
	}

	logger.Info("tgstats infrastructure ready", "schema", conn.Schema())

	// initialize prometheus metrics
	appMetrics := metrics.New()
	logger.Info("prometheus metrics initialized")

	// initialize jwt validator
	jwtValidator := auth.NewJWTValidator(cfg.Auth.JWTSecret)

	// initialize the stats store with an identity read cache on top
	var store domain.StatsStore = postgres.NewStatsRepository(conn.Pool())
	store = cache.NewStatsStoreWithIdentityCache(store, identityCacheTTL)

	// initialize redis (optional - disabled if REDIS_URL is empty)
	var redisClient *cache.RedisClient
	if cfg.Redis.URL != "" {
		redisClient, err = cache.NewRedisClient(cfg.Redis.URL, logger)
		if err != nil {
			logger.Error("failed to create redis client", "error", err.Error())
			return err
		}

		if err := redisClient.Connect(ctx); err != nil {
			logger.Warn("redis connection failed, continuing without cache", "error", err.Error())
			redisClient = nil
		} else {
			defer redisClient.Close()
			logger.Info("redis leaderboard cache enabled")
		}
	}

	// initialize services
	engagementConfig := application.EngagementConfig{
		DefaultWindowDays:  cfg.Analytics.DefaultWindowDays,
		DefaultMinMessages: cfg.Analytics.DefaultMinMessages,
	}
	engagement := application.NewEngagementService(store, engagementConfig, logger)
	leaderboard := application.NewLeaderboardService(engagement, store, engagementConfig, logger).
		WithRecorder(appMetrics)

	cachedLeaderboard := cache.NewCachedLeaderboardService(
		leaderboard,
		redisClient,
		cfg.Analytics.CacheTTL,
		logger,
	)

	// start the background refresh worker so reads hit a warm cache
	refreshConfig := worker.DefaultLeaderboardRefreshConfig()
	refreshConfig.Interval = cfg.Analytics.RefreshInterval
	refreshConfig.WindowDays = cfg.Analytics.DefaultWindowDays
	refreshConfig.MinMessages = cfg.Analytics.DefaultMinMessages

	refreshWorker := worker.NewLeaderboardRefreshWorker(store, cachedLeaderboard, redisClient, refreshConfig, logger).
		WithRecorder(appMetrics)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	refreshWorker.Start(workerCtx)

	// initialize http server
	serverConfig := api.DefaultServerConfig()
	if port := os.Getenv("PORT"); port != "" {
		serverConfig.Port = ":" + port
	}

	server := api.NewServer(serverConfig, logger)

	// register routes
	api.RegisterRoutes(server.Echo(), api.RouterConfig{
		Engagement:   engagement,
		Leaderboard:  cachedLeaderboard,
		Store:        store,
		JWTValidator: jwtValidator,
		Logger:       logger,
		Metrics:      appMetrics,
		ReadyCheck: func(c echo.Context) error {
			return conn.HealthCheck(c.Request().Context())
		},
	})

	// start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			logger.Error("http server error", "error", err.Error())
		}
	}()

	// wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("tgstats shutting down")

	// stop the refresh worker, waiting for any in-flight cycle
	workerCancel()
	refreshWorker.Stop()

	// graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), serverConfig.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err.Error())
		return err
	}

	logger.Info("tgstats shutdown complete")
	return nil
}
