package api

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/letsdoitintime/tg-stats-bot-sub000/internal/application"
	"github.com/letsdoitintime/tg-stats-bot-sub000/internal/domain"
	"github.com/letsdoitintime/tg-stats-bot-sub000/internal/infrastructure/auth"
	"github.com/letsdoitintime/tg-stats-bot-sub000/internal/infrastructure/logging"
	"github.com/letsdoitintime/tg-stats-bot-sub000/internal/infrastructure/metrics"
)

// RouterConfig holds dependencies for route registration.
type RouterConfig struct {
	Engagement   *application.EngagementService
	Leaderboard  LeaderboardProvider
	Store        domain.StatsStore
	JWTValidator *auth.JWTValidator
	Logger       *logging.Logger
	Metrics      *metrics.Metrics
	ReadyCheck   func(echo.Context) error
}

// RegisterRoutes sets up all API routes on the server.
func RegisterRoutes(e *echo.Echo, config RouterConfig) {
	// prometheus metrics endpoint (no auth, standard scraping path)
	if config.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(
			config.Metrics.Registry,
			promhttp.HandlerOpts{
				Registry:          config.Metrics.Registry,
				EnableOpenMetrics: true,
			},
		)))

		e.Use(metrics.Middleware(config.Metrics))
	}

	// health endpoints (no auth required)
	RegisterHealthRoutes(e, config.ReadyCheck)

	// api v1 group with auth
	v1 := e.Group("/api/v1")
	v1.Use(AuthMiddleware(AuthConfig{
		Validator: config.JWTValidator,
		Skipper: PublicRoutesSkipper(
			"/health",
			"/ready",
			"/metrics",
		),
	}))

	handler := NewEngagementHandler(config.Engagement, config.Leaderboard, config.Store)
	handler.RegisterRoutes(v1)

	config.Logger.Info("api routes registered",
		"version", "v1",
		"health_endpoints", []string{"/health", "/ready"},
		"metrics_enabled", config.Metrics != nil,
		"api_prefix", "/api/v1",
	)
}
