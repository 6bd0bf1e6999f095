package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/highbelief/solar-monitor-go/internal/api/handlers"
	"github.com/highbelief/solar-monitor-go/internal/api/middleware"
	"github.com/highbelief/solar-monitor-go/internal/config"
	"github.com/highbelief/solar-monitor-go/internal/core/metrics"
	"github.com/highbelief/solar-monitor-go/pkg/logger"
	"github.com/highbelief/solar-monitor-go/pkg/utils"
	"github.com/jmoiron/sqlx"
)

// Options carries the optional pieces of the router
type Options struct {
	// Metrics records HTTP traffic; nil disables recording
	Metrics metrics.MetricsCollector

	// MetricsHandler is mounted at monitoring.prometheus.path when set
	MetricsHandler http.Handler

	// RateLimiter overrides the limiter built from security.rate_limiting
	RateLimiter *middleware.RateLimiter
}

// NewRouter creates and configures the main HTTP router
func NewRouter(cfg *config.Config, db *sqlx.DB, services handlers.Services, log *logger.BatchLogger, opts Options) *gin.Engine {
	if cfg.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.ErrorHandlingMiddleware(log.Logger))
	router.Use(middleware.LoggingMiddleware(log))
	if cfg.Security.EnableCORS {
		router.Use(middleware.CORSMiddleware(cfg.Security.AllowedOrigins))
	}
	if opts.Metrics != nil {
		router.Use(middleware.MetricsMiddleware(opts.Metrics))
	}

	rateLimiter := opts.RateLimiter
	if rateLimiter == nil && cfg.Security.RateLimiting.Enabled {
		rateLimiter = middleware.NewRateLimiter(cfg.Security.RateLimiting.RequestsPerMinute, cfg.Security.RateLimiting.BurstSize)
	}
	if rateLimiter != nil {
		router.Use(rateLimiter.RateLimitMiddleware())
	}

	router.NoRoute(func(c *gin.Context) {
		utils.SendError(c, http.StatusNotFound, "Endpoint not found")
	})
	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		utils.SendError(c, http.StatusMethodNotAllowed, "Method not allowed")
	})

	h := handlers.NewHandlers(cfg, db, services, log.Logger)

	// Public routes
	router.GET("/health", h.Health)
	if opts.MetricsHandler != nil && cfg.Monitoring.Prometheus.Enabled {
		router.GET(cfg.Monitoring.Prometheus.Path, gin.WrapH(opts.MetricsHandler))
	}

	api := router.Group("/api/v1")
	{
		api.POST("/auth/login", h.Login)
		api.GET("/status", h.Status)

		protected := api.Group("")
		if cfg.Auth.Enabled && services.Auth != nil {
			protected.Use(middleware.AuthMiddleware(services.Auth))
		}

		measurements := protected.Group("/measurements")
		{
			measurements.GET("", h.GetMeasurements)
			measurements.GET("/latest", h.GetLatestMeasurement)
			measurements.GET("/summary", h.GetSummary)
		}

		forecast := protected.Group("/forecast")
		{
			forecast.GET("/arima", h.GetArimaForecasts)
			forecast.GET("/sarima", h.GetSarimaForecasts)
			forecast.GET("/arima/accuracy", h.GetArimaAccuracy)
			forecast.GET("/sarima/accuracy", h.GetSarimaAccuracy)
		}

		weather := protected.Group("/weather-forecasts")
		{
			weather.GET("", h.GetWeatherForecasts)
			weather.GET("/:date", h.GetWeatherForecastByDate)
		}

		protected.GET("/system/status", h.GetSystemStatus)
	}

	return router
}
