package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/highbelief/solar-monitor-go/internal/config"
	"github.com/highbelief/solar-monitor-go/internal/core/auth"
	"github.com/highbelief/solar-monitor-go/internal/core/forecast"
	"github.com/highbelief/solar-monitor-go/internal/core/measurements"
	"github.com/highbelief/solar-monitor-go/internal/core/monitor"
	"github.com/highbelief/solar-monitor-go/internal/core/summary"
	"github.com/highbelief/solar-monitor-go/internal/core/weather"
	"github.com/highbelief/solar-monitor-go/internal/database/models"
	apperrors "github.com/highbelief/solar-monitor-go/pkg/errors"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

const defaultQueryTimeout = 10 * time.Second

var timeNow = time.Now

// Services bundles the domain services the handlers delegate to. Auth,
// Resources and Freshness may be nil.
type Services struct {
	Summary      *summary.Engine
	Measurements *measurements.Service
	Forecasts    *forecast.Service
	Weather      *weather.Service
	Auth         *auth.Service
	Resources    *monitor.ResourceMonitor
	Freshness    *monitor.FreshnessMonitor
}

// Handlers holds all HTTP handlers and their dependencies
type Handlers struct {
	cfg          *config.Config
	db           *sqlx.DB
	log          *logrus.Logger
	summary      *summary.Engine
	measurements *measurements.Service
	forecasts    *forecast.Service
	weather      *weather.Service
	auth         *auth.Service
	resources    *monitor.ResourceMonitor
	freshness    *monitor.FreshnessMonitor
	queryTimeout time.Duration
	startedAt    time.Time
}

// NewHandlers creates a new handlers instance
func NewHandlers(cfg *config.Config, db *sqlx.DB, services Services, logger *logrus.Logger) *Handlers {
	return &Handlers{
		cfg:          cfg,
		db:           db,
		log:          logger,
		summary:      services.Summary,
		measurements: services.Measurements,
		forecasts:    services.Forecasts,
		weather:      services.Weather,
		auth:         services.Auth,
		resources:    services.Resources,
		freshness:    services.Freshness,
		queryTimeout: config.Duration(cfg.Database.QueryTimeout, defaultQueryTimeout),
		startedAt:    time.Now(),
	}
}

// queryContext bounds a storage call by the request and the configured query timeout
func (h *Handlers) queryContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), h.queryTimeout)
}

// dateRange reads the inclusive start and end query parameters as YYYY-MM-DD
func dateRange(c *gin.Context) (models.Date, models.Date, error) {
	start, err := dateQuery(c, "start")
	if err != nil {
		return models.Date{}, models.Date{}, err
	}
	end, err := dateQuery(c, "end")
	if err != nil {
		return models.Date{}, models.Date{}, err
	}
	return start, end, nil
}

func dateQuery(c *gin.Context, name string) (models.Date, error) {
	value := c.Query(name)
	if value == "" {
		return models.Date{}, apperrors.InvalidArgument("query parameter %q is required", name)
	}
	return parseDate(name, value)
}

func parseDate(name, value string) (models.Date, error) {
	d, err := models.ParseDate(value)
	if err != nil {
		return models.Date{}, apperrors.InvalidArgument("invalid %s %q: expected YYYY-MM-DD", name, value)
	}
	return d, nil
}
