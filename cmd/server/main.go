package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/highbelief/solar-monitor-go/internal/api"
	"github.com/highbelief/solar-monitor-go/internal/api/handlers"
	"github.com/highbelief/solar-monitor-go/internal/config"
	"github.com/highbelief/solar-monitor-go/internal/core/auth"
	"github.com/highbelief/solar-monitor-go/internal/core/forecast"
	"github.com/highbelief/solar-monitor-go/internal/core/measurements"
	"github.com/highbelief/solar-monitor-go/internal/core/metrics"
	"github.com/highbelief/solar-monitor-go/internal/core/monitor"
	"github.com/highbelief/solar-monitor-go/internal/core/summary"
	"github.com/highbelief/solar-monitor-go/internal/core/weather"
	"github.com/highbelief/solar-monitor-go/internal/database"
	"github.com/highbelief/solar-monitor-go/pkg/logger"
	"github.com/highbelief/solar-monitor-go/pkg/version"
	"github.com/klauspost/compress/gzhttp"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	log := logger.New("info", "json")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	log = logger.New(cfg.Logging.Level, cfg.Logging.Format)
	log.SetBatchSize(cfg.Logging.BatchSize)
	log.WithField("version", version.GetFullVersion()).Info("Starting solar monitor")

	loc := cfg.Location()

	// Initialize database
	db, err := database.Initialize(cfg.Database)
	if err != nil {
		log.Fatal("Failed to initialize database: ", err)
	}
	defer db.Close()

	// Run migrations
	if cfg.Database.Migration.Enabled && cfg.Database.Migration.AutoMigrate {
		if err := database.Migrate(db.DB, cfg.Database.MigrationsPath); err != nil {
			log.Fatal("Failed to run migrations: ", err)
		}
	}

	repos := database.NewRepositories(db, loc)

	var collector metrics.MetricsCollector = metrics.NoopCollector{}
	var prometheusCollector *metrics.PrometheusCollector
	if cfg.Monitoring.Prometheus.Enabled {
		prometheusCollector = metrics.NewPrometheusCollector(&metrics.MetricsConfig{
			Enabled: true,
			Prefix:  cfg.Monitoring.Prometheus.Prefix,
		})
		collector = prometheusCollector
	}

	// Initialize core services
	engine, err := summary.NewEngine(repos.Measurement, summary.Config{
		Strategy: summary.Strategy(cfg.Summary.Strategy),
		Location: loc,
		Recorder: collector,
	}, log.Logger)
	if err != nil {
		log.Fatal("Failed to create summary engine: ", err)
	}

	measurementService := measurements.NewService(repos.Measurement, measurements.Config{
		MaxRange:   config.Duration(cfg.Measurements.MaxRange, measurements.DefaultMaxRange),
		StaleAfter: config.Duration(cfg.Monitoring.Freshness.StaleAfter, measurements.DefaultStaleAfter),
		Location:   loc,
		Recorder:   collector,
	}, log.Logger)

	services := handlers.Services{
		Summary:      engine,
		Measurements: measurementService,
		Forecasts:    forecast.NewService(repos.Forecast, collector, log.Logger),
		Weather:      weather.NewService(repos.Weather, log.Logger),
		Resources:    monitor.NewResourceMonitor(filepath.Dir(cfg.Database.Path), log.Logger),
	}

	if cfg.Auth.Enabled {
		services.Auth, err = auth.NewService(auth.Config{
			Username:    cfg.Auth.Username,
			Password:    cfg.Auth.Password,
			JWTSecret:   cfg.Auth.JWTSecret,
			TokenExpiry: time.Duration(cfg.Auth.TokenExpiry) * time.Second,
		}, log.Logger)
		if err != nil {
			log.Fatal("Failed to initialize authentication: ", err)
		}
	}

	if cfg.Monitoring.Freshness.Enabled {
		freshness, err := monitor.NewFreshnessMonitor(monitor.FreshnessConfig{
			Schedule: cfg.Monitoring.Freshness.Schedule,
			Location: loc,
		}, measurementService, services.Resources, collector, log.Logger)
		if err != nil {
			log.Fatal("Failed to create freshness monitor: ", err)
		}
		if err := freshness.Start(); err != nil {
			log.WithError(err).Warn("Failed to start freshness monitor")
		}
		services.Freshness = freshness
	}

	opts := api.Options{Metrics: collector}
	if prometheusCollector != nil {
		opts.MetricsHandler = prometheusCollector.Handler()
	}

	// Initialize router
	router := api.NewRouter(cfg, db, services, log, opts)

	var handler http.Handler = router
	if cfg.Server.EnableGzip {
		handler = gzhttp.GzipHandler(router)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  config.Duration(cfg.Server.ReadTimeout, 15*time.Second),
		WriteTimeout: config.Duration(cfg.Server.WriteTimeout, 15*time.Second),
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		log.WithFields(logrus.Fields{
			"addr":     srv.Addr,
			"plant":    cfg.Plant.Name,
			"timezone": loc.String(),
			"strategy": engine.Strategy(),
		}).Info("Starting solar monitor API")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server: ", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), config.Duration(cfg.Server.ShutdownTimeout, 30*time.Second))
	defer cancel()

	if services.Freshness != nil && services.Freshness.Running() {
		if err := services.Freshness.Stop(); err != nil {
			log.WithError(err).Warn("Failed to stop freshness monitor")
		}
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	log.FlushPending()
	log.Info("Server exited")
}
