package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusCollector implements MetricsCollector using Prometheus metrics.
// Each collector owns its registry so several can coexist in one process.
type PrometheusCollector struct {
	config   *MetricsConfig
	registry *prometheus.Registry

	// HTTP Metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Summary Engine Metrics
	summaryComputations *prometheus.CounterVec
	summaryDuration     *prometheus.HistogramVec

	// Database Metrics
	databaseQueryDuration *prometheus.HistogramVec
	databaseQueryErrors   *prometheus.CounterVec

	// Data freshness
	dataAge   prometheus.Gauge
	dataStale prometheus.Gauge

	// System Metrics
	systemMemory     prometheus.Gauge
	systemGoroutines prometheus.Gauge
}

// NewPrometheusCollector creates a new Prometheus metrics collector
func NewPrometheusCollector(config *MetricsConfig) *PrometheusCollector {
	if config == nil {
		config = &MetricsConfig{
			Enabled: true,
			Prefix:  "solar",
		}
	}

	prefix := config.Prefix
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	collector := &PrometheusCollector{
		config:   config,
		registry: registry,
	}

	// Initialize HTTP metrics
	collector.httpRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	collector.httpRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Initialize Summary Engine metrics
	collector.summaryComputations = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_summary_computations_total",
			Help: "Total number of measurement summary computations",
		},
		[]string{"granularity", "strategy", "outcome"},
	)

	collector.summaryDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_summary_duration_seconds",
			Help:    "Measurement summary computation time in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
		},
		[]string{"granularity", "strategy"},
	)

	// Initialize Database metrics
	collector.databaseQueryDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_database_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
		},
		[]string{"operation"},
	)

	collector.databaseQueryErrors = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_database_query_errors_total",
			Help: "Total number of failed database queries",
		},
		[]string{"operation"},
	)

	// Initialize freshness metrics
	collector.dataAge = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: prefix + "_measurement_age_seconds",
			Help: "Age of the newest stored measurement in seconds",
		},
	)

	collector.dataStale = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: prefix + "_measurement_stale",
			Help: "1 when the newest measurement is older than the staleness threshold",
		},
	)

	// Initialize System metrics
	collector.systemMemory = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: prefix + "_system_memory_usage_percent",
			Help: "Host memory usage percentage",
		},
	)

	collector.systemGoroutines = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: prefix + "_goroutines",
			Help: "Number of goroutines",
		},
	)

	return collector
}

// Registry exposes the underlying registry
func (p *PrometheusCollector) Registry() *prometheus.Registry {
	return p.registry
}

// Handler serves the registry in the Prometheus exposition format
func (p *PrometheusCollector) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

// RecordHTTPRequest records HTTP request metrics
func (p *PrometheusCollector) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if !p.config.Enabled {
		return
	}

	p.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	p.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// ObserveSummary records one summary computation
func (p *PrometheusCollector) ObserveSummary(granularity, strategy, outcome string, duration time.Duration) {
	if !p.config.Enabled {
		return
	}

	p.summaryComputations.WithLabelValues(granularity, strategy, outcome).Inc()
	if duration > 0 {
		p.summaryDuration.WithLabelValues(granularity, strategy).Observe(duration.Seconds())
	}
}

// ObserveQuery records database query metrics
func (p *PrometheusCollector) ObserveQuery(operation string, duration time.Duration, err error) {
	if !p.config.Enabled {
		return
	}

	p.databaseQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		p.databaseQueryErrors.WithLabelValues(operation).Inc()
	}
}

// SetDataAge records the freshness of the newest measurement
func (p *PrometheusCollector) SetDataAge(age time.Duration, stale bool) {
	if !p.config.Enabled {
		return
	}

	p.dataAge.Set(age.Seconds())
	if stale {
		p.dataStale.Set(1)
	} else {
		p.dataStale.Set(0)
	}
}

// RecordSystemResource records system resource metrics
func (p *PrometheusCollector) RecordSystemResource(memoryPercent float64, goroutines int) {
	if !p.config.Enabled {
		return
	}

	p.systemMemory.Set(memoryPercent)
	p.systemGoroutines.Set(float64(goroutines))
}
