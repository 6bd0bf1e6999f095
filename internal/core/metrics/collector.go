package metrics

import (
	"time"
)

// MetricsCollector defines the interface for collecting metrics
type MetricsCollector interface {
	RecordHTTPRequest(method, path string, status int, duration time.Duration)
	ObserveSummary(granularity, strategy, outcome string, duration time.Duration)
	ObserveQuery(operation string, duration time.Duration, err error)
	SetDataAge(age time.Duration, stale bool)
	RecordSystemResource(memoryPercent float64, goroutines int)
}

// MetricsConfig contains configuration for metrics collection
type MetricsConfig struct {
	Enabled bool
	Prefix  string
}

// NoopCollector discards everything. It stands in when metrics are disabled.
type NoopCollector struct{}

func (NoopCollector) RecordHTTPRequest(string, string, int, time.Duration) {}
func (NoopCollector) ObserveSummary(string, string, string, time.Duration) {}
func (NoopCollector) ObserveQuery(string, time.Duration, error) {}
func (NoopCollector) SetDataAge(time.Duration, bool) {}
func (NoopCollector) RecordSystemResource(float64, int) {}
