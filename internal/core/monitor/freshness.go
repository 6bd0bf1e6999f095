package monitor

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/highbelief/solar-monitor-go/internal/core/measurements"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// FreshnessChecker reports how old the newest measurement is
type FreshnessChecker interface {
	Freshness(ctx context.Context, now time.Time) (*measurements.Freshness, error)
}

// Recorder receives the results of each check
type Recorder interface {
	SetDataAge(age time.Duration, stale bool)
	RecordSystemResource(memoryPercent float64, goroutines int)
}

// FreshnessConfig contains freshness monitor configuration
type FreshnessConfig struct {
	// Schedule is a standard cron spec or descriptor such as "@every 5m"
	Schedule string
	Timeout  time.Duration
	Location *time.Location
}

// FreshnessMonitor periodically checks that measurements keep arriving.
// It only reads; alerting is a log line plus the stale gauge.
type FreshnessMonitor struct {
	cron      *cron.Cron
	checker   FreshnessChecker
	resources *ResourceMonitor
	recorder  Recorder
	timeout   time.Duration
	logger    *logrus.Logger

	mu       sync.RWMutex
	last     *measurements.Freshness
	lastErr  error
	running  bool
	wasStale bool
}

// NewFreshnessMonitor creates a freshness monitor. resources and recorder may be nil.
func NewFreshnessMonitor(cfg FreshnessConfig, checker FreshnessChecker, resources *ResourceMonitor, recorder Recorder, logger *logrus.Logger) (*FreshnessMonitor, error) {
	if cfg.Schedule == "" {
		cfg.Schedule = "@every 5m"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if logger == nil {
		logger = logrus.New()
	}

	m := &FreshnessMonitor{
		checker:   checker,
		resources: resources,
		recorder:  recorder,
		timeout:   cfg.Timeout,
		logger:    logger,
	}

	m.cron = cron.New(
		cron.WithLocation(cfg.Location),
		cron.WithChain(
			cron.SkipIfStillRunning(cron.DefaultLogger),
			cron.Recover(cron.DefaultLogger),
		),
	)
	if _, err := m.cron.AddFunc(cfg.Schedule, m.runScheduled); err != nil {
		return nil, fmt.Errorf("invalid freshness schedule %q: %w", cfg.Schedule, err)
	}

	return m, nil
}

// Start runs one check immediately and then follows the schedule
func (m *FreshnessMonitor) Start() error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return fmt.Errorf("freshness monitor is already running")
	}
	m.running = true
	m.mu.Unlock()

	go m.runScheduled()
	m.cron.Start()
	m.logger.Info("Freshness monitor started")
	return nil
}

// Stop stops the scheduler and waits for a running check to finish
func (m *FreshnessMonitor) Stop() error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return fmt.Errorf("freshness monitor is not running")
	}
	m.running = false
	m.mu.Unlock()

	ctx := m.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(m.timeout):
		m.logger.Warn("Timeout waiting for freshness check to complete")
	}

	m.logger.Info("Freshness monitor stopped")
	return nil
}

func (m *FreshnessMonitor) runScheduled() {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	if _, err := m.Check(ctx, time.Now()); err != nil {
		m.logger.WithError(err).Error("Freshness check failed")
	}
}

// Check evaluates freshness once, updates the recorder and remembers the result
func (m *FreshnessMonitor) Check(ctx context.Context, now time.Time) (*measurements.Freshness, error) {
	report, err := m.checker.Freshness(ctx, now)

	m.mu.Lock()
	m.lastErr = err
	wasStale := m.wasStale
	if err == nil {
		m.last = report
		m.wasStale = report.Stale
	}
	m.mu.Unlock()

	if m.recorder != nil {
		if err == nil {
			m.recorder.SetDataAge(time.Duration(report.AgeSeconds*float64(time.Second)), report.Stale)
		}
		if m.resources != nil {
			if stats, statsErr := m.resources.GetResourceStats(ctx); statsErr == nil {
				m.recorder.RecordSystemResource(stats.Memory.UsedPercent, stats.Runtime.Goroutines)
			}
		} else {
			m.recorder.RecordSystemResource(0, runtime.NumGoroutine())
		}
	}

	if err != nil {
		return nil, err
	}

	fields := logrus.Fields{
		"has_data":    report.HasData,
		"age_seconds": report.AgeSeconds,
		"stale_after": report.StaleAfter,
	}
	switch {
	case report.Stale:
		m.logger.WithFields(fields).Warn("Measurement data is stale")
	case wasStale:
		m.logger.WithFields(fields).Info("Measurement data is fresh again")
	default:
		m.logger.WithFields(fields).Debug("Measurement data is fresh")
	}

	return report, nil
}

// Last returns the most recent successful check and the error of the latest
// attempt
func (m *FreshnessMonitor) Last() (*measurements.Freshness, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last, m.lastErr
}

// Running reports whether the scheduler is active
func (m *FreshnessMonitor) Running() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}
