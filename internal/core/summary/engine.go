package summary

import (
	"context"
	"fmt"
	"time"

	"github.com/highbelief/solar-monitor-go/internal/database/models"
	apperrors "github.com/highbelief/solar-monitor-go/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Strategy selects where grouping runs
type Strategy string

const (
	// StrategySQL groups inside the database with a single query
	StrategySQL Strategy = "sql"
	// StrategyRows fetches the raw rows and groups them with Aggregate
	StrategyRows Strategy = "rows"
)

// Source is the storage the engine reads measurements from
type Source interface {
	FindBetween(ctx context.Context, start, end time.Time) ([]*models.Measurement, error)
	SummaryByPeriod(ctx context.Context, start, end time.Time, labelFormat string) ([]models.PeriodSummary, error)
}

// Recorder receives one observation per summary computation
type Recorder interface {
	ObserveSummary(granularity, strategy, outcome string, duration time.Duration)
}

// Outcomes reported to the Recorder
const (
	OutcomeOK      = "ok"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

// Config holds engine settings
type Config struct {
	Strategy Strategy
	Location *time.Location
	Recorder Recorder
}

// Engine computes period summaries of stored measurements. It keeps no state
// between calls; every call reads the store afresh.
type Engine struct {
	source   Source
	strategy Strategy
	loc      *time.Location
	recorder Recorder
	log      *logrus.Logger
}

// NewEngine creates a summary engine. An empty strategy means StrategySQL and
// a nil location means UTC.
func NewEngine(source Source, cfg Config, log *logrus.Logger) (*Engine, error) {
	strategy := cfg.Strategy
	if strategy == "" {
		strategy = StrategySQL
	}
	if strategy != StrategySQL && strategy != StrategyRows {
		return nil, fmt.Errorf("unknown summary strategy %q", strategy)
	}

	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = logrus.New()
	}

	return &Engine{
		source:   source,
		strategy: strategy,
		loc:      loc,
		recorder: cfg.Recorder,
		log:      log,
	}, nil
}

// Strategy returns the configured grouping strategy
func (e *Engine) Strategy() Strategy {
	return e.strategy
}

// Location returns the time zone windows and labels are computed in
func (e *Engine) Location() *time.Location {
	return e.loc
}

// Summarize aggregates the daily, monthly or yearly period containing
// anchorDate. Only the calendar day of anchorDate is used.
func (e *Engine) Summarize(ctx context.Context, granularity string, anchorDate time.Time) ([]PeriodSummary, error) {
	g, err := ParseGranularity(granularity)
	if err != nil {
		e.observe("unknown", OutcomeInvalid, 0)
		return nil, err
	}

	return e.run(ctx, g, WindowFor(g, anchorDate, e.loc))
}

// SummarizeRange aggregates [start, end) grouped at granularity
func (e *Engine) SummarizeRange(ctx context.Context, granularity string, start, end time.Time) ([]PeriodSummary, error) {
	g, err := ParseGranularity(granularity)
	if err != nil {
		e.observe("unknown", OutcomeInvalid, 0)
		return nil, err
	}

	window := Window{Start: start.In(e.loc), End: end.In(e.loc)}
	if !window.Valid() {
		e.observe(g.String(), OutcomeInvalid, 0)
		return nil, apperrors.InvalidArgument("end must be after start, got %s", window)
	}

	return e.run(ctx, g, window)
}

func (e *Engine) run(ctx context.Context, g Granularity, window Window) ([]PeriodSummary, error) {
	started := time.Now()

	var (
		summaries []PeriodSummary
		err       error
	)
	switch e.strategy {
	case StrategyRows:
		var rows []*models.Measurement
		rows, err = e.source.FindBetween(ctx, window.Start, window.End)
		if err == nil {
			summaries = Aggregate(rows, g, e.loc)
		}
	default:
		summaries, err = e.source.SummaryByPeriod(ctx, window.Start, window.End, g.SQLFormat())
	}
	elapsed := time.Since(started)

	if err != nil {
		e.observe(g.String(), OutcomeError, elapsed)
		e.log.WithError(err).WithFields(logrus.Fields{
			"granularity": g,
			"strategy":    e.strategy,
			"window":      window.String(),
		}).Error("Failed to compute measurement summary")
		return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, err,
			fmt.Sprintf("%s summary over %s could not be read", g, window))
	}

	if summaries == nil {
		summaries = []PeriodSummary{}
	}

	e.observe(g.String(), OutcomeOK, elapsed)
	e.log.WithFields(logrus.Fields{
		"granularity": g,
		"strategy":    e.strategy,
		"window":      window.String(),
		"periods":     len(summaries),
		"duration":    elapsed,
	}).Debug("Computed measurement summary")

	return summaries, nil
}

func (e *Engine) observe(granularity, outcome string, d time.Duration) {
	if e.recorder == nil {
		return
	}
	e.recorder.ObserveSummary(granularity, string(e.strategy), outcome, d)
}
