package measurements

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/highbelief/solar-monitor-go/internal/database/models"
	"github.com/highbelief/solar-monitor-go/internal/database/repositories"
	apperrors "github.com/highbelief/solar-monitor-go/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DefaultMaxRange bounds a raw range read when no limit is configured
const DefaultMaxRange = 31 * 24 * time.Hour

// DefaultStaleAfter is the data age after which ingestion is considered stalled
const DefaultStaleAfter = 2 * time.Hour

// QueryRecorder receives the duration of each repository call
type QueryRecorder interface {
	ObserveQuery(operation string, duration time.Duration, err error)
}

// Config holds measurement service settings
type Config struct {
	MaxRange   time.Duration
	StaleAfter time.Duration
	Location   *time.Location
	Recorder   QueryRecorder
}

// Freshness describes how recent the newest stored measurement is
type Freshness struct {
	HasData          bool       `json:"hasData"`
	LatestMeasuredAt *time.Time `json:"latestMeasuredAt,omitempty"`
	AgeSeconds       float64    `json:"ageSeconds"`
	StaleAfter       string     `json:"staleAfter"`
	Stale            bool       `json:"stale"`
	CheckedAt        time.Time  `json:"checkedAt"`
}

// Service serves measurement reads
type Service struct {
	repo       repositories.MeasurementRepository
	maxRange   time.Duration
	staleAfter time.Duration
	loc        *time.Location
	recorder   QueryRecorder
	logger     *logrus.Logger
}

// NewService creates a new measurement service
func NewService(repo repositories.MeasurementRepository, cfg Config, logger *logrus.Logger) *Service {
	if cfg.MaxRange <= 0 {
		cfg.MaxRange = DefaultMaxRange
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = DefaultStaleAfter
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &Service{
		repo:       repo,
		maxRange:   cfg.MaxRange,
		staleAfter: cfg.StaleAfter,
		loc:        cfg.Location,
		recorder:   cfg.Recorder,
		logger:     logger,
	}
}

// Location returns the plant time zone
func (s *Service) Location() *time.Location {
	return s.loc
}

// StaleAfter returns the configured staleness threshold
func (s *Service) StaleAfter() time.Duration {
	return s.staleAfter
}

// ParseTimestamp accepts RFC 3339 or a zone-less YYYY-MM-DDTHH:MM:SS, the
// latter read as plant local time.
func (s *Service) ParseTimestamp(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.In(s.loc), nil
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02T15:04", models.DateTimeLayout} {
		if t, err := time.ParseInLocation(layout, value, s.loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperrors.InvalidArgument("invalid timestamp %q: expected RFC 3339 or YYYY-MM-DDTHH:MM:SS", value)
}

// GetMeasurements returns the measurements in [start, end) in ascending order
func (s *Service) GetMeasurements(ctx context.Context, start, end time.Time) ([]*models.Measurement, error) {
	if !end.After(start) {
		return nil, apperrors.InvalidArgument("end (%s) must be after start (%s)", end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	if end.Sub(start) > s.maxRange {
		return nil, apperrors.InvalidArgument("range of %s exceeds the maximum of %s", end.Sub(start), s.maxRange)
	}

	started := time.Now()
	rows, err := s.repo.FindBetween(ctx, start, end)
	s.observe("measurements.find_between", started, err)
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"start": start,
			"end":   end,
		}).Error("Failed to read measurements")
		return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, err,
			fmt.Sprintf("measurements in [%s, %s) could not be read", start.Format(time.RFC3339), end.Format(time.RFC3339)))
	}

	if rows == nil {
		rows = []*models.Measurement{}
	}
	return rows, nil
}

// GetLatest returns the most recent measurement
func (s *Service) GetLatest(ctx context.Context) (*models.Measurement, error) {
	started := time.Now()
	latest, err := s.repo.Latest(ctx)
	if errors.Is(err, repositories.ErrNotFound) {
		s.observe("measurements.latest", started, nil)
		return nil, apperrors.WithDetails(apperrors.ErrNotFound, "no measurements have been recorded")
	}
	s.observe("measurements.latest", started, err)
	if err != nil {
		s.logger.WithError(err).Error("Failed to read latest measurement")
		return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, err, "latest measurement could not be read")
	}
	return latest, nil
}

// Freshness reports the age of the newest measurement at now. An empty store
// is reported as stale.
func (s *Service) Freshness(ctx context.Context, now time.Time) (*Freshness, error) {
	report := &Freshness{
		StaleAfter: s.staleAfter.String(),
		Stale:      true,
		CheckedAt:  now,
	}

	latest, err := s.GetLatest(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return report, nil
		}
		return nil, err
	}

	measuredAt := latest.MeasuredAt
	age := now.Sub(measuredAt)
	if age < 0 {
		age = 0
	}

	report.HasData = true
	report.LatestMeasuredAt = &measuredAt
	report.AgeSeconds = age.Seconds()
	report.Stale = age > s.staleAfter
	return report, nil
}

func (s *Service) observe(operation string, started time.Time, err error) {
	if s.recorder != nil {
		s.recorder.ObserveQuery(operation, time.Since(started), err)
	}
}
