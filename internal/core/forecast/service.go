package forecast

import (
	"context"
	"fmt"
	"time"

	"github.com/highbelief/solar-monitor-go/internal/database/models"
	"github.com/highbelief/solar-monitor-go/internal/database/repositories"
	apperrors "github.com/highbelief/solar-monitor-go/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Model identifies a forecast family
type Model string

const (
	// Arima forecasts are daily point predictions
	Arima Model = "arima"
	// Sarima forecasts predict the total over a multi-day interval
	Sarima Model = "sarima"
)

// ParseModel accepts "arima" or "sarima"
func ParseModel(value string) (Model, error) {
	switch Model(value) {
	case Arima, Sarima:
		return Model(value), nil
	default:
		return "", apperrors.InvalidArgument("unknown forecast model %q: expected arima or sarima", value)
	}
}

// QueryRecorder receives the duration of each repository call
type QueryRecorder interface {
	ObserveQuery(operation string, duration time.Duration, err error)
}

// Service serves forecast reads. Forecast rows are produced elsewhere and are
// never modified here.
type Service struct {
	repo     repositories.ForecastRepository
	recorder QueryRecorder
	logger   *logrus.Logger
}

// NewService creates a new forecast service. recorder may be nil.
func NewService(repo repositories.ForecastRepository, recorder QueryRecorder, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.New()
	}
	return &Service{repo: repo, recorder: recorder, logger: logger}
}

// GetArimaForecasts returns ARIMA forecasts dated within [start, end]
func (s *Service) GetArimaForecasts(ctx context.Context, start, end models.Date) ([]*models.ForecastArima, error) {
	if err := validateRange(start, end); err != nil {
		return nil, err
	}

	began := time.Now()
	rows, err := s.repo.ArimaBetween(ctx, start, end)
	s.observe("forecast.arima_between", began, err)
	if err != nil {
		return nil, s.storageError(err, Arima, start, end)
	}
	if rows == nil {
		rows = []*models.ForecastArima{}
	}
	return rows, nil
}

// GetSarimaForecasts returns SARIMA forecasts whose interval lies inside [start, end]
func (s *Service) GetSarimaForecasts(ctx context.Context, start, end models.Date) ([]*models.ForecastSarima, error) {
	if err := validateRange(start, end); err != nil {
		return nil, err
	}

	began := time.Now()
	rows, err := s.repo.SarimaWithin(ctx, start, end)
	s.observe("forecast.sarima_within", began, err)
	if err != nil {
		return nil, s.storageError(err, Sarima, start, end)
	}
	if rows == nil {
		rows = []*models.ForecastSarima{}
	}
	return rows, nil
}

// Accuracy scores the stored forecasts of model in [start, end] against their
// realized actuals
func (s *Service) Accuracy(ctx context.Context, model Model, start, end models.Date) (*AccuracyReport, error) {
	var pairs []Pair

	switch model {
	case Arima:
		rows, err := s.GetArimaForecasts(ctx, start, end)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			if row.ActualMwh != nil {
				pairs = append(pairs, Pair{Predicted: row.PredictedMwh, Actual: *row.ActualMwh})
			}
		}
	case Sarima:
		rows, err := s.GetSarimaForecasts(ctx, start, end)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			if row.ActualMwh != nil {
				pairs = append(pairs, Pair{Predicted: row.PredictedMwh, Actual: *row.ActualMwh})
			}
		}
	default:
		return nil, apperrors.InvalidArgument("unknown forecast model %q", model)
	}

	report := Score(pairs)
	report.Model = model
	report.Start = start
	report.End = end

	s.logger.WithFields(logrus.Fields{
		"model": model,
		"start": start.String(),
		"end":   end.String(),
		"count": report.Count,
	}).Debug("Computed forecast accuracy")

	return report, nil
}

func validateRange(start, end models.Date) error {
	if end.Before(start) {
		return apperrors.InvalidArgument("end (%s) must not be before start (%s)", end, start)
	}
	return nil
}

func (s *Service) storageError(err error, model Model, start, end models.Date) error {
	s.logger.WithError(err).WithFields(logrus.Fields{
		"model": model,
		"start": start.String(),
		"end":   end.String(),
	}).Error("Failed to read forecasts")
	return apperrors.Wrap(apperrors.ErrStorageUnavailable, err,
		fmt.Sprintf("%s forecasts in [%s, %s] could not be read", model, start, end))
}

func (s *Service) observe(operation string, began time.Time, err error) {
	if s.recorder != nil {
		s.recorder.ObserveQuery(operation, time.Since(began), err)
	}
}
