package weather

import (
	"context"
	"errors"
	"fmt"

	"github.com/highbelief/solar-monitor-go/internal/database/models"
	"github.com/highbelief/solar-monitor-go/internal/database/repositories"
	apperrors "github.com/highbelief/solar-monitor-go/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Service serves the daily weather outlook stored by the forecast collector
type Service struct {
	repo   repositories.WeatherForecastRepository
	logger *logrus.Logger
}

// NewService creates a new weather forecast service
func NewService(repo repositories.WeatherForecastRepository, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.New()
	}
	return &Service{repo: repo, logger: logger}
}

// GetAll returns every stored forecast, newest first
func (s *Service) GetAll(ctx context.Context) ([]*models.DailyWeatherForecast, error) {
	forecasts, err := s.repo.All(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to read weather forecasts")
		return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, err, "weather forecasts could not be read")
	}
	if forecasts == nil {
		forecasts = []*models.DailyWeatherForecast{}
	}
	return forecasts, nil
}

// GetByDate returns the forecast for date
func (s *Service) GetByDate(ctx context.Context, date models.Date) (*models.DailyWeatherForecast, error) {
	forecast, err := s.repo.ByDate(ctx, date)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.WithDetails(apperrors.ErrNotFound, fmt.Sprintf("no weather forecast for %s", date))
	}
	if err != nil {
		s.logger.WithError(err).WithField("date", date.String()).Error("Failed to read weather forecast")
		return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, err,
			fmt.Sprintf("weather forecast for %s could not be read", date))
	}
	return forecast, nil
}

// GetBetween returns forecasts dated within [start, end], oldest first
func (s *Service) GetBetween(ctx context.Context, start, end models.Date) ([]*models.DailyWeatherForecast, error) {
	if end.Before(start) {
		return nil, apperrors.InvalidArgument("end (%s) must not be before start (%s)", end, start)
	}

	forecasts, err := s.repo.Between(ctx, start, end)
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"start": start.String(),
			"end":   end.String(),
		}).Error("Failed to read weather forecasts")
		return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, err,
			fmt.Sprintf("weather forecasts in [%s, %s] could not be read", start, end))
	}
	if forecasts == nil {
		forecasts = []*models.DailyWeatherForecast{}
	}
	return forecasts, nil
}
