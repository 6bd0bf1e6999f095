package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/highbelief/solar-monitor-go/internal/database/models"
)

// ErrNotFound is returned by single-row lookups that match nothing
var ErrNotFound = errors.New("record not found")

// MeasurementRepository defines measurement data access methods. Range reads are
// half-open: measured_at >= start AND measured_at < end.
type MeasurementRepository interface {
	FindBetween(ctx context.Context, start, end time.Time) ([]*models.Measurement, error)
	// SummaryByPeriod groups [start, end) by the strftime label format, ascending
	SummaryByPeriod(ctx context.Context, start, end time.Time, labelFormat string) ([]models.PeriodSummary, error)
	Latest(ctx context.Context) (*models.Measurement, error)
	Count(ctx context.Context) (int64, error)

	// Used by seeding and tests; the HTTP surface is read-only
	Create(ctx context.Context, m *models.Measurement) error
	CreateBatch(ctx context.Context, ms []*models.Measurement) error
}

// ForecastRepository defines ARIMA and SARIMA forecast data access methods
type ForecastRepository interface {
	// ArimaBetween matches forecast_date BETWEEN start AND end
	ArimaBetween(ctx context.Context, start, end models.Date) ([]*models.ForecastArima, error)
	// SarimaWithin matches intervals fully inside [start, end]
	SarimaWithin(ctx context.Context, start, end models.Date) ([]*models.ForecastSarima, error)

	CreateArima(ctx context.Context, f *models.ForecastArima) error
	CreateSarima(ctx context.Context, f *models.ForecastSarima) error
}

// WeatherForecastRepository defines daily weather forecast data access methods
type WeatherForecastRepository interface {
	All(ctx context.Context) ([]*models.DailyWeatherForecast, error)
	ByDate(ctx context.Context, date models.Date) (*models.DailyWeatherForecast, error)
	Between(ctx context.Context, start, end models.Date) ([]*models.DailyWeatherForecast, error)

	Upsert(ctx context.Context, f *models.DailyWeatherForecast) error
}
