package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/highbelief/solar-monitor-go/internal/database/models"
	"github.com/highbelief/solar-monitor-go/internal/database/repositories"
	"github.com/jmoiron/sqlx"
)

const weatherColumns = `id, forecast_date, location,
	forecast_temperature_am_c, forecast_temperature_pm_c,
	forecast_precip_prob_am, forecast_precip_prob_pm,
	forecast_temperature_min_c, forecast_temperature_max_c,
	forecast_precip_prob, forecast_sky_am, forecast_sky_pm, created_at`

// WeatherForecastRepository implements repositories.WeatherForecastRepository
type WeatherForecastRepository struct {
	db *sqlx.DB
}

// NewWeatherForecastRepository creates a new weather forecast repository
func NewWeatherForecastRepository(db *sqlx.DB) repositories.WeatherForecastRepository {
	return &WeatherForecastRepository{db: db}
}

// All returns every forecast, newest date first
func (r *WeatherForecastRepository) All(ctx context.Context) ([]*models.DailyWeatherForecast, error) {
	query := `SELECT ` + weatherColumns + ` FROM daily_weather_forecast ORDER BY forecast_date DESC`

	forecasts := []*models.DailyWeatherForecast{}
	if err := r.db.SelectContext(ctx, &forecasts, query); err != nil {
		return nil, fmt.Errorf("failed to query weather forecasts: %w", err)
	}
	return forecasts, nil
}

// ByDate returns the forecast for one day
func (r *WeatherForecastRepository) ByDate(ctx context.Context, date models.Date) (*models.DailyWeatherForecast, error) {
	query := `SELECT ` + weatherColumns + ` FROM daily_weather_forecast WHERE forecast_date = ?`

	var forecast models.DailyWeatherForecast
	if err := r.db.GetContext(ctx, &forecast, query, date); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get weather forecast for %s: %w", date, err)
	}
	return &forecast, nil
}

// Between returns forecasts dated within [start, end], oldest first
func (r *WeatherForecastRepository) Between(ctx context.Context, start, end models.Date) ([]*models.DailyWeatherForecast, error) {
	query := `SELECT ` + weatherColumns + `
		FROM daily_weather_forecast
		WHERE forecast_date BETWEEN ? AND ?
		ORDER BY forecast_date`

	forecasts := []*models.DailyWeatherForecast{}
	if err := r.db.SelectContext(ctx, &forecasts, query, start, end); err != nil {
		return nil, fmt.Errorf("failed to query weather forecasts: %w", err)
	}
	return forecasts, nil
}

// Upsert stores f, replacing any existing forecast for the same date
func (r *WeatherForecastRepository) Upsert(ctx context.Context, f *models.DailyWeatherForecast) error {
	query := `
		INSERT INTO daily_weather_forecast (
			forecast_date, location,
			forecast_temperature_am_c, forecast_temperature_pm_c,
			forecast_precip_prob_am, forecast_precip_prob_pm,
			forecast_temperature_min_c, forecast_temperature_max_c,
			forecast_precip_prob, forecast_sky_am, forecast_sky_pm
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(forecast_date) DO UPDATE SET
			location = excluded.location,
			forecast_temperature_am_c = excluded.forecast_temperature_am_c,
			forecast_temperature_pm_c = excluded.forecast_temperature_pm_c,
			forecast_precip_prob_am = excluded.forecast_precip_prob_am,
			forecast_precip_prob_pm = excluded.forecast_precip_prob_pm,
			forecast_temperature_min_c = excluded.forecast_temperature_min_c,
			forecast_temperature_max_c = excluded.forecast_temperature_max_c,
			forecast_precip_prob = excluded.forecast_precip_prob,
			forecast_sky_am = excluded.forecast_sky_am,
			forecast_sky_pm = excluded.forecast_sky_pm`

	_, err := r.db.ExecContext(ctx, query,
		f.ForecastDate, f.Location,
		f.ForecastTemperatureAmC, f.ForecastTemperaturePmC,
		f.ForecastPrecipProbAm, f.ForecastPrecipProbPm,
		f.ForecastTemperatureMinC, f.ForecastTemperatureMaxC,
		f.ForecastPrecipProb, f.ForecastSkyAm, f.ForecastSkyPm,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert weather forecast for %s: %w", f.ForecastDate, err)
	}
	return nil
}
