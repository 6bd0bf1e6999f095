package sqlite

import (
	"context"
	"fmt"

	"github.com/highbelief/solar-monitor-go/internal/database/models"
	"github.com/highbelief/solar-monitor-go/internal/database/repositories"
	"github.com/jmoiron/sqlx"
)

// ForecastRepository implements repositories.ForecastRepository
type ForecastRepository struct {
	db *sqlx.DB
}

// NewForecastRepository creates a new forecast repository
func NewForecastRepository(db *sqlx.DB) repositories.ForecastRepository {
	return &ForecastRepository{db: db}
}

// ArimaBetween returns ARIMA forecasts dated within [start, end], inclusive
func (r *ForecastRepository) ArimaBetween(ctx context.Context, start, end models.Date) ([]*models.ForecastArima, error) {
	query := `
		SELECT id, forecast_date, predicted_mwh, actual_mwh, rmse, mae, mape, created_at
		FROM forecast_arima
		WHERE forecast_date BETWEEN ? AND ?
		ORDER BY forecast_date, id`

	forecasts := []*models.ForecastArima{}
	if err := r.db.SelectContext(ctx, &forecasts, query, start, end); err != nil {
		return nil, fmt.Errorf("failed to query arima forecasts: %w", err)
	}
	return forecasts, nil
}

// SarimaWithin returns SARIMA forecasts whose interval lies entirely inside
// [start, end]. Intervals crossing either bound are excluded.
func (r *ForecastRepository) SarimaWithin(ctx context.Context, start, end models.Date) ([]*models.ForecastSarima, error) {
	query := `
		SELECT id, forecast_start, forecast_end, predicted_mwh, actual_mwh, rmse, mae, mape, created_at
		FROM forecast_sarima
		WHERE forecast_start >= ? AND forecast_end <= ?
		ORDER BY forecast_start, forecast_end, id`

	forecasts := []*models.ForecastSarima{}
	if err := r.db.SelectContext(ctx, &forecasts, query, start, end); err != nil {
		return nil, fmt.Errorf("failed to query sarima forecasts: %w", err)
	}
	return forecasts, nil
}

// CreateArima inserts an ARIMA forecast row
func (r *ForecastRepository) CreateArima(ctx context.Context, f *models.ForecastArima) error {
	query := `
		INSERT INTO forecast_arima (forecast_date, predicted_mwh, actual_mwh, rmse, mae, mape)
		VALUES (?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query, f.ForecastDate, f.PredictedMwh, f.ActualMwh, f.RMSE, f.MAE, f.MAPE)
	if err != nil {
		return fmt.Errorf("failed to create arima forecast: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get inserted ID: %w", err)
	}
	f.ID = id
	return nil
}

// CreateSarima inserts a SARIMA forecast row
func (r *ForecastRepository) CreateSarima(ctx context.Context, f *models.ForecastSarima) error {
	query := `
		INSERT INTO forecast_sarima (forecast_start, forecast_end, predicted_mwh, actual_mwh, rmse, mae, mape)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		f.ForecastStart, f.ForecastEnd, f.PredictedMwh, f.ActualMwh, f.RMSE, f.MAE, f.MAPE,
	)
	if err != nil {
		return fmt.Errorf("failed to create sarima forecast: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get inserted ID: %w", err)
	}
	f.ID = id
	return nil
}
