package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/highbelief/solar-monitor-go/internal/database/models"
	"github.com/highbelief/solar-monitor-go/internal/database/repositories"
	"github.com/jmoiron/sqlx"
)

const measurementColumns = `id, measured_at, power_mw, cumulative_mwh, irradiance_wm2, temperature_c,
	wind_speed_ms, forecast_irradiance_wm2, forecast_temperature_c, forecast_wind_speed_ms, created_at`

// MeasurementRepository implements repositories.MeasurementRepository.
// measured_at holds wall-clock text in loc, so bounds are converted to loc
// before binding and scanned values are re-anchored to it.
type MeasurementRepository struct {
	db  *sqlx.DB
	loc *time.Location
}

// NewMeasurementRepository creates a new measurement repository
func NewMeasurementRepository(db *sqlx.DB, loc *time.Location) repositories.MeasurementRepository {
	if loc == nil {
		loc = time.UTC
	}
	return &MeasurementRepository{db: db, loc: loc}
}

// FindBetween returns measurements in [start, end) ordered by measured_at
func (r *MeasurementRepository) FindBetween(ctx context.Context, start, end time.Time) ([]*models.Measurement, error) {
	query := `SELECT ` + measurementColumns + `
		FROM measurement
		WHERE measured_at >= ? AND measured_at < ?
		ORDER BY measured_at, id`

	measurements := []*models.Measurement{}
	if err := r.db.SelectContext(ctx, &measurements, query, r.format(start), r.format(end)); err != nil {
		return nil, fmt.Errorf("failed to query measurements: %w", err)
	}

	for _, m := range measurements {
		m.MeasuredAt = models.InLocation(m.MeasuredAt, r.loc)
	}
	return measurements, nil
}

// SummaryByPeriod groups [start, end) by strftime(labelFormat, measured_at).
// SUM and AVG skip NULLs; COALESCE turns an all-NULL group into 0.
func (r *MeasurementRepository) SummaryByPeriod(ctx context.Context, start, end time.Time, labelFormat string) ([]models.PeriodSummary, error) {
	query := `
		SELECT
			strftime(?, measured_at) AS period,
			COALESCE(SUM(cumulative_mwh), 0.0) AS total_energy_mwh,
			COALESCE(AVG(irradiance_wm2), 0.0) AS avg_irradiance,
			COALESCE(AVG(temperature_c), 0.0) AS avg_temperature
		FROM measurement
		WHERE measured_at >= ? AND measured_at < ?
		GROUP BY period
		ORDER BY period ASC`

	summaries := []models.PeriodSummary{}
	if err := r.db.SelectContext(ctx, &summaries, query, labelFormat, r.format(start), r.format(end)); err != nil {
		return nil, fmt.Errorf("failed to summarize measurements: %w", err)
	}
	return summaries, nil
}

// Latest returns the most recent measurement
func (r *MeasurementRepository) Latest(ctx context.Context) (*models.Measurement, error) {
	query := `SELECT ` + measurementColumns + `
		FROM measurement
		ORDER BY measured_at DESC, id DESC
		LIMIT 1`

	var m models.Measurement
	if err := r.db.GetContext(ctx, &m, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get latest measurement: %w", err)
	}

	m.MeasuredAt = models.InLocation(m.MeasuredAt, r.loc)
	return &m, nil
}

// Count returns the number of stored measurements
func (r *MeasurementRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM measurement`); err != nil {
		return 0, fmt.Errorf("failed to count measurements: %w", err)
	}
	return count, nil
}

const insertMeasurement = `
	INSERT INTO measurement (
		measured_at, power_mw, cumulative_mwh, irradiance_wm2, temperature_c,
		wind_speed_ms, forecast_irradiance_wm2, forecast_temperature_c, forecast_wind_speed_ms
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

// Create inserts a measurement and sets its ID
func (r *MeasurementRepository) Create(ctx context.Context, m *models.Measurement) error {
	result, err := r.db.ExecContext(ctx, insertMeasurement, r.insertArgs(m)...)
	if err != nil {
		return fmt.Errorf("failed to create measurement: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get inserted ID: %w", err)
	}
	m.ID = id
	return nil
}

// CreateBatch inserts measurements in a single transaction
func (r *MeasurementRepository) CreateBatch(ctx context.Context, ms []*models.Measurement) error {
	if len(ms) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, insertMeasurement)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, m := range ms {
		result, err := stmt.ExecContext(ctx, r.insertArgs(m)...)
		if err != nil {
			return fmt.Errorf("failed to insert measurement at %s: %w", r.format(m.MeasuredAt), err)
		}
		if id, err := result.LastInsertId(); err == nil {
			m.ID = id
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *MeasurementRepository) insertArgs(m *models.Measurement) []interface{} {
	return []interface{}{
		r.format(m.MeasuredAt), m.PowerMw, m.CumulativeMwh, m.IrradianceWm2, m.TemperatureC,
		m.WindSpeedMs, m.ForecastIrradianceWm2, m.ForecastTemperatureC, m.ForecastWindSpeedMs,
	}
}

func (r *MeasurementRepository) format(t time.Time) string {
	return models.FormatLocal(t, r.loc)
}
