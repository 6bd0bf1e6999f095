package database

import (
	"time"

	"github.com/highbelief/solar-monitor-go/internal/database/repositories"
	"github.com/highbelief/solar-monitor-go/internal/database/sqlite"
	"github.com/jmoiron/sqlx"
)

// Repositories holds all repository instances
type Repositories struct {
	Measurement repositories.MeasurementRepository
	Forecast    repositories.ForecastRepository
	Weather     repositories.WeatherForecastRepository
}

// NewRepositories creates all repository instances. loc is the time zone of
// the stored measurement timestamps.
func NewRepositories(db *sqlx.DB, loc *time.Location) *Repositories {
	return &Repositories{
		Measurement: sqlite.NewMeasurementRepository(db, loc),
		Forecast:    sqlite.NewForecastRepository(db),
		Weather:     sqlite.NewWeatherForecastRepository(db),
	}
}
