// Package seed loads YAML fixtures of plant data into the repositories. It
// backs the seed command and the repository tests.
package seed

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/highbelief/solar-monitor-go/internal/database/models"
	"github.com/highbelief/solar-monitor-go/internal/database/repositories"
	"gopkg.in/yaml.v3"
)

// Fixture is the document layout of a seed file
type Fixture struct {
	Measurements []Measurement     `yaml:"measurements"`
	Arima        []Arima           `yaml:"forecast_arima"`
	Sarima       []Sarima          `yaml:"forecast_sarima"`
	Weather      []WeatherForecast `yaml:"daily_weather_forecast"`
}

type Measurement struct {
	MeasuredAt            string   `yaml:"measured_at"`
	PowerMw               *float64 `yaml:"power_mw"`
	CumulativeMwh         *float64 `yaml:"cumulative_mwh"`
	IrradianceWm2         *float64 `yaml:"irradiance_wm2"`
	TemperatureC          *float64 `yaml:"temperature_c"`
	WindSpeedMs           *float64 `yaml:"wind_speed_ms"`
	ForecastIrradianceWm2 *float64 `yaml:"forecast_irradiance_wm2"`
	ForecastTemperatureC  *float64 `yaml:"forecast_temperature_c"`
	ForecastWindSpeedMs   *float64 `yaml:"forecast_wind_speed_ms"`
}

type Arima struct {
	ForecastDate string   `yaml:"forecast_date"`
	PredictedMwh float64  `yaml:"predicted_mwh"`
	ActualMwh    *float64 `yaml:"actual_mwh"`
	RMSE         *float64 `yaml:"rmse"`
	MAE          *float64 `yaml:"mae"`
	MAPE         *float64 `yaml:"mape"`
}

type Sarima struct {
	ForecastStart string   `yaml:"forecast_start"`
	ForecastEnd   string   `yaml:"forecast_end"`
	PredictedMwh  float64  `yaml:"predicted_mwh"`
	ActualMwh     *float64 `yaml:"actual_mwh"`
	RMSE          *float64 `yaml:"rmse"`
	MAE           *float64 `yaml:"mae"`
	MAPE          *float64 `yaml:"mape"`
}

type WeatherForecast struct {
	ForecastDate            string   `yaml:"forecast_date"`
	Location                string   `yaml:"location"`
	ForecastTemperatureAmC  *float64 `yaml:"forecast_temperature_am_c"`
	ForecastTemperaturePmC  *float64 `yaml:"forecast_temperature_pm_c"`
	ForecastPrecipProbAm    *float64 `yaml:"forecast_precip_prob_am"`
	ForecastPrecipProbPm    *float64 `yaml:"forecast_precip_prob_pm"`
	ForecastTemperatureMinC *float64 `yaml:"forecast_temperature_min_c"`
	ForecastTemperatureMaxC *float64 `yaml:"forecast_temperature_max_c"`
	ForecastPrecipProb      *float64 `yaml:"forecast_precip_prob"`
	ForecastSkyAm           *string  `yaml:"forecast_sky_am"`
	ForecastSkyPm           *string  `yaml:"forecast_sky_pm"`
}

// Targets are the repositories a fixture is written to. Nil targets are
// skipped along with their section.
type Targets struct {
	Measurements repositories.MeasurementRepository
	Forecasts    repositories.ForecastRepository
	Weather      repositories.WeatherForecastRepository
}

// Result counts the rows written per table
type Result struct {
	Measurements int `json:"measurements"`
	Arima        int `json:"forecast_arima"`
	Sarima       int `json:"forecast_sarima"`
	Weather      int `json:"daily_weather_forecast"`
}

// Decode reads a fixture document
func Decode(r io.Reader) (*Fixture, error) {
	var fixture Fixture
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&fixture); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode fixture: %w", err)
	}
	return &fixture, nil
}

// LoadFile reads a fixture document from path
func LoadFile(path string) (*Fixture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open fixture: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Apply writes the fixture. Measurement timestamps are read as wall-clock
// times in loc.
func (f *Fixture) Apply(ctx context.Context, targets Targets, loc *time.Location) (*Result, error) {
	if loc == nil {
		loc = time.UTC
	}
	result := &Result{}

	if targets.Measurements != nil && len(f.Measurements) > 0 {
		batch := make([]*models.Measurement, 0, len(f.Measurements))
		for i, m := range f.Measurements {
			measuredAt, err := time.ParseInLocation(models.DateTimeLayout, m.MeasuredAt, loc)
			if err != nil {
				return result, fmt.Errorf("measurements[%d]: invalid measured_at %q: %w", i, m.MeasuredAt, err)
			}
			batch = append(batch, &models.Measurement{
				MeasuredAt:            measuredAt,
				PowerMw:               m.PowerMw,
				CumulativeMwh:         m.CumulativeMwh,
				IrradianceWm2:         m.IrradianceWm2,
				TemperatureC:          m.TemperatureC,
				WindSpeedMs:           m.WindSpeedMs,
				ForecastIrradianceWm2: m.ForecastIrradianceWm2,
				ForecastTemperatureC:  m.ForecastTemperatureC,
				ForecastWindSpeedMs:   m.ForecastWindSpeedMs,
			})
		}
		if err := targets.Measurements.CreateBatch(ctx, batch); err != nil {
			return result, err
		}
		result.Measurements = len(batch)
	}

	if targets.Forecasts != nil {
		for i, a := range f.Arima {
			date, err := models.ParseDate(a.ForecastDate)
			if err != nil {
				return result, fmt.Errorf("forecast_arima[%d]: invalid forecast_date %q: %w", i, a.ForecastDate, err)
			}
			row := &models.ForecastArima{
				ForecastDate: date,
				PredictedMwh: a.PredictedMwh,
				ActualMwh:    a.ActualMwh,
				RMSE:         a.RMSE,
				MAE:          a.MAE,
				MAPE:         a.MAPE,
			}
			if err := targets.Forecasts.CreateArima(ctx, row); err != nil {
				return result, err
			}
			result.Arima++
		}

		for i, s := range f.Sarima {
			start, err := models.ParseDate(s.ForecastStart)
			if err != nil {
				return result, fmt.Errorf("forecast_sarima[%d]: invalid forecast_start %q: %w", i, s.ForecastStart, err)
			}
			end, err := models.ParseDate(s.ForecastEnd)
			if err != nil {
				return result, fmt.Errorf("forecast_sarima[%d]: invalid forecast_end %q: %w", i, s.ForecastEnd, err)
			}
			row := &models.ForecastSarima{
				ForecastStart: start,
				ForecastEnd:   end,
				PredictedMwh:  s.PredictedMwh,
				ActualMwh:     s.ActualMwh,
				RMSE:          s.RMSE,
				MAE:           s.MAE,
				MAPE:          s.MAPE,
			}
			if err := targets.Forecasts.CreateSarima(ctx, row); err != nil {
				return result, err
			}
			result.Sarima++
		}
	}

	if targets.Weather != nil {
		for i, w := range f.Weather {
			date, err := models.ParseDate(w.ForecastDate)
			if err != nil {
				return result, fmt.Errorf("daily_weather_forecast[%d]: invalid forecast_date %q: %w", i, w.ForecastDate, err)
			}
			row := &models.DailyWeatherForecast{
				ForecastDate:            date,
				Location:                w.Location,
				ForecastTemperatureAmC:  w.ForecastTemperatureAmC,
				ForecastTemperaturePmC:  w.ForecastTemperaturePmC,
				ForecastPrecipProbAm:    w.ForecastPrecipProbAm,
				ForecastPrecipProbPm:    w.ForecastPrecipProbPm,
				ForecastTemperatureMinC: w.ForecastTemperatureMinC,
				ForecastTemperatureMaxC: w.ForecastTemperatureMaxC,
				ForecastPrecipProb:      w.ForecastPrecipProb,
				ForecastSkyAm:           w.ForecastSkyAm,
				ForecastSkyPm:           w.ForecastSkyPm,
			}
			if err := targets.Weather.Upsert(ctx, row); err != nil {
				return result, err
			}
			result.Weather++
		}
	}

	return result, nil
}
