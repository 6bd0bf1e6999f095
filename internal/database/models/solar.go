package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

const (
	// DateLayout is the storage and wire format of calendar dates
	DateLayout = "2006-01-02"
	// DateTimeLayout is the storage format of wall-clock timestamps
	DateTimeLayout = "2006-01-02 15:04:05"
)

// Measurement is one sensor reading from the plant
type Measurement struct {
	ID                    int64     `json:"id" db:"id"`
	MeasuredAt            time.Time `json:"measuredAt" db:"measured_at"`
	PowerMw               *float64  `json:"powerMw" db:"power_mw"`
	CumulativeMwh         *float64  `json:"cumulativeMwh" db:"cumulative_mwh"`
	IrradianceWm2         *float64  `json:"irradianceWm2" db:"irradiance_wm2"`
	TemperatureC          *float64  `json:"temperatureC" db:"temperature_c"`
	WindSpeedMs           *float64  `json:"windSpeedMs" db:"wind_speed_ms"`
	ForecastIrradianceWm2 *float64  `json:"forecastIrradianceWm2" db:"forecast_irradiance_wm2"`
	ForecastTemperatureC  *float64  `json:"forecastTemperatureC" db:"forecast_temperature_c"`
	ForecastWindSpeedMs   *float64  `json:"forecastWindSpeedMs" db:"forecast_wind_speed_ms"`
	CreatedAt             *Stamp    `json:"createdAt,omitempty" db:"created_at"`
}

// PeriodSummary aggregates the measurements sharing one period label
type PeriodSummary struct {
	Period         string  `json:"period" db:"period"`
	TotalEnergyMwh float64 `json:"totalEnergyMwh" db:"total_energy_mwh"`
	AvgIrradiance  float64 `json:"avgIrradiance" db:"avg_irradiance"`
	AvgTemperature float64 `json:"avgTemperature" db:"avg_temperature"`
}

// ForecastArima is a short-term daily point forecast
type ForecastArima struct {
	ID           int64    `json:"id" db:"id"`
	ForecastDate Date     `json:"forecastDate" db:"forecast_date"`
	PredictedMwh float64  `json:"predictedMwh" db:"predicted_mwh"`
	ActualMwh    *float64 `json:"actualMwh" db:"actual_mwh"`
	RMSE         *float64 `json:"rmse" db:"rmse"`
	MAE          *float64 `json:"mae" db:"mae"`
	MAPE         *float64 `json:"mape" db:"mape"`
	CreatedAt    *Stamp   `json:"createdAt,omitempty" db:"created_at"`
}

// ForecastSarima is a mid-term forecast covering [ForecastStart, ForecastEnd]
type ForecastSarima struct {
	ID            int64    `json:"id" db:"id"`
	ForecastStart Date     `json:"forecastStart" db:"forecast_start"`
	ForecastEnd   Date     `json:"forecastEnd" db:"forecast_end"`
	PredictedMwh  float64  `json:"predictedMwh" db:"predicted_mwh"`
	ActualMwh     *float64 `json:"actualMwh" db:"actual_mwh"`
	RMSE          *float64 `json:"rmse" db:"rmse"`
	MAE           *float64 `json:"mae" db:"mae"`
	MAPE          *float64 `json:"mape" db:"mape"`
	CreatedAt     *Stamp   `json:"createdAt,omitempty" db:"created_at"`
}

// DailyWeatherForecast is the day-ahead weather outlook for the plant location
type DailyWeatherForecast struct {
	ID                      int64    `json:"id" db:"id"`
	ForecastDate            Date     `json:"forecastDate" db:"forecast_date"`
	Location                string   `json:"location" db:"location"`
	ForecastTemperatureAmC  *float64 `json:"forecastTemperatureAmC" db:"forecast_temperature_am_c"`
	ForecastTemperaturePmC  *float64 `json:"forecastTemperaturePmC" db:"forecast_temperature_pm_c"`
	ForecastPrecipProbAm    *float64 `json:"forecastPrecipProbAm" db:"forecast_precip_prob_am"`
	ForecastPrecipProbPm    *float64 `json:"forecastPrecipProbPm" db:"forecast_precip_prob_pm"`
	ForecastTemperatureMinC *float64 `json:"forecastTemperatureMinC" db:"forecast_temperature_min_c"`
	ForecastTemperatureMaxC *float64 `json:"forecastTemperatureMaxC" db:"forecast_temperature_max_c"`
	ForecastPrecipProb      *float64 `json:"forecastPrecipProb" db:"forecast_precip_prob"`
	ForecastSkyAm           *string  `json:"forecastSkyAm" db:"forecast_sky_am"`
	ForecastSkyPm           *string  `json:"forecastSkyPm" db:"forecast_sky_pm"`
	CreatedAt               *Stamp   `json:"createdAt,omitempty" db:"created_at"`
}

// Date is a calendar day without time of day. It is stored and serialized as
// YYYY-MM-DD.
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar day
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// Before reports whether d is an earlier day than other
func (d Date) Before(other Date) bool {
	return d.String() < other.String()
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("date must be a quoted string, got %s", data)
	}
	parsed, err := ParseDate(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

func (d *Date) Scan(src interface{}) error {
	t, err := scanTime(src)
	if err != nil {
		return fmt.Errorf("scan date: %w", err)
	}
	*d = NewDate(t)
	return nil
}

// Stamp is a server-assigned timestamp such as created_at. SQLite writes these
// in UTC.
type Stamp struct {
	time.Time
}

func (s *Stamp) Scan(src interface{}) error {
	t, err := scanTime(src)
	if err != nil {
		return fmt.Errorf("scan timestamp: %w", err)
	}
	s.Time = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	return nil
}

func (s Stamp) Value() (driver.Value, error) {
	return s.UTC().Format(DateTimeLayout), nil
}

// InLocation re-reads the wall clock of t as a time in loc
func InLocation(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}

// FormatLocal renders t as stored wall-clock text in loc
func FormatLocal(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateTimeLayout)
}

var scanLayouts = []string{
	DateTimeLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	time.RFC3339Nano,
	DateLayout,
}

func scanTime(src interface{}) (time.Time, error) {
	switch v := src.(type) {
	case time.Time:
		return v, nil
	case string:
		return parseStored(v)
	case []byte:
		return parseStored(string(v))
	default:
		return time.Time{}, fmt.Errorf("unsupported type %T", src)
	}
}

func parseStored(s string) (time.Time, error) {
	for _, layout := range scanLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}
