package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/highbelief/solar-monitor-go/internal/api/handlers"
	"github.com/highbelief/solar-monitor-go/internal/api/middleware"
	"github.com/highbelief/solar-monitor-go/internal/config"
	"github.com/highbelief/solar-monitor-go/internal/core/auth"
	"github.com/highbelief/solar-monitor-go/internal/core/forecast"
	"github.com/highbelief/solar-monitor-go/internal/core/measurements"
	"github.com/highbelief/solar-monitor-go/internal/core/metrics"
	"github.com/highbelief/solar-monitor-go/internal/core/monitor"
	"github.com/highbelief/solar-monitor-go/internal/core/summary"
	"github.com/highbelief/solar-monitor-go/internal/core/weather"
	"github.com/highbelief/solar-monitor-go/internal/database"
	"github.com/highbelief/solar-monitor-go/internal/database/dbtest"
	"github.com/highbelief/solar-monitor-go/internal/database/seed"
	"github.com/highbelief/solar-monitor-go/pkg/logger"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	router    *gin.Engine
	db        *sqlx.DB
	collector *metrics.PrometheusCollector
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    int             `json:"code"`
	Details json.RawMessage `json:"details"`
}

func newTestEnv(t *testing.T, mutate func(*config.Config)) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.Security.RateLimiting.Enabled = false
	if mutate != nil {
		mutate(cfg)
	}
	loc := cfg.Location()

	log := logger.New("error", "json")
	log.SetOutput(io.Discard)

	db := dbtest.Open(t)
	repos := database.NewRepositories(db, loc)

	fixture, err := seed.LoadFile("testdata/site.yaml")
	require.NoError(t, err)
	_, err = fixture.Apply(context.Background(), seed.Targets{
		Measurements: repos.Measurement,
		Forecasts:    repos.Forecast,
		Weather:      repos.Weather,
	}, loc)
	require.NoError(t, err)

	collector := metrics.NewPrometheusCollector(&metrics.MetricsConfig{Enabled: true, Prefix: "solar"})

	engine, err := summary.NewEngine(repos.Measurement, summary.Config{
		Strategy: summary.Strategy(cfg.Summary.Strategy),
		Location: loc,
		Recorder: collector,
	}, log.Logger)
	require.NoError(t, err)

	services := handlers.Services{
		Summary: engine,
		Measurements: measurements.NewService(repos.Measurement, measurements.Config{
			MaxRange: config.Duration(cfg.Measurements.MaxRange, measurements.DefaultMaxRange),
			Location: loc,
			Recorder: collector,
		}, log.Logger),
		Forecasts: forecast.NewService(repos.Forecast, collector, log.Logger),
		Weather:   weather.NewService(repos.Weather, log.Logger),
		Resources: monitor.NewResourceMonitor(t.TempDir(), log.Logger),
	}
	if cfg.Auth.Enabled {
		services.Auth, err = auth.NewService(auth.Config{
			Username:    cfg.Auth.Username,
			Password:    cfg.Auth.Password,
			JWTSecret:   cfg.Auth.JWTSecret,
			TokenExpiry: time.Hour,
			BcryptCost:  bcrypt.MinCost,
		}, log.Logger)
		require.NoError(t, err)
	}

	router := NewRouter(cfg, db, services, log, Options{
		Metrics:        collector,
		MetricsHandler: collector.Handler(),
	})

	return &testEnv{router: router, db: db, collector: collector}
}

func (e *testEnv) do(t *testing.T, method, target string, body string, header http.Header) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var resp envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w, resp
}

func TestRouter_Health(t *testing.T) {
	env := newTestEnv(t, nil)

	w, resp := env.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	assert.Contains(t, string(resp.Data), `"status":"healthy"`)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestRouter_HealthWithClosedDatabase(t *testing.T) {
	env := newTestEnv(t, nil)
	require.NoError(t, env.db.Close())

	w, resp := env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.False(t, resp.Success)
}

func TestRouter_Summary(t *testing.T) {
	for _, strategy := range []string{"sql", "rows"} {
		t.Run(strategy, func(t *testing.T) {
			env := newTestEnv(t, func(cfg *config.Config) { cfg.Summary.Strategy = strategy })

			w, resp := env.do(t, http.MethodGet, "/api/v1/measurements/summary?type=daily&date=2025-05-01", "", nil)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			var daily []summary.PeriodSummary
			require.NoError(t, json.Unmarshal(resp.Data, &daily))
			require.Len(t, daily, 1)
			assert.Equal(t, "2025-05-01", daily[0].Period)
			assert.InDelta(t, 25.0, daily[0].TotalEnergyMwh, 1e-9)
			assert.InDelta(t, 150.0, daily[0].AvgIrradiance, 1e-9)
			assert.InDelta(t, 21.0, daily[0].AvgTemperature, 1e-9)

			w, resp = env.do(t, http.MethodGet, "/api/v1/measurements/summary?type=monthly&date=2025-05-20", "", nil)
			require.Equal(t, http.StatusOK, w.Code)

			var monthly []summary.PeriodSummary
			require.NoError(t, json.Unmarshal(resp.Data, &monthly))
			require.Len(t, monthly, 1)
			assert.Equal(t, "2025-05", monthly[0].Period)
			assert.InDelta(t, 32.0, monthly[0].TotalEnergyMwh, 1e-9)
			assert.InDelta(t, 100.0, monthly[0].AvgIrradiance, 1e-9)
			assert.InDelta(t, 56.0/3, monthly[0].AvgTemperature, 1e-9)
		})
	}
}

func TestRouter_SummaryEmptyIsArray(t *testing.T) {
	env := newTestEnv(t, nil)

	w, resp := env.do(t, http.MethodGet, "/api/v1/measurements/summary?type=yearly&date=2019-06-01", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(resp.Data))
}

func TestRouter_SummaryRange(t *testing.T) {
	env := newTestEnv(t, nil)

	w, resp := env.do(t, http.MethodGet, "/api/v1/measurements/summary?type=daily&start=2025-05-01T00:00:00&end=2025-05-03T00:00:00", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var daily []summary.PeriodSummary
	require.NoError(t, json.Unmarshal(resp.Data, &daily))
	require.Len(t, daily, 2)
	assert.Equal(t, "2025-05-01", daily[0].Period)
	assert.Equal(t, "2025-05-02", daily[1].Period)
}

func TestRouter_SummaryRejectsBadInput(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name  string
		query string
	}{
		{"weekly", "type=weekly&date=2025-05-01"},
		{"uppercase", "type=Daily&date=2025-05-01"},
		{"missing type", "date=2025-05-01"},
		{"bad date", "type=daily&date=2025-13-01"},
		{"missing date", "type=daily"},
		{"empty range", "type=daily&start=2025-05-02T00:00:00&end=2025-05-01T00:00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := env.do(t, http.MethodGet, "/api/v1/measurements/summary?"+tt.query, "", nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.False(t, resp.Success)
			assert.Equal(t, http.StatusBadRequest, resp.Code)
		})
	}
}

func TestRouter_StorageUnavailable(t *testing.T) {
	env := newTestEnv(t, nil)
	require.NoError(t, env.db.Close())

	w, resp := env.do(t, http.MethodGet, "/api/v1/measurements/summary?type=daily&date=2025-05-01", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "Storage unavailable", resp.Error)
	assert.Contains(t, string(resp.Details), "2025-05-01T00:00:00+09:00")
	assert.NotContains(t, string(resp.Details), "sql:")

	w, _ = env.do(t, http.MethodGet, "/api/v1/weather-forecasts", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRouter_Measurements(t *testing.T) {
	env := newTestEnv(t, nil)

	w, resp := env.do(t, http.MethodGet, "/api/v1/measurements?start=2025-05-01T00:00:00&end=2025-05-02T00:00:00", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Data, &rows))
	assert.Len(t, rows, 2)

	w, _ = env.do(t, http.MethodGet, "/api/v1/measurements?start=2025-05-01T00:00:00", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = env.do(t, http.MethodGet, "/api/v1/measurements?start=2025-01-01T00:00:00&end=2025-06-01T00:00:00", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, resp = env.do(t, http.MethodGet, "/api/v1/measurements/latest", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(resp.Data), `"cumulativeMwh":7`)
}

func TestRouter_Forecasts(t *testing.T) {
	env := newTestEnv(t, nil)

	w, resp := env.do(t, http.MethodGet, "/api/v1/forecast/arima?start=2025-05-01&end=2025-05-01", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var arima []map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Data, &arima))
	assert.Len(t, arima, 1)

	w, resp = env.do(t, http.MethodGet, "/api/v1/forecast/sarima?start=2025-05-01&end=2025-05-31", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var sarima []map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Data, &sarima))
	assert.Len(t, sarima, 1)

	w, _ = env.do(t, http.MethodGet, "/api/v1/forecast/arima?start=2025-05-02&end=2025-05-01", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, resp = env.do(t, http.MethodGet, "/api/v1/forecast/arima/accuracy?start=2025-05-01&end=2025-05-31", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var report forecast.AccuracyReport
	require.NoError(t, json.Unmarshal(resp.Data, &report))
	assert.Equal(t, 2, report.Count)
	assert.InDelta(t, 1.5, report.MAE, 1e-9)

	w, _ = env.do(t, http.MethodGet, "/api/v1/forecast/sarima/accuracy?start=2025-05-01&end=2025-05-31", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_Weather(t *testing.T) {
	env := newTestEnv(t, nil)

	w, resp := env.do(t, http.MethodGet, "/api/v1/weather-forecasts", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var all []map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Data, &all))
	require.Len(t, all, 2)
	assert.Equal(t, "2025-05-02", all[0]["forecastDate"])

	w, _ = env.do(t, http.MethodGet, "/api/v1/weather-forecasts/2025-05-01", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, resp = env.do(t, http.MethodGet, "/api/v1/weather-forecasts/2030-01-01", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, resp.Success)

	w, _ = env.do(t, http.MethodGet, "/api/v1/weather-forecasts/tomorrow", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = env.do(t, http.MethodGet, "/api/v1/weather-forecasts?start=2025-05-01", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_Auth(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.Config) {
		cfg.Auth.Enabled = true
		cfg.Auth.JWTSecret = "test-secret-0123456789"
	})

	w, _ := env.do(t, http.MethodGet, "/api/v1/measurements/latest", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = env.do(t, http.MethodGet, "/api/v1/measurements/latest", "", http.Header{"Authorization": {"Bearer not-a-token"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = env.do(t, http.MethodGet, "/api/v1/status", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = env.do(t, http.MethodPost, "/api/v1/auth/login", `{"username":"admin","password":"wrong"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, resp := env.do(t, http.MethodPost, "/api/v1/auth/login", `{"username":"admin","password":"solar2025"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var login auth.LoginResponse
	require.NoError(t, json.Unmarshal(resp.Data, &login))
	require.NotEmpty(t, login.Token)

	w, _ = env.do(t, http.MethodGet, "/api/v1/measurements/latest", "", http.Header{"Authorization": {"Bearer " + login.Token}})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_LoginWhenAuthDisabled(t *testing.T) {
	env := newTestEnv(t, nil)

	w, _ := env.do(t, http.MethodPost, "/api/v1/auth/login", `{"username":"admin","password":"solar2025"}`, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_SystemStatus(t *testing.T) {
	env := newTestEnv(t, nil)

	w, resp := env.do(t, http.MethodGet, "/api/v1/system/status", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var status map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(resp.Data, &status))
	assert.Contains(t, status, "resources")
	assert.Contains(t, status, "freshness")
	assert.Contains(t, string(status["freshness"]), `"hasData":true`)
}

func TestRouter_NotFound(t *testing.T) {
	env := newTestEnv(t, nil)

	w, resp := env.do(t, http.MethodGet, "/api/v1/measurement/summary", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, string(resp.Details), "/api/v1/measurements/summary")
}

func TestRouter_Metrics(t *testing.T) {
	env := newTestEnv(t, nil)

	env.do(t, http.MethodGet, "/api/v1/measurements/summary?type=daily&date=2025-05-01", "", nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "solar_http_requests_total")
	assert.Contains(t, w.Body.String(), `path="/api/v1/measurements/summary"`)
}

func TestRouter_RateLimit(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.Config) {
		cfg.Security.RateLimiting = config.RateLimitSettings{Enabled: true, RequestsPerMinute: 1, BurstSize: 1}
	})

	w, _ := env.do(t, http.MethodGet, "/api/v1/status", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = env.do(t, http.MethodGet, "/api/v1/status", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
