package middleware

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/highbelief/solar-monitor-go/internal/core/auth"
	"github.com/highbelief/solar-monitor-go/pkg/logger"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubValidator struct{}

func (stubValidator) ValidateToken(token string) (*auth.UserInfo, error) {
	if token == "good" {
		return &auth.UserInfo{Username: "operator"}, nil
	}
	return nil, errors.New("bad token")
}

func newEngine(middleware ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware...)
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("username"))
	})
	r.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})
	return r
}

func serve(r *gin.Engine, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := newEngine(AuthMiddleware(stubValidator{}))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"invalid token", "Bearer bad", http.StatusUnauthorized},
		{"valid token", "Bearer good", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := http.Header{}
			if tt.header != "" {
				header.Set("Authorization", tt.header)
			}
			w := serve(r, "/ping", header)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "operator", w.Body.String())
			}
		})
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	r := newEngine(RequestIDMiddleware())

	w := serve(r, "/ping", nil)
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)

	w = serve(r, "/ping", http.Header{RequestIDHeader: {"abc-123"}})
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(60, 2)
	defer rl.Stop()

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"))
}

func TestErrorHandlingMiddleware(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	r := newEngine(ErrorHandlingMiddleware(log))

	w := serve(r, "/panic", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
}

func TestLoggingMiddleware(t *testing.T) {
	log := logger.New("info", "json")
	log.SetOutput(io.Discard)
	log.SetBatchSize(10)
	r := newEngine(LoggingMiddleware(log))

	serve(r, "/ping", nil)
	serve(r, "/ping", nil)
	assert.Equal(t, 2, log.Pending())

	serve(r, "/missing", nil)
	assert.Equal(t, 2, log.Pending())
}

func TestCORSMiddleware(t *testing.T) {
	r := newEngine(CORSMiddleware([]string{"https://dashboard.example.com"}))

	w := serve(r, "/ping", http.Header{"Origin": {"https://dashboard.example.com"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://dashboard.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(r, "/ping", http.Header{"Origin": {"https://elsewhere.example.com"}})
	assert.Equal(t, http.StatusForbidden, w.Code)
}
