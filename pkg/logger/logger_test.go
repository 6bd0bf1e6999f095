package logger

import (
	"bytes"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, logrus.WarnLevel, ParseLevel("WARN"))
	assert.Equal(t, logrus.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, logrus.InfoLevel, ParseLevel("bogus"))
}

func TestBatchLogger_FoldsSuccessfulRequests(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	log := New("info", "json")
	var buf bytes.Buffer
	log.SetOutput(&buf)
	log.SetBatchSize(3)

	log.LogRequest("GET", "/api/v1/measurements", 200, 5*time.Millisecond, nil)
	log.LogRequest("GET", "/api/v1/measurements", 200, 15*time.Millisecond, nil)
	assert.Equal(t, 2, log.Pending())
	assert.Empty(t, buf.String())

	log.LogRequest("GET", "/api/v1/measurements/summary", 200, time.Millisecond, nil)
	assert.Equal(t, 0, log.Pending())
	assert.Contains(t, buf.String(), "Request batch summary")
}

func TestBatchLogger_LogsFailuresImmediately(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	log := New("info", "text")
	var buf bytes.Buffer
	log.SetOutput(&buf)

	log.LogRequest("GET", "/api/v1/measurements/summary", 400, time.Millisecond, logrus.Fields{"client_ip": "127.0.0.1"})

	assert.Equal(t, 0, log.Pending())
	assert.Contains(t, buf.String(), "Status: 400")
	assert.Contains(t, buf.String(), "client_ip=127.0.0.1")
}

func TestBatchLogger_FlushPending(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	log := New("info", "json")
	var buf bytes.Buffer
	log.SetOutput(&buf)

	log.LogRequest("GET", "/health", 200, time.Millisecond, nil)
	log.FlushPending()

	assert.Equal(t, 0, log.Pending())
	assert.Contains(t, buf.String(), "\"total_requests\":1")
}
