package utils

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	apperrors "github.com/highbelief/solar-monitor-go/pkg/errors"
)

// Response represents a standard API response
type Response struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data"`
	Timestamp string      `json:"timestamp"`
	Meta      interface{} `json:"meta,omitempty"`
}

// ErrorResponse represents an error response with request context
type ErrorResponse struct {
	Success   bool        `json:"success"`
	Error     string      `json:"error"`
	Code      int         `json:"code"`
	Timestamp string      `json:"timestamp"`
	Request   RequestInfo `json:"request"`
	Details   interface{} `json:"details,omitempty"`
}

// RequestInfo provides context about the failed request
type RequestInfo struct {
	Method string `json:"method"`
	Path   string `json:"path"`
	Query  string `json:"query,omitempty"`
}

// SendSuccess sends a successful response
func SendSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// SendSuccessWithMeta sends a successful response with metadata
func SendSuccessWithMeta(c *gin.Context, data interface{}, meta interface{}) {
	c.JSON(http.StatusOK, Response{
		Success:   true,
		Data:      data,
		Meta:      meta,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// SendError sends an error response with request context
func SendError(c *gin.Context, statusCode int, message string) {
	sendError(c, statusCode, message, nil)
}

// SendAppError maps err onto an error response. AppErrors keep their code and
// details; anything else becomes a generic 500 so driver messages never leak.
func SendAppError(c *gin.Context, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		sendError(c, http.StatusInternalServerError, apperrors.ErrInternalServer.Message, nil)
		return
	}

	var details interface{}
	if appErr.Details != "" {
		details = map[string]interface{}{"message": appErr.Details}
	}
	sendError(c, appErr.Code, appErr.Message, details)
}

func sendError(c *gin.Context, statusCode int, message string, details interface{}) {
	errorResponse := ErrorResponse{
		Success:   false,
		Error:     message,
		Code:      statusCode,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Request: RequestInfo{
			Method: c.Request.Method,
			Path:   c.Request.URL.Path,
			Query:  c.Request.URL.RawQuery,
		},
		Details: details,
	}

	if statusCode == http.StatusNotFound && details == nil {
		if suggestions := generateNotFoundSuggestions(c.Request.URL.Path); len(suggestions) > 0 {
			errorResponse.Details = map[string]interface{}{
				"suggestions": suggestions,
				"message":     "The requested endpoint does not exist. Check the suggestions below for similar endpoints.",
			}
		}
	} else if statusCode == http.StatusMethodNotAllowed {
		errorResponse.Details = map[string]interface{}{
			"message": "The HTTP method is not supported for this endpoint.",
		}
	}

	c.JSON(statusCode, errorResponse)
}

var knownEndpoints = []string{
	"/health",
	"/api/v1/status",
	"/api/v1/auth/login",
	"/api/v1/measurements",
	"/api/v1/measurements/latest",
	"/api/v1/measurements/summary",
	"/api/v1/forecast/arima",
	"/api/v1/forecast/sarima",
	"/api/v1/weather-forecasts",
	"/api/v1/system/status",
}

// generateNotFoundSuggestions returns known endpoints sharing a keyword with path
func generateNotFoundSuggestions(path string) []string {
	keywords := map[string]string{
		"measure":  "measurements",
		"summar":   "summary",
		"arima":    "arima",
		"forecast": "forecast",
		"weather":  "weather",
		"auth":     "auth",
		"login":    "auth",
		"status":   "status",
		"health":   "health",
	}

	pathLower := strings.ToLower(path)
	seen := make(map[string]bool)
	var suggestions []string

	for fragment, endpointKeyword := range keywords {
		if !strings.Contains(pathLower, fragment) {
			continue
		}
		for _, endpoint := range knownEndpoints {
			if strings.Contains(endpoint, endpointKeyword) && !seen[endpoint] {
				seen[endpoint] = true
				suggestions = append(suggestions, endpoint)
			}
		}
	}

	sort.Strings(suggestions)
	if len(suggestions) > 5 {
		suggestions = suggestions[:5]
	}
	return suggestions
}
