package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/highbelief/solar-monitor-go/internal/core/metrics"
)

// MetricsMiddleware creates middleware for collecting HTTP metrics. Paths are
// recorded as route templates to keep label cardinality bounded.
func MetricsMiddleware(collector metrics.MetricsCollector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		collector.RecordHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
