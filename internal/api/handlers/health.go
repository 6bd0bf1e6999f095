package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/highbelief/solar-monitor-go/internal/database"
	"github.com/highbelief/solar-monitor-go/pkg/utils"
	"github.com/highbelief/solar-monitor-go/pkg/version"
)

// Health returns the health status of the service. A failed database ping
// turns the response into a 503 so load balancers stop routing here.
func (h *Handlers) Health(c *gin.Context) {
	dbHealth := database.HealthStatus(c.Request.Context(), h.db)

	status := "healthy"
	if dbHealth["connection"] != "healthy" {
		status = "degraded"
	}

	health := gin.H{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   version.ServiceName,
		"version":   version.GetVersion(),
		"database":  dbHealth,
	}

	if status != "healthy" {
		c.JSON(http.StatusServiceUnavailable, utils.Response{
			Success:   false,
			Data:      health,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	utils.SendSuccess(c, health)
}

// Status is the public status endpoint: plant identity and build information
func (h *Handlers) Status(c *gin.Context) {
	utils.SendSuccess(c, gin.H{
		"service": version.ServiceName,
		"version": version.GetBuildInfo(),
		"plant": gin.H{
			"name":     h.cfg.Plant.Name,
			"location": h.cfg.Plant.Location,
			"timezone": h.cfg.Plant.Timezone,
		},
		"summaryStrategy": h.summary.Strategy(),
		"authRequired":    h.cfg.Auth.Enabled,
		"uptimeSeconds":   int64(time.Since(h.startedAt).Seconds()),
	})
}
