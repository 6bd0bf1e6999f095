package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/highbelief/solar-monitor-go/internal/database"
	"github.com/highbelief/solar-monitor-go/pkg/utils"
	"github.com/highbelief/solar-monitor-go/pkg/version"
)

// GetSystemStatus reports host resources, database pool state and how fresh
// the stored measurements are
func (h *Handlers) GetSystemStatus(c *gin.Context) {
	ctx, cancel := h.queryContext(c)
	defer cancel()

	status := gin.H{
		"service":  version.ServiceName,
		"version":  version.GetVersion(),
		"database": database.HealthStatus(ctx, h.db),
	}

	if h.resources != nil {
		if stats, err := h.resources.GetResourceStats(ctx); err != nil {
			h.log.WithError(err).Warn("Failed to collect resource stats")
		} else {
			status["resources"] = stats
		}
	}

	// Prefer a live reading; fall back to the scheduler's last result
	if freshness, err := h.measurements.Freshness(ctx, timeNow()); err == nil {
		status["freshness"] = freshness
	} else {
		h.log.WithError(err).Warn("Failed to check measurement freshness")
		if h.freshness != nil {
			if last, _ := h.freshness.Last(); last != nil {
				status["freshness"] = last
			}
		}
	}

	if h.freshness != nil {
		status["freshnessMonitor"] = gin.H{"running": h.freshness.Running()}
	}

	utils.SendSuccess(c, status)
}
