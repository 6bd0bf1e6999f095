package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/highbelief/solar-monitor-go/internal/core/summary"
	apperrors "github.com/highbelief/solar-monitor-go/pkg/errors"
	"github.com/highbelief/solar-monitor-go/pkg/utils"
)

// GetMeasurements returns raw readings in [start, end)
func (h *Handlers) GetMeasurements(c *gin.Context) {
	startValue, endValue := c.Query("start"), c.Query("end")
	if startValue == "" || endValue == "" {
		utils.SendAppError(c, apperrors.InvalidArgument("query parameters \"start\" and \"end\" are required"))
		return
	}

	start, err := h.measurements.ParseTimestamp(startValue)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	end, err := h.measurements.ParseTimestamp(endValue)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	ctx, cancel := h.queryContext(c)
	defer cancel()

	measurements, err := h.measurements.GetMeasurements(ctx, start, end)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	utils.SendSuccessWithMeta(c, measurements, gin.H{"count": len(measurements)})
}

// GetLatestMeasurement returns the newest stored reading
func (h *Handlers) GetLatestMeasurement(c *gin.Context) {
	ctx, cancel := h.queryContext(c)
	defer cancel()

	measurement, err := h.measurements.GetLatest(ctx)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	utils.SendSuccess(c, measurement)
}

// GetSummary returns per-period energy totals and weather means.
//
// With date it summarizes the day, month or year containing that date; with
// start and end it summarizes the half-open range between two timestamps.
func (h *Handlers) GetSummary(c *gin.Context) {
	granularity := c.Query("type")

	ctx, cancel := h.queryContext(c)
	defer cancel()

	summaries, err := h.summarize(ctx, c, granularity)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	utils.SendSuccessWithMeta(c, summaries, gin.H{
		"type":     granularity,
		"count":    len(summaries),
		"strategy": h.summary.Strategy(),
	})
}

func (h *Handlers) summarize(ctx context.Context, c *gin.Context, granularity string) ([]summary.PeriodSummary, error) {
	date := c.Query("date")
	startValue, endValue := c.Query("start"), c.Query("end")

	if date == "" && startValue != "" && endValue != "" {
		start, err := h.measurements.ParseTimestamp(startValue)
		if err != nil {
			return nil, err
		}
		end, err := h.measurements.ParseTimestamp(endValue)
		if err != nil {
			return nil, err
		}
		return h.summary.SummarizeRange(ctx, granularity, start, end)
	}

	// Report an unknown type before complaining about the date
	if _, err := summary.ParseGranularity(granularity); err != nil {
		return nil, err
	}
	anchor, err := summary.ParseAnchorDate(date)
	if err != nil {
		return nil, err
	}
	return h.summary.Summarize(ctx, granularity, anchor)
}
