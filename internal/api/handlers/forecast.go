package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/highbelief/solar-monitor-go/internal/core/forecast"
	"github.com/highbelief/solar-monitor-go/pkg/utils"
)

// GetArimaForecasts returns ARIMA rows whose forecast date lies in [start, end]
func (h *Handlers) GetArimaForecasts(c *gin.Context) {
	start, end, err := dateRange(c)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	ctx, cancel := h.queryContext(c)
	defer cancel()

	forecasts, err := h.forecasts.GetArimaForecasts(ctx, start, end)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	utils.SendSuccessWithMeta(c, forecasts, gin.H{"count": len(forecasts)})
}

// GetSarimaForecasts returns SARIMA intervals fully inside [start, end]
func (h *Handlers) GetSarimaForecasts(c *gin.Context) {
	start, end, err := dateRange(c)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	ctx, cancel := h.queryContext(c)
	defer cancel()

	forecasts, err := h.forecasts.GetSarimaForecasts(ctx, start, end)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	utils.SendSuccessWithMeta(c, forecasts, gin.H{"count": len(forecasts)})
}

// GetArimaAccuracy scores ARIMA forecasts against the recorded actuals
func (h *Handlers) GetArimaAccuracy(c *gin.Context) {
	h.forecastAccuracy(c, forecast.Arima)
}

// GetSarimaAccuracy scores SARIMA forecasts against the recorded actuals
func (h *Handlers) GetSarimaAccuracy(c *gin.Context) {
	h.forecastAccuracy(c, forecast.Sarima)
}

func (h *Handlers) forecastAccuracy(c *gin.Context, model forecast.Model) {
	start, end, err := dateRange(c)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	ctx, cancel := h.queryContext(c)
	defer cancel()

	report, err := h.forecasts.Accuracy(ctx, model, start, end)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	utils.SendSuccess(c, report)
}
