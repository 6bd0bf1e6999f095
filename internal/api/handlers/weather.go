package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/highbelief/solar-monitor-go/internal/database/models"
	apperrors "github.com/highbelief/solar-monitor-go/pkg/errors"
	"github.com/highbelief/solar-monitor-go/pkg/utils"
)

// GetWeatherForecasts returns every daily forecast, newest first, or the
// inclusive range when start and end are given
func (h *Handlers) GetWeatherForecasts(c *gin.Context) {
	ctx, cancel := h.queryContext(c)
	defer cancel()

	var (
		forecasts []*models.DailyWeatherForecast
		err       error
	)

	switch startValue, endValue := c.Query("start"), c.Query("end"); {
	case startValue == "" && endValue == "":
		forecasts, err = h.weather.GetAll(ctx)
	case startValue == "" || endValue == "":
		err = apperrors.InvalidArgument("query parameters \"start\" and \"end\" must be given together")
	default:
		var start, end models.Date
		if start, end, err = dateRange(c); err == nil {
			forecasts, err = h.weather.GetBetween(ctx, start, end)
		}
	}

	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	utils.SendSuccessWithMeta(c, forecasts, gin.H{"count": len(forecasts)})
}

// GetWeatherForecastByDate returns the forecast for one day
func (h *Handlers) GetWeatherForecastByDate(c *gin.Context) {
	date, err := parseDate("date", c.Param("date"))
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	ctx, cancel := h.queryContext(c)
	defer cancel()

	forecast, err := h.weather.GetByDate(ctx, date)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	utils.SendSuccess(c, forecast)
}
