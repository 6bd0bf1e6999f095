package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/highbelief/solar-monitor-go/internal/core/auth"
	"github.com/highbelief/solar-monitor-go/pkg/utils"
)

// Login exchanges operator credentials for a bearer token
func (h *Handlers) Login(c *gin.Context) {
	if h.auth == nil {
		utils.SendError(c, http.StatusNotFound, "Authentication is disabled")
		return
	}

	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.auth.Login(c.Request.Context(), &req)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	utils.SendSuccess(c, resp)
}
