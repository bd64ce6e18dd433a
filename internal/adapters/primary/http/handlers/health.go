package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"model-serving-service/internal/adapters/primary/http/dto"
	"model-serving-service/internal/core/domain"
)

// Health is the liveness probe, it never checks dependencies
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.StatusResponse{Status: h.healthSvc.Liveness().Status})
}

func (h *Handler) Ready(c *gin.Context) {
	state := h.healthSvc.Readiness(c.Request.Context())
	if state.Status != domain.StatusReady {
		c.JSON(http.StatusServiceUnavailable, dto.StatusResponse{Status: state.Status, Error: state.Detail})
		return
	}
	c.JSON(http.StatusOK, dto.StatusResponse{Status: state.Status})
}
