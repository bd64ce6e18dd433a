package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"model-serving-service/internal/core/domain"
)

func mapDomainError(c *gin.Context, err error) {
	switch {
	// Bad request / validation errors
	case errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, domain.ErrInvalidFeedback),
		errors.Is(err, domain.ErrMissingPrediction):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case errors.Is(err, domain.ErrUnsupportedContentType):
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": err.Error()})

	case errors.Is(err, domain.ErrNotAcceptable):
		c.JSON(http.StatusNotAcceptable, gin.H{"error": err.Error()})

	// Service unavailable errors
	case errors.Is(err, domain.ErrModelNotLoaded),
		errors.Is(err, domain.ErrFeedbackDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})

	// Prediction errors carry their message for diagnostics
	case errors.Is(err, domain.ErrPrediction):
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
