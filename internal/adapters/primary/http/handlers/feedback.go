package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"model-serving-service/internal/adapters/primary/http/dto"
	"model-serving-service/internal/core/domain"
	"model-serving-service/internal/core/services"
)

func (h *Handler) CreateFeedback(c *gin.Context) {
	if h.feedbackSvc == nil {
		mapDomainError(c, domain.ErrFeedbackDisabled)
		return
	}

	var req dto.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fb, err := h.feedbackSvc.Log(c.Request.Context(), services.FeedbackInput{
		InferenceID:    req.InferenceID,
		PredictedLabel: req.PredictedLabel,
		PredictedValue: req.PredictedValue,
		ActualLabel:    req.ActualLabel,
		ActualValue:    req.ActualValue,
		Metadata:       req.Metadata,
	})
	if err != nil {
		log.WithError(err).Error("log feedback failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FeedbackResponse{ID: fb.ID, Message: "Logged successfully"})
}

func (h *Handler) ListFeedback(c *gin.Context) {
	if h.feedbackSvc == nil {
		mapDomainError(c, domain.ErrFeedbackDisabled)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	items, err := h.feedbackSvc.List(c.Request.Context(), limit)
	if err != nil {
		log.WithError(err).Error("list feedback failed")
		mapDomainError(c, err)
		return
	}

	resp := dto.ListFeedbackResponse{Items: make([]dto.FeedbackItem, 0, len(items))}
	for _, fb := range items {
		resp.Items = append(resp.Items, dto.ToFeedbackItem(fb))
	}
	resp.Size = len(resp.Items)
	c.JSON(http.StatusOK, resp)
}
