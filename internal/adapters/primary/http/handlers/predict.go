package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"model-serving-service/internal/adapters/primary/http/dto"
	"model-serving-service/internal/core/domain"
)

func (h *Handler) Predict(c *gin.Context) {
	if h.predictor == nil {
		mapDomainError(c, domain.ErrModelNotLoaded)
		return
	}

	req, batch, err := h.bindInferenceRequest(c)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	inferenceID := uuid.New()
	logger := log.WithFields(log.Fields{
		"request_id":   c.GetString("request_id"),
		"inference_id": inferenceID.String(),
		"task":         h.predictor.Task(),
		"items":        req.Len(),
	})
	logger.Info("predict request received")

	result, err := h.predictor.Predict(c.Request.Context(), req)
	if err != nil {
		logger.WithError(err).Error("prediction failed")
		mapDomainError(c, err)
		return
	}

	c.Header(headerInferenceID, inferenceID.String())
	switch {
	case result.Labels != nil:
		c.JSON(http.StatusOK, dto.ClassificationResponse{Intents: result.Labels})
	case batch:
		c.JSON(http.StatusOK, dto.BatchRegressionResponse{Predictions: result.Values})
	default:
		c.JSON(http.StatusOK, dto.RegressionResponse{Prediction: result.Values[0]})
	}
}

// bindInferenceRequest validates the body against the schema of the loaded model's task
func (h *Handler) bindInferenceRequest(c *gin.Context) (domain.InferenceRequest, bool, error) {
	if h.predictor.Task() == domain.TaskClassification {
		var body dto.ClassificationRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			return domain.InferenceRequest{}, false, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
		}
		if len(body.Texts) == 0 {
			return domain.InferenceRequest{}, false, fmt.Errorf("%w: texts must contain at least one item", domain.ErrInvalidRequest)
		}
		texts, err := body.TextItems()
		if err != nil {
			return domain.InferenceRequest{}, false, err
		}
		return domain.InferenceRequest{Texts: texts}, true, nil
	}

	var body map[string]json.RawMessage
	if err := c.ShouldBindJSON(&body); err != nil {
		return domain.InferenceRequest{}, false, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	if body == nil {
		return domain.InferenceRequest{}, false, fmt.Errorf("%w: body must be a JSON object", domain.ErrInvalidRequest)
	}
	rows, batch, err := dto.ParseRegressionBody(body, h.predictor.Features())
	if err != nil {
		return domain.InferenceRequest{}, batch, err
	}
	if len(rows) == 0 {
		return domain.InferenceRequest{}, batch, fmt.Errorf("%w: instances must contain at least one item", domain.ErrInvalidRequest)
	}
	return domain.InferenceRequest{Rows: rows}, batch, nil
}
