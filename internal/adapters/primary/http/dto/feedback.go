package dto

import (
	"time"

	"github.com/google/uuid"

	"model-serving-service/internal/core/domain"
)

type FeedbackRequest struct {
	InferenceID    string            `json:"inference_id" binding:"required"`
	PredictedLabel string            `json:"predicted_label"`
	PredictedValue *float64          `json:"predicted_value"`
	ActualLabel    string            `json:"actual_label"`
	ActualValue    *float64          `json:"actual_value"`
	Metadata       map[string]string `json:"metadata"`
}

type FeedbackResponse struct {
	ID      uuid.UUID `json:"id"`
	Message string    `json:"message"`
}

type FeedbackItem struct {
	ID             uuid.UUID         `json:"id"`
	CreatedAt      string            `json:"created_at"`
	InferenceID    uuid.UUID         `json:"inference_id"`
	PredictedLabel string            `json:"predicted_label,omitempty"`
	PredictedValue *float64          `json:"predicted_value,omitempty"`
	ActualLabel    string            `json:"actual_label,omitempty"`
	ActualValue    *float64          `json:"actual_value,omitempty"`
	Metadata       map[string]string `json:"metadata"`
}

type ListFeedbackResponse struct {
	Items []FeedbackItem `json:"items"`
	Size  int            `json:"size"`
}

func ToFeedbackItem(fb *domain.Feedback) FeedbackItem {
	metadata := fb.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}
	return FeedbackItem{
		ID:             fb.ID,
		CreatedAt:      fb.CreatedAt.Format(time.RFC3339),
		InferenceID:    fb.InferenceID,
		PredictedLabel: fb.PredictedLabel,
		PredictedValue: fb.PredictedValue,
		ActualLabel:    fb.ActualLabel,
		ActualValue:    fb.ActualValue,
		Metadata:       metadata,
	}
}
