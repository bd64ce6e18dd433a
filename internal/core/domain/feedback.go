package domain

import (
	"time"

	"github.com/google/uuid"
)

// Feedback pairs a served prediction with the observed outcome
type Feedback struct {
	ID             uuid.UUID         `json:"id"`
	CreatedAt      time.Time         `json:"created_at"`
	InferenceID    uuid.UUID         `json:"inference_id"`
	PredictedLabel string            `json:"predicted_label,omitempty"`
	PredictedValue *float64          `json:"predicted_value,omitempty"`
	ActualLabel    string            `json:"actual_label,omitempty"`
	ActualValue    *float64          `json:"actual_value,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// NewFeedback creates a Feedback with validation
func NewFeedback(inferenceID uuid.UUID, predictedLabel string, predictedValue *float64) (*Feedback, error) {
	if inferenceID == uuid.Nil {
		return nil, ErrInvalidFeedback
	}
	if predictedLabel == "" && predictedValue == nil {
		return nil, ErrMissingPrediction
	}

	return &Feedback{
		ID:             uuid.New(),
		CreatedAt:      time.Now().UTC(),
		InferenceID:    inferenceID,
		PredictedLabel: predictedLabel,
		PredictedValue: predictedValue,
		Metadata:       map[string]string{},
	}, nil
}
