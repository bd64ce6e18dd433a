package services

import (
	"context"

	"github.com/google/uuid"

	"model-serving-service/internal/core/domain"
	output "model-serving-service/internal/core/ports/output"
)

const (
	defaultFeedbackLimit = 20
	maxFeedbackLimit     = 100
)

// FeedbackInput is the caller-supplied part of a feedback record
type FeedbackInput struct {
	InferenceID    string
	PredictedLabel string
	PredictedValue *float64
	ActualLabel    string
	ActualValue    *float64
	Metadata       map[string]string
}

type FeedbackService struct {
	repo output.FeedbackRepository
}

func NewFeedbackService(repo output.FeedbackRepository) *FeedbackService {
	return &FeedbackService{repo: repo}
}

// Log validates and stores one feedback record
func (s *FeedbackService) Log(ctx context.Context, in FeedbackInput) (*domain.Feedback, error) {
	inferenceID, err := uuid.Parse(in.InferenceID)
	if err != nil {
		return nil, domain.ErrInvalidFeedback
	}

	fb, err := domain.NewFeedback(inferenceID, in.PredictedLabel, in.PredictedValue)
	if err != nil {
		return nil, err
	}
	fb.ActualLabel = in.ActualLabel
	fb.ActualValue = in.ActualValue
	for k, v := range in.Metadata {
		fb.Metadata[k] = v
	}

	if err := s.repo.Create(ctx, fb); err != nil {
		return nil, err
	}
	return fb, nil
}

func (s *FeedbackService) List(ctx context.Context, limit int) ([]*domain.Feedback, error) {
	if limit <= 0 {
		limit = defaultFeedbackLimit
	}
	if limit > maxFeedbackLimit {
		limit = maxFeedbackLimit
	}
	return s.repo.ListRecent(ctx, limit)
}
