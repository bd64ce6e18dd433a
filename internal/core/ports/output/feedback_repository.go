package ports

import (
	"context"

	"model-serving-service/internal/core/domain"
)

// FeedbackRepository persists prediction feedback
type FeedbackRepository interface {
	Create(ctx context.Context, fb *domain.Feedback) error
	ListRecent(ctx context.Context, limit int) ([]*domain.Feedback, error)
}
