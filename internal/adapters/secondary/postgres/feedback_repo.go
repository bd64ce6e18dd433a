package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"model-serving-service/internal/core/domain"
	output "model-serving-service/internal/core/ports/output"
)

const feedbackSchema = `
	CREATE TABLE IF NOT EXISTS prediction_feedback (
		id              UUID PRIMARY KEY,
		created_at      TIMESTAMPTZ NOT NULL,
		inference_id    UUID NOT NULL,
		predicted_label TEXT NOT NULL DEFAULT '',
		predicted_value DOUBLE PRECISION,
		actual_label    TEXT NOT NULL DEFAULT '',
		actual_value    DOUBLE PRECISION,
		metadata        JSONB NOT NULL DEFAULT '{}'::jsonb
	);
	CREATE INDEX IF NOT EXISTS prediction_feedback_inference_id_idx ON prediction_feedback (inference_id);
`

type FeedbackRepo struct {
	pool *pgxpool.Pool
}

// NewFeedbackRepository creates a new FeedbackRepository
func NewFeedbackRepository(pool *pgxpool.Pool) *FeedbackRepo {
	return &FeedbackRepo{pool: pool}
}

// EnsureSchema creates the feedback table when it does not exist
func (r *FeedbackRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, feedbackSchema); err != nil {
		return fmt.Errorf("ensure feedback schema: %w", err)
	}
	return nil
}

func (r *FeedbackRepo) Create(ctx context.Context, fb *domain.Feedback) error {
	query := `
		INSERT INTO prediction_feedback
			(id, created_at, inference_id, predicted_label, predicted_value, actual_label, actual_value, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	metadata := fb.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}

	_, err := r.pool.Exec(ctx, query,
		fb.ID, fb.CreatedAt, fb.InferenceID,
		fb.PredictedLabel, fb.PredictedValue,
		fb.ActualLabel, fb.ActualValue,
		metadata,
	)
	if err != nil {
		return fmt.Errorf("create feedback: %w", err)
	}
	return nil
}

func (r *FeedbackRepo) ListRecent(ctx context.Context, limit int) ([]*domain.Feedback, error) {
	query := `
		SELECT id, created_at, inference_id, predicted_label, predicted_value, actual_label, actual_value, metadata
		FROM prediction_feedback
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	defer rows.Close()

	var items []*domain.Feedback
	for rows.Next() {
		fb, err := r.scanFeedback(rows)
		if err != nil {
			return nil, fmt.Errorf("scan feedback row: %w", err)
		}
		items = append(items, fb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feedback rows: %w", err)
	}
	return items, nil
}

func (r *FeedbackRepo) scanFeedback(row pgx.Row) (*domain.Feedback, error) {
	fb := &domain.Feedback{}
	err := row.Scan(
		&fb.ID, &fb.CreatedAt, &fb.InferenceID,
		&fb.PredictedLabel, &fb.PredictedValue,
		&fb.ActualLabel, &fb.ActualValue,
		&fb.Metadata,
	)
	if err != nil {
		return nil, err
	}
	return fb, nil
}

// Ensure interface compliance
var _ output.FeedbackRepository = (*FeedbackRepo)(nil)
