package services

import (
	"context"

	log "github.com/sirupsen/logrus"

	"model-serving-service/internal/core/domain"
)

// HealthService derives liveness and readiness on demand
type HealthService struct {
	predictor *Predictor
	strict    bool
}

// NewHealthService creates a HealthService. A nil predictor means the model is not loaded.
// In strict mode readiness also runs one synthetic prediction.
func NewHealthService(predictor *Predictor, strict bool) *HealthService {
	return &HealthService{predictor: predictor, strict: strict}
}

// Liveness only proves the process is running
func (s *HealthService) Liveness() domain.HealthState {
	return domain.HealthState{Status: domain.StatusHealthy}
}

// Readiness reports whether the process can serve predictions right now
func (s *HealthService) Readiness(ctx context.Context) domain.HealthState {
	if s.predictor == nil {
		log.Error("readiness: model not loaded")
		return domain.HealthState{Status: domain.StatusNotReady, Detail: domain.ErrModelNotLoaded.Error()}
	}
	if s.strict {
		if err := s.predictor.SelfCheck(ctx); err != nil {
			log.WithError(err).Error("readiness: synthetic prediction failed")
			return domain.HealthState{Status: domain.StatusNotReady, Detail: err.Error()}
		}
	}
	return domain.HealthState{Status: domain.StatusReady}
}
