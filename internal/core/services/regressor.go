package services

import (
	"fmt"
	"math"

	"model-serving-service/internal/core/domain"
)

func validateRegressor(w *domain.RegressorWeights) error {
	if w == nil || len(w.Features) == 0 {
		return fmt.Errorf("%w: regressor has no features", domain.ErrArtifactCorrupt)
	}
	if len(w.Coefficients) != len(w.Features) {
		return fmt.Errorf("%w: %d coefficients for %d features", domain.ErrArtifactCorrupt, len(w.Coefficients), len(w.Features))
	}
	if len(w.Mean) != 0 && len(w.Mean) != len(w.Features) {
		return fmt.Errorf("%w: %d means for %d features", domain.ErrArtifactCorrupt, len(w.Mean), len(w.Features))
	}
	if len(w.Scale) != 0 && len(w.Scale) != len(w.Features) {
		return fmt.Errorf("%w: %d scales for %d features", domain.ErrArtifactCorrupt, len(w.Scale), len(w.Features))
	}
	for i, s := range w.Scale {
		if s == 0 {
			return fmt.Errorf("%w: zero scale for feature %q", domain.ErrArtifactCorrupt, w.Features[i])
		}
	}
	seen := make(map[string]struct{}, len(w.Features))
	for _, f := range w.Features {
		if _, dup := seen[f]; dup {
			return fmt.Errorf("%w: duplicate feature %q", domain.ErrArtifactCorrupt, f)
		}
		seen[f] = struct{}{}
	}
	return nil
}

// featureVector orders a row by the model's feature list
func featureVector(w *domain.RegressorWeights, row domain.FeatureRow) ([]float64, error) {
	vec := make([]float64, len(w.Features))
	for i, name := range w.Features {
		v, ok := row[name]
		if !ok {
			return nil, fmt.Errorf("%w: missing feature %q", domain.ErrPrediction, name)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: feature %q is not finite", domain.ErrPrediction, name)
		}
		vec[i] = v
	}
	return vec, nil
}

func regressorForward(w *domain.RegressorWeights, x []float64) (float64, error) {
	y := w.Intercept
	for i, v := range x {
		if len(w.Mean) != 0 {
			v -= w.Mean[i]
		}
		if len(w.Scale) != 0 {
			v /= w.Scale[i]
		}
		y += w.Coefficients[i] * v
	}
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return 0, fmt.Errorf("%w: non-finite output", domain.ErrPrediction)
	}
	return y, nil
}
