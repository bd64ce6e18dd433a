package services

import (
	"fmt"
	"math"

	"model-serving-service/internal/core/domain"
)

// validateClassifier checks that weights, labels and vocabulary agree on shape
func validateClassifier(w *domain.ClassifierWeights, labels *domain.LabelTable, vocab *domain.Vocabulary) error {
	if w == nil || len(w.Embeddings) == 0 {
		return fmt.Errorf("%w: classifier has no embeddings", domain.ErrArtifactCorrupt)
	}
	dim := w.Dim()
	if dim == 0 {
		return fmt.Errorf("%w: embedding width is zero", domain.ErrArtifactCorrupt)
	}
	for i, row := range w.Embeddings {
		if len(row) != dim {
			return fmt.Errorf("%w: embedding row %d has width %d, want %d", domain.ErrArtifactCorrupt, i, len(row), dim)
		}
	}

	classes := len(w.Weights)
	if classes == 0 {
		return fmt.Errorf("%w: classifier has no output classes", domain.ErrArtifactCorrupt)
	}
	for i, row := range w.Weights {
		if len(row) != dim {
			return fmt.Errorf("%w: weight row %d has width %d, want %d", domain.ErrArtifactCorrupt, i, len(row), dim)
		}
	}
	if len(w.Bias) != classes {
		return fmt.Errorf("%w: bias has %d entries for %d classes", domain.ErrArtifactCorrupt, len(w.Bias), classes)
	}

	if labels == nil || len(labels.Classes) != classes {
		n := 0
		if labels != nil {
			n = len(labels.Classes)
		}
		return fmt.Errorf("%w: label table has %d classes, model has %d", domain.ErrArtifactCorrupt, n, classes)
	}

	if vocab == nil || len(vocab.Tokens) == 0 {
		return fmt.Errorf("%w: vocabulary is empty", domain.ErrArtifactCorrupt)
	}
	for tok, id := range vocab.Tokens {
		if id < 0 || id >= len(w.Embeddings) {
			return fmt.Errorf("%w: token %q has id %d outside %d embeddings", domain.ErrArtifactCorrupt, tok, id, len(w.Embeddings))
		}
	}
	return nil
}

// classifierForward returns per-class scores for one encoded sequence.
// The hidden state is the mean of the embeddings under the attention mask,
// a fully masked sequence yields a zero hidden state.
func classifierForward(w *domain.ClassifierWeights, enc Encoding) ([]float64, error) {
	dim := w.Dim()
	hidden := make([]float64, dim)
	count := 0
	for i, id := range enc.InputIDs {
		if enc.AttentionMask[i] == 0 {
			continue
		}
		if id < 0 || id >= len(w.Embeddings) {
			return nil, fmt.Errorf("%w: token id %d out of range", domain.ErrPrediction, id)
		}
		for j, v := range w.Embeddings[id] {
			hidden[j] += v
		}
		count++
	}
	if count > 0 {
		for j := range hidden {
			hidden[j] /= float64(count)
		}
	}

	scores := make([]float64, len(w.Weights))
	for c, row := range w.Weights {
		s := w.Bias[c]
		for j, v := range row {
			s += v * hidden[j]
		}
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return nil, fmt.Errorf("%w: non-finite score for class %d", domain.ErrPrediction, c)
		}
		scores[c] = s
	}
	return scores, nil
}

// argmax returns the index of the largest score, the lowest index wins ties
func argmax(scores []float64) int {
	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	return best
}
