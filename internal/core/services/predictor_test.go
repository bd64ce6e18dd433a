package services

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"model-serving-service/internal/core/domain"
	"model-serving-service/internal/testutil"
)

func newIntentPredictor(t *testing.T, opts PredictorOptions) *Predictor {
	t.Helper()
	n, err := NewTextNormalizer("english")
	require.NoError(t, err)
	p, err := NewPredictor(testutil.IntentArtifact(), n, opts)
	require.NoError(t, err)
	return p
}

func newHousingPredictor(t *testing.T, artifact *domain.ModelArtifact) *Predictor {
	t.Helper()
	if artifact == nil {
		artifact = testutil.HousingArtifact()
	}
	p, err := NewPredictor(artifact, nil, PredictorOptions{Device: domain.DeviceCPU})
	require.NoError(t, err)
	return p
}

// ============================================================================
// Construction Tests
// ============================================================================

func TestNewPredictor_Defaults(t *testing.T) {
	p := newIntentPredictor(t, PredictorOptions{})

	assert.Equal(t, domain.TaskClassification, p.Task())
	assert.Equal(t, domain.DeviceCPU, p.Device())
	assert.Equal(t, DefaultMaxItems, p.MaxItems())
	assert.Equal(t, DefaultMaxLength, p.tokenizer.MaxLength())
	assert.Equal(t, "intent-classifier", p.ModelName())
	assert.Nil(t, p.Features())
}

func TestNewPredictor_NotLoaded(t *testing.T) {
	_, err := NewPredictor(nil, nil, PredictorOptions{})
	assert.ErrorIs(t, err, domain.ErrModelNotLoaded)
}

func TestNewPredictor_UnsupportedDevice(t *testing.T) {
	n, err := NewTextNormalizer("english")
	require.NoError(t, err)

	_, err = NewPredictor(testutil.IntentArtifact(), n, PredictorOptions{Device: domain.Device("cuda")})
	assert.ErrorIs(t, err, domain.ErrUnsupportedDevice)
}

func TestNewPredictor_ClassifierNeedsNormalizer(t *testing.T) {
	_, err := NewPredictor(testutil.IntentArtifact(), nil, PredictorOptions{})
	assert.ErrorIs(t, err, domain.ErrInvalidOptions)
}

func TestNewPredictor_ShapeMismatch(t *testing.T) {
	n, err := NewTextNormalizer("english")
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(a *domain.ModelArtifact)
	}{
		{
			name:   "label count",
			mutate: func(a *domain.ModelArtifact) { a.Labels.Classes = a.Labels.Classes[:2] },
		},
		{
			name:   "bias length",
			mutate: func(a *domain.ModelArtifact) { a.Classifier.Bias = []float64{0} },
		},
		{
			name:   "weight width",
			mutate: func(a *domain.ModelArtifact) { a.Classifier.Weights[1] = []float64{1, 0} },
		},
		{
			name:   "token outside embeddings",
			mutate: func(a *domain.ModelArtifact) { a.Vocabulary.Tokens["refund"] = 42 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := testutil.IntentArtifact()
			tt.mutate(a)
			_, err := NewPredictor(a, n, PredictorOptions{})
			assert.ErrorIs(t, err, domain.ErrArtifactCorrupt)
		})
	}
}

func TestNewPredictor_RegressorShapeMismatch(t *testing.T) {
	a := testutil.HousingArtifact()
	a.Regressor.Coefficients = a.Regressor.Coefficients[:3]

	_, err := NewPredictor(a, nil, PredictorOptions{})
	assert.ErrorIs(t, err, domain.ErrArtifactCorrupt)
}

// ============================================================================
// Classification Tests
// ============================================================================

func TestPredict_Classification(t *testing.T) {
	p := newIntentPredictor(t, PredictorOptions{})

	res, err := p.Predict(context.Background(), domain.InferenceRequest{Texts: []string{
		"What is the status of my order?",
		"Can I change my shipping address?",
		"I want to cancel my order",
	}})
	require.NoError(t, err)

	assert.Equal(t, []string{
		testutil.IntentOrderStatus,
		testutil.IntentChangeAddress,
		testutil.IntentCancelOrder,
	}, res.Labels)
	assert.Nil(t, res.Values)
}

func TestPredict_Deterministic(t *testing.T) {
	p := newIntentPredictor(t, PredictorOptions{})
	req := domain.InferenceRequest{Texts: []string{"Where is my delivery?", "help me cancel", "change address"}}

	first, err := p.Predict(context.Background(), req)
	require.NoError(t, err)
	second, err := p.Predict(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestPredict_DuplicateTextsAgree(t *testing.T) {
	p := newIntentPredictor(t, PredictorOptions{})

	res, err := p.Predict(context.Background(), domain.InferenceRequest{Texts: []string{
		"status of order", "cancel please", "status of order",
	}})
	require.NoError(t, err)

	require.Len(t, res.Labels, 3)
	assert.Equal(t, res.Labels[0], res.Labels[2])
}

func TestPredict_StopWordsOnlyFallsToFirstClass(t *testing.T) {
	p := newIntentPredictor(t, PredictorOptions{})

	labels, err := p.Classify(context.Background(), []string{"the of and", ""})
	require.NoError(t, err)

	assert.Equal(t, []string{testutil.IntentChangeAddress, testutil.IntentChangeAddress}, labels)
}

func TestPredict_Truncation(t *testing.T) {
	full := newIntentPredictor(t, PredictorOptions{})
	short := newIntentPredictor(t, PredictorOptions{MaxLength: 1})

	labels, err := full.Classify(context.Background(), []string{"order cancel"})
	require.NoError(t, err)
	assert.Equal(t, []string{testutil.IntentCancelOrder}, labels)

	labels, err = short.Classify(context.Background(), []string{"order cancel"})
	require.NoError(t, err)
	assert.Equal(t, []string{testutil.IntentOrderStatus}, labels)
}

func TestPredict_EmptyBatch(t *testing.T) {
	p := newIntentPredictor(t, PredictorOptions{})

	_, err := p.Predict(context.Background(), domain.InferenceRequest{Texts: []string{}})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestPredict_TooManyItems(t *testing.T) {
	p := newIntentPredictor(t, PredictorOptions{MaxItems: 2})

	_, err := p.Predict(context.Background(), domain.InferenceRequest{Texts: []string{"a", "b", "c"}})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestPredict_WrongInputKind(t *testing.T) {
	p := newIntentPredictor(t, PredictorOptions{})

	_, err := p.Predict(context.Background(), domain.InferenceRequest{Rows: []domain.FeatureRow{{"MedInc": 1}}})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	_, err = p.Regress(context.Background(), []domain.FeatureRow{{"MedInc": 1}})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestPredict_NonFiniteScoreFailsWholeBatch(t *testing.T) {
	n, err := NewTextNormalizer("english")
	require.NoError(t, err)
	a := testutil.IntentArtifact()
	a.Classifier.Embeddings[7] = []float64{0, 0, math.Inf(1)}
	p, err := NewPredictor(a, n, PredictorOptions{})
	require.NoError(t, err)

	res, err := p.Predict(context.Background(), domain.InferenceRequest{Texts: []string{
		"status of my order", "cancel",
	}})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, domain.ErrPrediction)
	assert.Contains(t, err.Error(), "item 1")
}

func TestPredict_CanceledContext(t *testing.T) {
	p := newIntentPredictor(t, PredictorOptions{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Classify(ctx, []string{"status"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPredict_ConcurrentCallers(t *testing.T) {
	p := newIntentPredictor(t, PredictorOptions{})
	texts := []string{"What is the status of my order?", "I want to cancel my order"}

	want, err := p.Classify(context.Background(), texts)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := p.Classify(context.Background(), texts)
			if err != nil {
				errs <- err
				return
			}
			if got[0] != want[0] || got[1] != want[1] {
				errs <- assert.AnError
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

// ============================================================================
// Regression Tests
// ============================================================================

func TestPredict_Regression(t *testing.T) {
	p := newHousingPredictor(t, nil)

	res, err := p.Predict(context.Background(), domain.InferenceRequest{Rows: []domain.FeatureRow{
		domain.DefaultRegressionSample(),
	}})
	require.NoError(t, err)

	require.Len(t, res.Values, 1)
	assert.InDelta(t, testutil.HousingSamplePrediction, res.Values[0], 1e-9)
	assert.Equal(t, testutil.HousingFeatures, p.Features())
}

func TestPredict_RegressionStandardized(t *testing.T) {
	p := newHousingPredictor(t, &domain.ModelArtifact{
		Name: "scaled",
		Task: domain.TaskRegression,
		Regressor: &domain.RegressorWeights{
			Features:     []string{"a", "b"},
			Coefficients: []float64{2, 3},
			Intercept:    1,
			Mean:         []float64{1, 1},
			Scale:        []float64{2, 1},
		},
		Sample: &domain.Sample{Features: map[string]float64{"a": 1, "b": 1}},
	})

	values, err := p.Regress(context.Background(), []domain.FeatureRow{{"a": 5, "b": 2}})
	require.NoError(t, err)
	assert.InDelta(t, 8.0, values[0], 1e-9)
}

func TestPredict_RegressionMissingFeatureFailsWholeBatch(t *testing.T) {
	p := newHousingPredictor(t, nil)

	partial := domain.DefaultRegressionSample()
	delete(partial, "Latitude")

	res, err := p.Predict(context.Background(), domain.InferenceRequest{Rows: []domain.FeatureRow{
		domain.DefaultRegressionSample(), partial,
	}})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, domain.ErrPrediction)
	assert.Contains(t, err.Error(), "Latitude")
}

// ============================================================================
// SelfCheck Tests
// ============================================================================

func TestSelfCheck(t *testing.T) {
	assert.NoError(t, newIntentPredictor(t, PredictorOptions{}).SelfCheck(context.Background()))
	assert.NoError(t, newHousingPredictor(t, nil).SelfCheck(context.Background()))
}

func TestSelfCheck_RegressionOverflow(t *testing.T) {
	a := testutil.HousingArtifact()
	a.Regressor.Intercept = 1e308
	a.Regressor.Coefficients[0] = 1e308
	p := newHousingPredictor(t, a)

	err := p.SelfCheck(context.Background())
	assert.ErrorIs(t, err, domain.ErrPrediction)
	assert.Contains(t, err.Error(), "model validation failed")
}

func TestNewPredictor_RegressionSampleCoverage(t *testing.T) {
	weights := func() *domain.RegressorWeights {
		return &domain.RegressorWeights{
			Features:     []string{"sqft", "rooms"},
			Coefficients: []float64{0.01, 1},
			Intercept:    2,
		}
	}

	tests := []struct {
		name    string
		sample  *domain.Sample
		wantErr bool
	}{
		{name: "no sample falls back to housing row", sample: nil, wantErr: true},
		{name: "partial sample", sample: &domain.Sample{Features: map[string]float64{"sqft": 100}}, wantErr: true},
		{name: "covering sample", sample: &domain.Sample{Features: map[string]float64{"sqft": 100, "rooms": 3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &domain.ModelArtifact{Name: "houses", Task: domain.TaskRegression, Regressor: weights(), Sample: tt.sample}
			p, err := NewPredictor(a, nil, PredictorOptions{})
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrArtifactCorrupt)
				assert.Contains(t, err.Error(), "needs a sample")
				assert.Nil(t, p)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, p.SelfCheck(context.Background()))
		})
	}
}
