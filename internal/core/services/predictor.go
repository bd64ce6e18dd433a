package services

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"model-serving-service/internal/core/domain"
)

const (
	DefaultMaxLength = 60
	DefaultMaxItems  = 256
)

// PredictorOptions are resolved once at startup
type PredictorOptions struct {
	Device    domain.Device
	MaxLength int
	MaxItems  int
}

// Predictor runs the loaded model. It holds no per-request state, every call is a
// function of its input and the immutable artifact.
type Predictor struct {
	artifact   *domain.ModelArtifact
	normalizer *TextNormalizer
	tokenizer  *Tokenizer
	device     domain.Device
	maxItems   int
}

// NewPredictor binds a loaded artifact to an explicit device and tokenization settings
func NewPredictor(artifact *domain.ModelArtifact, normalizer *TextNormalizer, opts PredictorOptions) (*Predictor, error) {
	if artifact == nil {
		return nil, domain.ErrModelNotLoaded
	}
	if opts.Device == "" {
		opts.Device = domain.DeviceCPU
	}
	if opts.Device != domain.DeviceCPU {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedDevice, opts.Device)
	}
	if opts.MaxLength == 0 {
		opts.MaxLength = DefaultMaxLength
	}
	if opts.MaxItems == 0 {
		opts.MaxItems = DefaultMaxItems
	}
	if opts.MaxItems < 0 {
		return nil, fmt.Errorf("%w: max items must be positive, got %d", domain.ErrInvalidOptions, opts.MaxItems)
	}

	p := &Predictor{
		artifact: artifact,
		device:   opts.Device,
		maxItems: opts.MaxItems,
	}

	switch artifact.Task {
	case domain.TaskClassification:
		if normalizer == nil {
			return nil, fmt.Errorf("%w: classification needs a text normalizer", domain.ErrInvalidOptions)
		}
		if err := validateClassifier(artifact.Classifier, artifact.Labels, artifact.Vocabulary); err != nil {
			return nil, err
		}
		tok, err := NewTokenizer(artifact.Vocabulary, opts.MaxLength)
		if err != nil {
			return nil, err
		}
		p.normalizer = normalizer
		p.tokenizer = tok
	case domain.TaskRegression:
		if err := validateRegressor(artifact.Regressor); err != nil {
			return nil, err
		}
		row := regressionSample(artifact)
		for _, name := range artifact.Regressor.Features {
			if _, ok := row[name]; !ok {
				return nil, fmt.Errorf("%w: regression manifest needs a sample covering feature %q", domain.ErrArtifactCorrupt, name)
			}
		}
	default:
		return nil, fmt.Errorf("%w: unsupported task %q", domain.ErrArtifactCorrupt, artifact.Task)
	}

	return p, nil
}

// Task returns the task of the loaded model
func (p *Predictor) Task() domain.Task {
	return p.artifact.Task
}

// Device returns the device the predictor was built for
func (p *Predictor) Device() domain.Device {
	return p.device
}

// MaxItems returns the largest accepted batch
func (p *Predictor) MaxItems() int {
	return p.maxItems
}

// Features returns the ordered regression feature names, nil for classifiers
func (p *Predictor) Features() []string {
	if p.artifact.Regressor == nil {
		return nil
	}
	return p.artifact.Regressor.Features
}

// ModelName returns the manifest name of the loaded model
func (p *Predictor) ModelName() string {
	return p.artifact.Name
}

// Predict dispatches on the model task. Results keep request order.
func (p *Predictor) Predict(ctx context.Context, req domain.InferenceRequest) (*domain.InferenceResult, error) {
	n := req.Len()
	if n == 0 {
		return nil, fmt.Errorf("%w: at least one item is required", domain.ErrInvalidRequest)
	}
	if n > p.maxItems {
		return nil, fmt.Errorf("%w: %d items exceeds the limit of %d", domain.ErrInvalidRequest, n, p.maxItems)
	}

	switch p.artifact.Task {
	case domain.TaskClassification:
		if req.Texts == nil {
			return nil, fmt.Errorf("%w: classification model expects texts", domain.ErrInvalidRequest)
		}
		labels, err := p.Classify(ctx, req.Texts)
		if err != nil {
			return nil, err
		}
		return &domain.InferenceResult{Labels: labels}, nil
	default:
		if req.Rows == nil {
			return nil, fmt.Errorf("%w: regression model expects feature rows", domain.ErrInvalidRequest)
		}
		values, err := p.Regress(ctx, req.Rows)
		if err != nil {
			return nil, err
		}
		return &domain.InferenceResult{Values: values}, nil
	}
}

// Classify maps each text to a label. Any failing item fails the whole batch.
func (p *Predictor) Classify(ctx context.Context, texts []string) ([]string, error) {
	if p.artifact.Task != domain.TaskClassification {
		return nil, fmt.Errorf("%w: model task is %s", domain.ErrInvalidRequest, p.artifact.Task)
	}

	labels := make([]string, 0, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		processed := p.normalizer.Normalize(text)
		log.WithFields(log.Fields{
			"item":      i,
			"processed": processed,
		}).Debug("text preprocessed")

		enc, err := p.tokenizer.Encode(processed)
		if err != nil {
			return nil, fmt.Errorf("%w: item %d: %v", domain.ErrPrediction, i, err)
		}
		scores, err := classifierForward(p.artifact.Classifier, enc)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		label, ok := p.artifact.Labels.Label(argmax(scores))
		if !ok {
			return nil, fmt.Errorf("%w: item %d: class index outside label table", domain.ErrPrediction, i)
		}
		labels = append(labels, label)
	}
	return labels, nil
}

// Regress returns the scalar model output for each row. Any failing row fails the whole batch.
func (p *Predictor) Regress(ctx context.Context, rows []domain.FeatureRow) ([]float64, error) {
	if p.artifact.Task != domain.TaskRegression {
		return nil, fmt.Errorf("%w: model task is %s", domain.ErrInvalidRequest, p.artifact.Task)
	}

	values := make([]float64, 0, len(rows))
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		x, err := featureVector(p.artifact.Regressor, row)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		y, err := regressorForward(p.artifact.Regressor, x)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		values = append(values, y)
	}
	return values, nil
}

// SelfCheck runs one synthetic prediction against the readiness sample
func (p *Predictor) SelfCheck(ctx context.Context) error {
	sample := p.artifact.Sample

	var err error
	switch p.artifact.Task {
	case domain.TaskClassification:
		text := domain.DefaultClassificationSample
		if sample != nil && sample.Text != "" {
			text = sample.Text
		}
		var labels []string
		labels, err = p.Classify(ctx, []string{text})
		if err == nil {
			log.WithField("intent", labels[0]).Debug("sample prediction")
		}
	default:
		var values []float64
		values, err = p.Regress(ctx, []domain.FeatureRow{regressionSample(p.artifact)})
		if err == nil {
			log.WithField("prediction", values[0]).Debug("sample prediction")
		}
	}

	if err != nil {
		if errors.Is(err, domain.ErrPrediction) {
			return fmt.Errorf("model validation failed: %w", err)
		}
		return fmt.Errorf("model validation failed: %w: %v", domain.ErrPrediction, err)
	}
	return nil
}

// regressionSample is the manifest sample row, or the housing row when none is set
func regressionSample(artifact *domain.ModelArtifact) domain.FeatureRow {
	if artifact.Sample != nil && len(artifact.Sample.Features) > 0 {
		return artifact.Sample.Features
	}
	return domain.DefaultRegressionSample()
}
