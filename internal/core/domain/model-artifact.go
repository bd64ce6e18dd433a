package domain

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// ============================================================================
// Value Objects
// ============================================================================

// Task is the kind of prediction a model artifact produces
type Task string

const (
	TaskClassification Task = "classification"
	TaskRegression     Task = "regression"
)

// IsValid checks if the task is supported
func (t Task) IsValid() bool {
	return t == TaskClassification || t == TaskRegression
}

// Location schemes understood by the artifact loader
const (
	SchemeS3   = "s3"
	SchemeFile = "file"
)

// ArtifactLocation is a parsed storage reference (bucket + path style).
// For the file scheme Bucket is empty and Prefix is a local directory.
type ArtifactLocation struct {
	Scheme string
	Bucket string
	Prefix string
}

// ParseLocation accepts s3://bucket/prefix, file:///dir or a bare directory path.
func ParseLocation(raw string) (ArtifactLocation, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ArtifactLocation{}, fmt.Errorf("%w: empty location", ErrUnsupportedLocation)
	}
	if !strings.Contains(raw, "://") {
		return ArtifactLocation{Scheme: SchemeFile, Prefix: filepath.Clean(raw)}, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return ArtifactLocation{}, fmt.Errorf("%w: %v", ErrUnsupportedLocation, err)
	}

	switch u.Scheme {
	case SchemeS3:
		if u.Host == "" {
			return ArtifactLocation{}, fmt.Errorf("%w: missing bucket in %q", ErrUnsupportedLocation, raw)
		}
		return ArtifactLocation{
			Scheme: SchemeS3,
			Bucket: u.Host,
			Prefix: strings.Trim(path.Clean("/"+u.Path), "/"),
		}, nil
	case SchemeFile:
		dir := u.Path
		if u.Host != "" {
			dir = u.Host + u.Path
		}
		if dir == "" {
			return ArtifactLocation{}, fmt.Errorf("%w: missing path in %q", ErrUnsupportedLocation, raw)
		}
		return ArtifactLocation{Scheme: SchemeFile, Prefix: filepath.Clean(dir)}, nil
	default:
		return ArtifactLocation{}, fmt.Errorf("%w: scheme %q", ErrUnsupportedLocation, u.Scheme)
	}
}

func (l ArtifactLocation) String() string {
	if l.Scheme == SchemeS3 {
		return fmt.Sprintf("s3://%s/%s", l.Bucket, l.Prefix)
	}
	return "file://" + l.Prefix
}

// ============================================================================
// Manifest
// ============================================================================

const ManifestFileName = "manifest.yaml"

// ManifestFiles names the sub-artifacts relative to the location root
type ManifestFiles struct {
	Weights   string `json:"weights"`
	Labels    string `json:"labels,omitempty"`
	Tokenizer string `json:"tokenizer,omitempty"`
}

// Sample is the fixed input used by the synthetic readiness prediction
type Sample struct {
	Text     string             `json:"text,omitempty"`
	Features map[string]float64 `json:"features,omitempty"`
}

// Manifest describes a model package. Digests map file names to OCI digests.
type Manifest struct {
	Name    string            `json:"name"`
	Task    Task              `json:"task"`
	Files   ManifestFiles     `json:"files"`
	Digests map[string]string `json:"digests,omitempty"`
	Sample  *Sample           `json:"sample,omitempty"`
}

// Validate checks that the manifest names every sub-artifact its task needs
func (m *Manifest) Validate() error {
	if !m.Task.IsValid() {
		return fmt.Errorf("%w: unsupported task %q", ErrArtifactCorrupt, m.Task)
	}
	if m.Files.Weights == "" {
		return fmt.Errorf("%w: manifest has no weights file", ErrArtifactCorrupt)
	}
	if m.Task == TaskClassification {
		if m.Files.Labels == "" {
			return fmt.Errorf("%w: classification manifest has no labels file", ErrArtifactCorrupt)
		}
		if m.Files.Tokenizer == "" {
			return fmt.Errorf("%w: classification manifest has no tokenizer file", ErrArtifactCorrupt)
		}
	}
	return nil
}

// ============================================================================
// Sub-artifacts
// ============================================================================

// ClassifierWeights is an embedding-bag text classifier:
// scores = Weights · mean(Embeddings[token]) + Bias
type ClassifierWeights struct {
	Embeddings [][]float64 `json:"embeddings"`
	Weights    [][]float64 `json:"weights"`
	Bias       []float64   `json:"bias"`
}

// Dim returns the embedding width
func (w *ClassifierWeights) Dim() int {
	if len(w.Embeddings) == 0 {
		return 0
	}
	return len(w.Embeddings[0])
}

// RegressorWeights is a linear model over a fixed feature order.
// Mean and Scale are optional standardization parameters.
type RegressorWeights struct {
	Features     []string  `json:"features"`
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
	Mean         []float64 `json:"mean,omitempty"`
	Scale        []float64 `json:"scale,omitempty"`
}

// LabelTable decodes class indices back to labels
type LabelTable struct {
	Classes []string `json:"classes"`
}

// Label returns the label for a class index
func (t LabelTable) Label(idx int) (string, bool) {
	if idx < 0 || idx >= len(t.Classes) {
		return "", false
	}
	return t.Classes[idx], true
}

// Vocabulary maps tokens to embedding rows
type Vocabulary struct {
	Tokens   map[string]int `json:"vocab"`
	PadToken string         `json:"pad_token"`
	UnkToken string         `json:"unk_token"`
}

// ============================================================================
// Entity
// ============================================================================

// ModelArtifact is the loaded model: weights plus the auxiliary files needed to run it.
// It is built once at startup and never mutated afterwards.
type ModelArtifact struct {
	Name       string
	Task       Task
	Location   ArtifactLocation
	Classifier *ClassifierWeights
	Regressor  *RegressorWeights
	Labels     *LabelTable
	Vocabulary *Vocabulary
	Sample     *Sample
	LoadedAt   time.Time
}
