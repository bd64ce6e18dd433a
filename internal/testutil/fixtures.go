package testutil

import (
	_ "crypto/sha256"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/require"
	"sigs.k8s.io/yaml"

	"model-serving-service/internal/core/domain"
)

// Intent labels of the fixture classifier, in class order
const (
	IntentChangeAddress = "change_shipping_address"
	IntentOrderStatus   = "check_order_status"
	IntentCancelOrder   = "cancel_order"
)

// HousingSamplePrediction is the fixture regressor's output for domain.DefaultRegressionSample
const HousingSamplePrediction = 4.848

// HousingFeatures is the fixture regressor's feature order
var HousingFeatures = []string{
	"MedInc", "HouseAge", "AveRooms", "AveBedrms", "Population", "AveOccup", "Latitude", "Longitude",
}

// IntentArtifact is a small embedding-bag classifier over an intent vocabulary.
// Each class reads one embedding axis: 0 address words, 1 status words, 2 cancel words.
func IntentArtifact() *domain.ModelArtifact {
	return &domain.ModelArtifact{
		Name: "intent-classifier",
		Task: domain.TaskClassification,
		Classifier: &domain.ClassifierWeights{
			Embeddings: [][]float64{
				{0, 0, 0},       // <pad>
				{0, 0, 0},       // <unk>
				{0, 1, 0},       // status
				{0, 0.6, 0.4},   // order
				{1, 0, 0},       // change
				{0.8, 0.2, 0},   // shipping
				{1, 0, 0},       // address
				{0, 0, 1},       // cancel
				{0.5, 0.5, 0},   // delivery
				{0.3, 0.3, 0.4}, // help
			},
			Weights: [][]float64{
				{1, 0, 0},
				{0, 1, 0},
				{0, 0, 1},
			},
			Bias: []float64{0, 0, 0},
		},
		Labels: &domain.LabelTable{
			Classes: []string{IntentChangeAddress, IntentOrderStatus, IntentCancelOrder},
		},
		Vocabulary: &domain.Vocabulary{
			Tokens: map[string]int{
				"<pad>": 0, "<unk>": 1, "status": 2, "order": 3, "change": 4,
				"shipping": 5, "address": 6, "cancel": 7, "delivery": 8, "help": 9,
			},
			PadToken: "<pad>",
			UnkToken: "<unk>",
		},
	}
}

// HousingArtifact is a linear regressor over the California housing features
func HousingArtifact() *domain.ModelArtifact {
	return &domain.ModelArtifact{
		Name: "housing-regressor",
		Task: domain.TaskRegression,
		Regressor: &domain.RegressorWeights{
			Features:     append([]string(nil), HousingFeatures...),
			Coefficients: []float64{0.4, 0.01, -0.1, 0.6, 0.0, -0.004, -0.42, -0.43},
			Intercept:    -36.9,
		},
	}
}

// ArtifactFiles are the file names WriteArtifactDir uses
const (
	WeightsFile   = "weights.json"
	LabelsFile    = "labels.json"
	TokenizerFile = "tokenizer.json"
)

// WriteArtifactDir lays out artifact as a model package under a fresh temp dir and returns it.
// With withDigests the manifest pins every sub-artifact by sha256.
func WriteArtifactDir(t testing.TB, artifact *domain.ModelArtifact, withDigests bool) string {
	t.Helper()
	dir := t.TempDir()

	manifest := domain.Manifest{
		Name:   artifact.Name,
		Task:   artifact.Task,
		Sample: artifact.Sample,
	}
	files := map[string]any{}
	switch artifact.Task {
	case domain.TaskClassification:
		manifest.Files = domain.ManifestFiles{Weights: WeightsFile, Labels: LabelsFile, Tokenizer: TokenizerFile}
		files[WeightsFile] = artifact.Classifier
		files[LabelsFile] = artifact.Labels
		files[TokenizerFile] = artifact.Vocabulary
	case domain.TaskRegression:
		manifest.Files = domain.ManifestFiles{Weights: WeightsFile}
		files[WeightsFile] = artifact.Regressor
	}

	if withDigests {
		manifest.Digests = map[string]string{}
	}
	for name, v := range files {
		data, err := json.Marshal(v)
		require.NoError(t, err)
		WriteFile(t, dir, name, data)
		if withDigests {
			manifest.Digests[name] = digest.FromBytes(data).String()
		}
	}

	raw, err := yaml.Marshal(manifest)
	require.NoError(t, err)
	WriteFile(t, dir, domain.ManifestFileName, raw)
	return dir
}

// WriteFile writes data to dir/name, overwriting any existing file
func WriteFile(t testing.TB, dir, name string, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
}
