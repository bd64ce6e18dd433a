package services

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"model-serving-service/internal/adapters/secondary/filestore"
	"model-serving-service/internal/core/domain"
	"model-serving-service/internal/testutil"
)

func newFileLoader() *ArtifactLoader {
	return NewArtifactLoader(filestore.NewFileStore())
}

// ============================================================================
// Load Tests
// ============================================================================

func TestLoad_Classifier(t *testing.T) {
	dir := testutil.WriteArtifactDir(t, testutil.IntentArtifact(), true)

	artifact, err := newFileLoader().Load(context.Background(), dir)
	require.NoError(t, err)

	want := testutil.IntentArtifact()
	assert.Equal(t, "intent-classifier", artifact.Name)
	assert.Equal(t, domain.TaskClassification, artifact.Task)
	assert.Equal(t, domain.SchemeFile, artifact.Location.Scheme)
	assert.Equal(t, want.Classifier, artifact.Classifier)
	assert.Equal(t, want.Labels, artifact.Labels)
	assert.Equal(t, want.Vocabulary, artifact.Vocabulary)
	assert.Nil(t, artifact.Regressor)
	assert.False(t, artifact.LoadedAt.IsZero())
}

func TestLoad_RegressorFileURI(t *testing.T) {
	dir := testutil.WriteArtifactDir(t, testutil.HousingArtifact(), false)

	artifact, err := newFileLoader().Load(context.Background(), "file://"+dir)
	require.NoError(t, err)

	assert.Equal(t, domain.TaskRegression, artifact.Task)
	assert.Equal(t, testutil.HousingArtifact().Regressor, artifact.Regressor)
	assert.Nil(t, artifact.Classifier)
}

func TestLoad_ManifestSample(t *testing.T) {
	a := testutil.IntentArtifact()
	a.Sample = &domain.Sample{Text: "where is my delivery"}
	dir := testutil.WriteArtifactDir(t, a, false)

	artifact, err := newFileLoader().Load(context.Background(), dir)
	require.NoError(t, err)

	require.NotNil(t, artifact.Sample)
	assert.Equal(t, "where is my delivery", artifact.Sample.Text)
}

func TestLoad_LoadedArtifactPredicts(t *testing.T) {
	dir := testutil.WriteArtifactDir(t, testutil.IntentArtifact(), true)
	artifact, err := newFileLoader().Load(context.Background(), dir)
	require.NoError(t, err)

	n, err := NewTextNormalizer("english")
	require.NoError(t, err)
	p, err := NewPredictor(artifact, n, PredictorOptions{})
	require.NoError(t, err)

	labels, err := p.Classify(context.Background(), []string{"What is the status of my order?"})
	require.NoError(t, err)
	assert.Equal(t, []string{testutil.IntentOrderStatus}, labels)
}

// ============================================================================
// Load Failure Tests
// ============================================================================

func TestLoad_MissingManifest(t *testing.T) {
	_, err := newFileLoader().Load(context.Background(), t.TempDir())
	assert.ErrorIs(t, err, domain.ErrArtifactNotFound)
}

func TestLoad_MissingSubArtifact(t *testing.T) {
	dir := testutil.WriteArtifactDir(t, testutil.IntentArtifact(), false)
	require.NoError(t, os.Remove(filepath.Join(dir, testutil.TokenizerFile)))

	artifact, err := newFileLoader().Load(context.Background(), dir)
	assert.Nil(t, artifact)
	assert.ErrorIs(t, err, domain.ErrArtifactNotFound)
}

func TestLoad_DigestMismatch(t *testing.T) {
	dir := testutil.WriteArtifactDir(t, testutil.HousingArtifact(), true)
	testutil.WriteFile(t, dir, testutil.WeightsFile,
		[]byte(`{"features":["MedInc"],"coefficients":[1],"intercept":0}`))

	_, err := newFileLoader().Load(context.Background(), dir)
	assert.ErrorIs(t, err, domain.ErrDigestMismatch)
}

func TestLoad_CorruptFiles(t *testing.T) {
	tests := []struct {
		name string
		file string
		data string
	}{
		{name: "manifest yaml", file: domain.ManifestFileName, data: "name: [unterminated"},
		{name: "manifest task", file: domain.ManifestFileName, data: "name: x\ntask: clustering\nfiles:\n  weights: weights.json\n"},
		{name: "weights json", file: testutil.WeightsFile, data: "{not json"},
		{name: "labels shape", file: testutil.LabelsFile, data: `{"classes":["only_one"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := testutil.WriteArtifactDir(t, testutil.IntentArtifact(), false)
			testutil.WriteFile(t, dir, tt.file, []byte(tt.data))

			_, err := newFileLoader().Load(context.Background(), dir)
			assert.ErrorIs(t, err, domain.ErrArtifactCorrupt)
		})
	}
}

func TestLoad_UnsupportedLocation(t *testing.T) {
	loader := newFileLoader()

	_, err := loader.Load(context.Background(), "gs://bucket/model")
	assert.ErrorIs(t, err, domain.ErrUnsupportedLocation)

	// no s3 store registered
	_, err = loader.Load(context.Background(), "s3://bucket/model")
	assert.ErrorIs(t, err, domain.ErrUnsupportedLocation)
}

func TestLoad_MockStore(t *testing.T) {
	store := new(testutil.MockArtifactStore)
	store.On("Scheme").Return(domain.SchemeS3)

	manifest := "name: housing\ntask: regression\nfiles:\n  weights: model/weights.json\n"
	weights := `{"features":["x"],"coefficients":[2],"intercept":1}`
	loc := domain.ArtifactLocation{Scheme: domain.SchemeS3, Bucket: "models", Prefix: "housing/v1"}

	store.On("Open", mock.Anything, loc, domain.ManifestFileName).
		Return(io.NopCloser(strings.NewReader(manifest)), nil)
	store.On("Open", mock.Anything, loc, "model/weights.json").
		Return(io.NopCloser(strings.NewReader(weights)), nil)

	artifact, err := NewArtifactLoader(store).Load(context.Background(), "s3://models/housing/v1")
	require.NoError(t, err)

	assert.Equal(t, "housing", artifact.Name)
	assert.Equal(t, []string{"x"}, artifact.Regressor.Features)
	store.AssertExpectations(t)
}
