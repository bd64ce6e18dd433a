package services

import (
	"context"
	_ "crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/opencontainers/go-digest"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"sigs.k8s.io/yaml"

	"model-serving-service/internal/core/domain"
	output "model-serving-service/internal/core/ports/output"
)

// ArtifactLoader resolves a model location and reads the whole model package into memory
type ArtifactLoader struct {
	stores map[string]output.ArtifactStore
}

func NewArtifactLoader(stores ...output.ArtifactStore) *ArtifactLoader {
	m := make(map[string]output.ArtifactStore, len(stores))
	for _, s := range stores {
		m[s.Scheme()] = s
	}
	return &ArtifactLoader{stores: m}
}

// Load reads the manifest and every sub-artifact it names. Any failure fails the whole load,
// a partially loaded artifact is never returned.
func (l *ArtifactLoader) Load(ctx context.Context, location string) (*domain.ModelArtifact, error) {
	loc, err := domain.ParseLocation(location)
	if err != nil {
		return nil, err
	}
	store, ok := l.stores[loc.Scheme]
	if !ok {
		return nil, fmt.Errorf("%w: no store registered for %q", domain.ErrUnsupportedLocation, loc.Scheme)
	}

	logger := log.WithField("location", loc.String())
	logger.Info("loading model artifact")
	start := time.Now()

	raw, err := readAll(ctx, store, loc, domain.ManifestFileName)
	if err != nil {
		logger.WithError(err).Error("failed to read manifest")
		return nil, err
	}
	var manifest domain.Manifest
	if err := yaml.Unmarshal(raw, &manifest); err != nil {
		return nil, fmt.Errorf("%w: parse manifest: %v", domain.ErrArtifactCorrupt, err)
	}
	if err := manifest.Validate(); err != nil {
		return nil, err
	}

	artifact := &domain.ModelArtifact{
		Name:     manifest.Name,
		Task:     manifest.Task,
		Location: loc,
		Sample:   manifest.Sample,
	}

	// Each goroutine writes a distinct field, Wait orders them before the reads below.
	eg, egctx := errgroup.WithContext(ctx)
	fetch := func(name string, into any) {
		eg.Go(func() error {
			if err := fetchJSON(egctx, store, loc, name, manifest.Digests[name], into); err != nil {
				return err
			}
			logger.WithField("file", name).Info("sub-artifact loaded")
			return nil
		})
	}

	switch manifest.Task {
	case domain.TaskClassification:
		artifact.Classifier = &domain.ClassifierWeights{}
		artifact.Labels = &domain.LabelTable{}
		artifact.Vocabulary = &domain.Vocabulary{}
		fetch(manifest.Files.Weights, artifact.Classifier)
		fetch(manifest.Files.Labels, artifact.Labels)
		fetch(manifest.Files.Tokenizer, artifact.Vocabulary)
	case domain.TaskRegression:
		artifact.Regressor = &domain.RegressorWeights{}
		fetch(manifest.Files.Weights, artifact.Regressor)
	}

	if err := eg.Wait(); err != nil {
		logger.WithError(err).Error("failed to load model artifact")
		return nil, err
	}

	switch manifest.Task {
	case domain.TaskClassification:
		err = validateClassifier(artifact.Classifier, artifact.Labels, artifact.Vocabulary)
	case domain.TaskRegression:
		err = validateRegressor(artifact.Regressor)
	}
	if err != nil {
		logger.WithError(err).Error("model artifact failed validation")
		return nil, err
	}

	artifact.LoadedAt = time.Now().UTC()
	logger.WithFields(log.Fields{
		"model":      artifact.Name,
		"task":       artifact.Task,
		"latency_ms": time.Since(start).Milliseconds(),
	}).Info("model loaded successfully")
	return artifact, nil
}

func fetchJSON(ctx context.Context, store output.ArtifactStore, loc domain.ArtifactLocation, name, expected string, into any) error {
	data, err := readAll(ctx, store, loc, name)
	if err != nil {
		return err
	}
	if expected != "" {
		if err := verifyDigest(name, data, expected); err != nil {
			return err
		}
	}
	if err := json.Unmarshal(data, into); err != nil {
		return fmt.Errorf("%w: decode %s: %v", domain.ErrArtifactCorrupt, name, err)
	}
	return nil
}

func readAll(ctx context.Context, store output.ArtifactStore, loc domain.ArtifactLocation, name string) ([]byte, error) {
	rc, err := store.Open(ctx, loc, name)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrArtifactCorrupt, name, err)
	}
	return data, nil
}

func verifyDigest(name string, data []byte, expected string) error {
	want, err := digest.Parse(expected)
	if err != nil {
		return fmt.Errorf("%w: digest for %s: %v", domain.ErrArtifactCorrupt, name, err)
	}
	if got := want.Algorithm().FromBytes(data); got != want {
		return fmt.Errorf("%w: %s: got %s, want %s", domain.ErrDigestMismatch, name, got, want)
	}
	return nil
}
