package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"model-serving-service/internal/core/domain"
	output "model-serving-service/internal/core/ports/output"
)

type fileStore struct{}

// NewFileStore creates an ArtifactStore over a local directory (SM_MODEL_DIR style mounts)
func NewFileStore() output.ArtifactStore {
	return &fileStore{}
}

func (s *fileStore) Scheme() string {
	return domain.SchemeFile
}

func (s *fileStore) Open(ctx context.Context, loc domain.ArtifactLocation, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	full := filepath.Join(loc.Prefix, filepath.FromSlash(name))
	rel, err := filepath.Rel(loc.Prefix, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, fmt.Errorf("%w: %q escapes %s", domain.ErrArtifactCorrupt, name, loc.Prefix)
	}

	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrArtifactNotFound, full)
		}
		return nil, fmt.Errorf("open %s: %w", full, err)
	}
	return f, nil
}

var _ output.ArtifactStore = (*fileStore)(nil)
