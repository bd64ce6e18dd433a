package ports

import (
	"context"
	"io"

	"model-serving-service/internal/core/domain"
)

// ArtifactStore reads model package files from one kind of storage
type ArtifactStore interface {
	// Scheme returns the location scheme this store serves (s3, file)
	Scheme() string

	// Open returns the content of name relative to the location root.
	// A missing object yields an error wrapping domain.ErrArtifactNotFound.
	Open(ctx context.Context, loc domain.ArtifactLocation, name string) (io.ReadCloser, error)
}
