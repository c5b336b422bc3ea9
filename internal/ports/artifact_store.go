package ports

import "context"

// ArtifactStore is a key-value blob store for generated documents.
// Get returns an error of kind domain.KindNotFound for a missing key.
type ArtifactStore interface {
	Put(ctx context.Context, key string, content []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
}
