package repository

import (
	"context"
	"io"
)

// EvidenceStorage keeps proof-of-service images.
type EvidenceStorage interface {
	// Upload stores data under namespace/name, overwriting, and returns the stored reference.
	Upload(ctx context.Context, namespace, name string, data []byte) (string, error)
	Remove(ctx context.Context, ref string) error
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
}
