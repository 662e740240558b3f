// Package blobstore defines abstractions for the keyed artifact store used by
// the translation pipeline.
//
// The pipeline persists batches, work snapshots, and per-batch translation
// maps as small JSON blobs, then sweeps them by prefix when a job finishes.
// Implementations use SDK default credential chains - stores should not
// implement custom auth logic.
package blobstore

import (
	"context"
	"time"
)

// Store abstracts keyed blob operations.
//
// Implementations should:
//   - Use SDK default credential chains (AWS default config)
//   - Be safe for concurrent use
//   - Treat Put as a full overwrite (re-running a batch rewrites its output)
type Store interface {
	// Put stores body under key, overwriting any existing blob.
	Put(ctx context.Context, key string, body []byte) error

	// Get returns the blob stored under key.
	// Returns ErrNotFound if the blob does not exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes the blob under key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns all keys starting with prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	// Close releases any resources held by the store.
	Close() error
}

// Presigner optionally issues time-limited download URLs.
//
// Stores that cannot presign simply don't implement this interface; callers
// type-assert and degrade to omitting the URL.
type Presigner interface {
	// PresignGet returns a URL that grants read access to key until expiry.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// DeletePrefix removes every blob under prefix and returns how many were
// deleted. It is idempotent: sweeping an already-clean prefix deletes nothing
// and succeeds.
func DeletePrefix(ctx context.Context, s Store, prefix string) (int, error) {
	keys, err := s.List(ctx, prefix)
	if err != nil {
		return 0, err
	}
	deleted := 0
	for _, key := range keys {
		if err := s.Delete(ctx, key); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}
