package blobstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-process Store used by tests and local runs.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

var (
	_ Store     = (*MemoryStore)(nil)
	_ Presigner = (*MemoryStore)(nil)
)

// NewMemoryStore creates an empty in-memory blob store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

// Put stores body under key, overwriting any existing blob.
func (s *MemoryStore) Put(ctx context.Context, key string, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	buf := make([]byte, len(body))
	copy(buf, body)
	s.blobs[key] = buf
	return nil
}

// Get returns the blob stored under key.
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	body, ok := s.blobs[key]
	if !ok {
		return nil, &StoreError{Op: "Get", Backend: BackendMemory, Key: key, Err: ErrNotFound}
	}
	out := make([]byte, len(body))
	copy(out, body)
	return out, nil
}

// Delete removes the blob under key.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}

// List returns all keys starting with prefix, sorted.
func (s *MemoryStore) List(ctx context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keys []string
	for k := range s.blobs {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// PresignGet returns a synthetic URL; there is nothing to sign in-process.
func (s *MemoryStore) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return fmt.Sprintf("memory://%s", key), nil
}

// Close releases nothing; it satisfies the interface.
func (s *MemoryStore) Close() error {
	return nil
}

// Len returns the number of stored blobs. Test helper.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
