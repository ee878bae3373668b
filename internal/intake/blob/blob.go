// Package blob stores uploaded document bytes keyed by content hash.
package blob

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"healthcred/pkg/platform/sentinel"
)

// Store is a content-addressed byte store. Put is idempotent; storing the
// same content twice returns the same hash.
type Store interface {
	Put(ctx context.Context, data []byte) (contentHash string, err error)
	Get(ctx context.Context, contentHash string) ([]byte, error)
}

// HashOf returns the content hash used as the blob key.
func HashOf(data []byte) string {
	sum := sha256.Sum256(data)
	return "0x" + hex.EncodeToString(sum[:])
}

// MemoryStore keeps blobs in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (s *MemoryStore) Put(_ context.Context, data []byte) (string, error) {
	hash := HashOf(data)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[hash]; !ok {
		cp := make([]byte, len(data))
		copy(cp, data)
		s.blobs[hash] = cp
	}
	return hash, nil
}

func (s *MemoryStore) Get(_ context.Context, contentHash string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[contentHash]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}
