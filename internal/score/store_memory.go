package score

import (
	"context"
	"fmt"
	"sync"

	id "healthcred/pkg/domain"
	"healthcred/pkg/platform/sentinel"
)

// InMemoryStore keeps score snapshots in memory for tests/dev.
//
// Error contract (all stores):
// - ErrNotFound when the user has no snapshot
// - ErrConflict when the expected version is stale
// - wrapped infrastructure errors otherwise
type InMemoryStore struct {
	mu        sync.RWMutex
	snapshots map[id.UserID]*Snapshot
}

// NewInMemoryStore constructs an empty in-memory score store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{snapshots: make(map[id.UserID]*Snapshot)}
}

func (s *InMemoryStore) Find(_ context.Context, userID id.UserID) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if snapshot, ok := s.snapshots[userID]; ok {
		return snapshot.Clone(), nil
	}
	return nil, fmt.Errorf("score snapshot for user %s: %w", userID, sentinel.ErrNotFound)
}

func (s *InMemoryStore) Create(_ context.Context, snapshot *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.snapshots[snapshot.UserID]; ok {
		return fmt.Errorf("score snapshot for user %s exists: %w", snapshot.UserID, sentinel.ErrConflict)
	}
	s.snapshots[snapshot.UserID] = snapshot.Clone()
	return nil
}

func (s *InMemoryStore) Update(_ context.Context, snapshot *Snapshot, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.snapshots[snapshot.UserID]
	if !ok {
		return fmt.Errorf("score snapshot for user %s: %w", snapshot.UserID, sentinel.ErrNotFound)
	}
	if current.Version != expectedVersion {
		return fmt.Errorf("score version %d is stale: %w", expectedVersion, sentinel.ErrConflict)
	}
	s.snapshots[snapshot.UserID] = snapshot.Clone()
	return nil
}
