package wallet

import (
	"context"
	"sync"
	"time"

	id "healthcred/pkg/domain"
	"healthcred/pkg/platform/sentinel"
)

type memoryEntry struct {
	session   Session
	expiresAt time.Time
}

// MemoryStore is an in-memory session store for tests and single-node runs.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[id.SessionID]memoryEntry
	byUser   map[id.UserID]id.SessionID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[id.SessionID]memoryEntry),
		byUser:   make(map[id.UserID]id.SessionID),
	}
}

func (s *MemoryStore) Save(_ context.Context, session *Session, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if previous, ok := s.byUser[session.UserID]; ok && previous != session.ID {
		delete(s.sessions, previous)
	}
	entry := memoryEntry{session: *session}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	s.sessions[session.ID] = entry
	s.byUser[session.UserID] = session.ID
	return nil
}

func (s *MemoryStore) Find(_ context.Context, sessionID id.SessionID) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.sessions[sessionID]
	if !ok || expired(entry) {
		return nil, sentinel.ErrNotFound
	}
	session := entry.session
	return &session, nil
}

func (s *MemoryStore) FindByUser(_ context.Context, userID id.UserID) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sessionID, ok := s.byUser[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	entry, ok := s.sessions[sessionID]
	if !ok || expired(entry) {
		return nil, sentinel.ErrNotFound
	}
	session := entry.session
	return &session, nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID id.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[sessionID]
	if !ok {
		return nil
	}
	delete(s.sessions, sessionID)
	if s.byUser[entry.session.UserID] == sessionID {
		delete(s.byUser, entry.session.UserID)
	}
	return nil
}

func expired(entry memoryEntry) bool {
	return !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt)
}
