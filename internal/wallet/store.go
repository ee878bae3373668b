package wallet

import (
	"context"
	"time"

	id "healthcred/pkg/domain"
)

// Store persists wallet sessions. Save replaces any previous session for the
// same user; sessions expire after the given TTL.
type Store interface {
	Save(ctx context.Context, session *Session, ttl time.Duration) error
	Find(ctx context.Context, sessionID id.SessionID) (*Session, error)
	FindByUser(ctx context.Context, userID id.UserID) (*Session, error)
	Delete(ctx context.Context, sessionID id.SessionID) error
}
