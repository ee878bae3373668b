package score

import (
	"context"

	id "healthcred/pkg/domain"
)

// Store persists score snapshots. Implementations return sentinel.ErrNotFound
// for missing users and sentinel.ErrConflict when the expected version no
// longer matches (a concurrent writer won).
type Store interface {
	Find(ctx context.Context, userID id.UserID) (*Snapshot, error)
	Create(ctx context.Context, snapshot *Snapshot) error
	Update(ctx context.Context, snapshot *Snapshot, expectedVersion int64) error
}
