//go:build integration

package wallet

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "healthcred/pkg/domain"
	"healthcred/pkg/platform/sentinel"
	"healthcred/pkg/testutil/containers"
)

func TestRedisStore(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()
	store := NewRedisStore(rc.Client)

	userID := id.DeriveUserID("addr1qxtest")
	session := &Session{
		ID:     id.NewSessionID(),
		UserID: userID,
		Identity: Identity{
			Provider:        "Yoroi",
			Address:         "addr1qxtest",
			BalanceLovelace: 1_000_000,
		},
		Generation:  1,
		ConnectedAt: time.Now().UTC().Truncate(time.Millisecond),
	}

	require.NoError(t, store.Save(ctx, session, time.Minute))

	found, err := store.Find(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.Identity, found.Identity)

	byUser, err := store.FindByUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, byUser.ID)

	// A second save for the same user drops the previous session.
	replacement := &Session{ID: id.NewSessionID(), UserID: userID, Identity: session.Identity, Generation: 2}
	require.NoError(t, store.Save(ctx, replacement, time.Minute))
	_, err = store.Find(ctx, session.ID)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	require.NoError(t, store.Delete(ctx, replacement.ID))
	_, err = store.Find(ctx, replacement.ID)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
	_, err = store.FindByUser(ctx, userID)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	// Expired sessions disappear on their own.
	short := &Session{ID: id.NewSessionID(), UserID: userID, Identity: session.Identity}
	require.NoError(t, store.Save(ctx, short, 50*time.Millisecond))
	require.Eventually(t, func() bool {
		_, err := store.Find(ctx, short.ID)
		return err != nil
	}, 5*time.Second, 25*time.Millisecond)
}
