package intake

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "healthcred/pkg/domain"
	"healthcred/pkg/platform/sentinel"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	userID := id.NewUserID()
	now := time.Now().UTC()

	wf := NewWorkflow(userID, now)
	require.NoError(t, store.Save(ctx, wf.Record()))

	found, err := store.Find(ctx, wf.ID())
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingFile, found.State)
	assert.Equal(t, userID, found.UserID)

	// Updates replace the stored snapshot.
	require.NoError(t, wf.SelectFile("receipt.pdf", []byte("%PDF-1.4 x"), 1<<20, now.Add(time.Second)))
	require.NoError(t, store.Save(ctx, wf.Record()))
	found, err = store.Find(ctx, wf.ID())
	require.NoError(t, err)
	assert.Equal(t, "receipt.pdf", found.FileName)

	other := NewWorkflow(id.NewUserID(), now)
	require.NoError(t, store.Save(ctx, other.Record()))

	mine, err := store.FindByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, wf.ID(), mine[0].ID)

	_, err = store.Find(ctx, id.NewWorkflowID())
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}
