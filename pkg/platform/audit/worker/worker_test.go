package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "healthcred/pkg/domain"
	audit "healthcred/pkg/platform/audit"
	memorystore "healthcred/pkg/platform/audit/store/memory"
)

func TestWorkerDrainsInbox(t *testing.T) {
	store := memorystore.New()
	inbox := make(chan audit.Event, 2)
	w := NewWorker(store, inbox)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	userID := id.NewUserID()
	inbox <- audit.Event{Action: string(audit.EventScoreUpdated), UserID: userID}
	inbox <- audit.Event{Action: string(audit.EventOffersMatched), UserID: userID}

	require.Eventually(t, func() bool {
		events, err := store.ListByUser(context.Background(), userID)
		return err == nil && len(events) == 2
	}, time.Second, 10*time.Millisecond)

	cancel()
	err := <-done
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPublisherNeverBlocks(t *testing.T) {
	inbox := make(chan audit.Event, 1)
	p := NewPublisher(inbox)

	require.NoError(t, p.Emit(context.Background(), audit.Event{Action: string(audit.EventScoreUpdated)}))
	assert.Error(t, p.Emit(context.Background(), audit.Event{Action: string(audit.EventScoreUpdated)}))
}
