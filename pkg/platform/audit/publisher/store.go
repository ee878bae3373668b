package publisher

import (
	"context"
	"time"

	audit "healthcred/pkg/platform/audit"
)

// StorePublisher adapts an audit.Store into a Publisher for deployments
// without Kafka. Events are appended synchronously.
type StorePublisher struct {
	store audit.Store
}

// NewStore wraps a store as a publisher.
func NewStore(store audit.Store) *StorePublisher {
	return &StorePublisher{store: store}
}

func (p *StorePublisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}
	return p.store.Append(ctx, event)
}
