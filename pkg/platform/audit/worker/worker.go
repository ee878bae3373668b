package worker

import (
	"context"

	dErrors "healthcred/pkg/domain-errors"
	audit "healthcred/pkg/platform/audit"
)

// Worker consumes audit events from a channel and persists them. It keeps
// background processing testable without wiring queue implementations.
type Worker struct {
	store audit.Store
	inbox <-chan audit.Event
}

func NewWorker(store audit.Store, inbox <-chan audit.Event) *Worker {
	return &Worker{store: store, inbox: inbox}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil {
				return err
			}
		}
	}
}

// Publisher feeds the worker's inbox. Emit never blocks the caller; when the
// inbox is full the event is dropped with an error for the caller to log.
type Publisher struct {
	inbox chan<- audit.Event
}

func NewPublisher(inbox chan<- audit.Event) *Publisher {
	return &Publisher{inbox: inbox}
}

func (p *Publisher) Emit(_ context.Context, event audit.Event) error {
	select {
	case p.inbox <- event:
		return nil
	default:
		return dErrors.New(dErrors.CodeUnavailable, "audit inbox is full")
	}
}
