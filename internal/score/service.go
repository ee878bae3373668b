package score

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"healthcred/internal/score/metrics"
	id "healthcred/pkg/domain"
	dErrors "healthcred/pkg/domain-errors"
	audit "healthcred/pkg/platform/audit"
	"healthcred/pkg/platform/sentinel"
	"healthcred/pkg/requestcontext"
)

// casAttempts bounds the retry loop when a concurrent writer wins the
// version race. The intake pipeline applies at most one delta per workflow,
// so contention is rare and short.
const casAttempts = 3

// Service owns score reads and mutations. ApplyDelta is the only mutation
// path; the matcher and handlers read snapshots.
type Service struct {
	store   Store
	logger  *slog.Logger
	audit   audit.Publisher
	metrics *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher audit.Publisher) Option {
	return func(s *Service) {
		s.audit = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service.
func New(store Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Current returns the user's score snapshot, seeding the starting profile on
// first access.
func (s *Service) Current(ctx context.Context, userID id.UserID) (*Snapshot, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "wallet connection required")
	}

	snapshot, err := s.store.Find(ctx, userID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return s.seed(ctx, userID)
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load score")
	}
	return snapshot, nil
}

// ApplyDelta moves the score by delta, clamped to [0,850], and nudges the
// factor tied to the verified document type. The store-level version check
// serializes concurrent writers; a stale read is retried with fresh state.
func (s *Service) ApplyDelta(ctx context.Context, userID id.UserID, delta int, factor Factor) (*Snapshot, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "wallet connection required")
	}
	if delta < -MaxScore || delta > MaxScore {
		return nil, dErrors.Newf(dErrors.CodeInvalidDelta, "delta %d is outside the representable range", delta)
	}

	var updated *Snapshot
	for attempt := 0; attempt < casAttempts; attempt++ {
		current, err := s.Current(ctx, userID)
		if err != nil {
			return nil, err
		}

		next := current.Clone()
		next.PreviousScore = current.Score
		next.Score = clampScore(current.Score + delta)
		next.Version = current.Version + 1
		next.UpdatedAt = requestcontext.Now(ctx)
		if factor != "" && delta > 0 {
			next.Factors[factor] = clampPercent(next.Factors[factor] + 1)
		}

		err = s.store.Update(ctx, next, current.Version)
		if errors.Is(err, sentinel.ErrConflict) {
			s.incrementCASRetries()
			continue
		}
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist score")
		}
		updated = next
		break
	}
	if updated == nil {
		return nil, dErrors.New(dErrors.CodeConflict, "score update lost the version race repeatedly")
	}

	s.logger.InfoContext(ctx, "score updated",
		"user_id", userID,
		"delta", delta,
		"score", updated.Score,
		"previous_score", updated.PreviousScore,
	)
	s.emitAudit(ctx, updated, delta)
	s.recordMetrics(delta)

	return updated, nil
}

func (s *Service) seed(ctx context.Context, userID id.UserID) (*Snapshot, error) {
	seeded := SeedSnapshot(userID)
	err := s.store.Create(ctx, seeded)
	if errors.Is(err, sentinel.ErrConflict) {
		// Another request seeded concurrently; read theirs.
		snapshot, findErr := s.store.Find(ctx, userID)
		if findErr != nil {
			return nil, dErrors.Wrap(findErr, dErrors.CodeInternal, "failed to load score")
		}
		return snapshot, nil
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to seed score")
	}
	return seeded, nil
}

func (s *Service) emitAudit(ctx context.Context, snapshot *Snapshot, delta int) {
	if s.audit == nil {
		return
	}
	event := audit.Event{
		Category:  audit.EventScoreUpdated.Category(),
		Timestamp: time.Now(),
		UserID:    snapshot.UserID,
		Subject:   snapshot.UserID.String(),
		Action:    string(audit.EventScoreUpdated),
		Decision:  "applied",
		RequestID: requestcontext.RequestID(ctx),
	}
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"error", err,
		)
	}
}

func (s *Service) incrementCASRetries() {
	if s.metrics != nil {
		s.metrics.IncrementCASRetries()
	}
}

func (s *Service) recordMetrics(delta int) {
	if s.metrics != nil {
		s.metrics.IncrementUpdates()
		s.metrics.ObserveDelta(delta)
	}
}
