package offers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"healthcred/internal/offers/metrics"
	"healthcred/internal/score"
	id "healthcred/pkg/domain"
	dErrors "healthcred/pkg/domain-errors"
	audit "healthcred/pkg/platform/audit"
	"healthcred/pkg/requestcontext"
)

// ScoreReader provides the score snapshot the matcher evaluates against.
// The matcher never writes score state.
type ScoreReader interface {
	Current(ctx context.Context, userID id.UserID) (*score.Snapshot, error)
}

// MatchResult is one evaluation of the full catalog for a user.
type MatchResult struct {
	Score       int
	Evaluations []Eligibility
	EvaluatedAt time.Time
}

// Service evaluates offer eligibility for connected users.
type Service struct {
	store   Store
	scores  ScoreReader
	matcher *Matcher
	// requireOffers makes an empty catalog an error instead of an empty
	// result, for deployments where no offers means misconfiguration.
	requireOffers bool
	logger        *slog.Logger
	audit         audit.Publisher
	metrics       *metrics.Metrics
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

func WithRequireOffers() Option {
	return func(s *Service) {
		s.requireOffers = true
	}
}

// New constructs a Service.
func New(store Store, scores ScoreReader, matcher *Matcher, opts ...Option) *Service {
	s := &Service{store: store, scores: scores, matcher: matcher, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MatchOffers evaluates the full catalog against the user's current score.
// The evaluation takes an immutable snapshot of both inputs, so concurrent
// calls need no synchronization.
func (s *Service) MatchOffers(ctx context.Context, userID id.UserID) (*MatchResult, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "wallet connection required")
	}

	snapshot, err := s.scores.Current(ctx, userID)
	if err != nil {
		return nil, err
	}

	catalog, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load offer catalog")
	}
	if len(catalog) == 0 && s.requireOffers {
		return nil, dErrors.New(dErrors.CodeNotFound, "offer catalog is empty")
	}

	evaluations := s.matcher.Match(snapshot.Score, catalog)
	result := &MatchResult{
		Score:       snapshot.Score,
		Evaluations: evaluations,
		EvaluatedAt: requestcontext.Now(ctx),
	}

	qualified := 0
	for _, eval := range evaluations {
		if eval.Status == StatusQualified {
			qualified++
		}
	}

	s.logger.InfoContext(ctx, "offers matched",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", userID,
		"score", snapshot.Score,
		"offers", len(evaluations),
		"qualified", qualified,
	)
	s.emitAudit(ctx, userID, qualified, len(evaluations))
	if s.metrics != nil {
		s.metrics.RecordMatch(qualified)
	}

	return result, nil
}

func (s *Service) emitAudit(ctx context.Context, userID id.UserID, qualified, total int) {
	if s.audit == nil {
		return
	}
	event := audit.Event{
		Category:  audit.EventOffersMatched.Category(),
		Timestamp: time.Now(),
		UserID:    userID,
		Subject:   userID.String(),
		Action:    string(audit.EventOffersMatched),
		Decision:  "evaluated",
		Reason:    fmt.Sprintf("%d of %d offers qualified", qualified, total),
		RequestID: requestcontext.RequestID(ctx),
	}
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"error", err,
		)
	}
}
