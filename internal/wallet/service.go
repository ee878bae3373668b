package wallet

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	id "healthcred/pkg/domain"
	dErrors "healthcred/pkg/domain-errors"
	audit "healthcred/pkg/platform/audit"
	"healthcred/pkg/platform/sentinel"
	"healthcred/pkg/requestcontext"
)

// Service owns the wallet session lifecycle. Connect and Disconnect are
// serialized so concurrent connects for the same user resolve to exactly one
// active session.
type Service struct {
	connector Connector
	store     Store
	tokens    *TokenManager
	ttl       time.Duration
	logger    *slog.Logger
	audit     audit.Publisher

	mu          sync.Mutex
	seq         uint64 // orders connect handshakes against disconnects
	generations map[id.UserID]uint64
	revoked     map[id.UserID]uint64 // seq of the user's latest disconnect
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

// New constructs a Service. Sessions live for ttl unless disconnected first.
func New(connector Connector, store Store, tokens *TokenManager, ttl time.Duration, opts ...Option) *Service {
	s := &Service{
		connector:   connector,
		store:       store,
		tokens:      tokens,
		ttl:         ttl,
		logger:      slog.Default(),
		generations: make(map[id.UserID]uint64),
		revoked:     make(map[id.UserID]uint64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ConnectResult is the outcome of a successful wallet connection.
type ConnectResult struct {
	Session *Session
	Token   string
}

// Connect opens a provider handshake and establishes the session. If the
// wallet was already connected the previous session is replaced; the old
// token stops passing the gate immediately. A disconnect issued while the
// handshake is in flight supersedes it and the late connect is discarded.
func (s *Service) Connect(ctx context.Context, provider string) (*ConnectResult, error) {
	s.mu.Lock()
	s.seq++
	started := s.seq
	s.mu.Unlock()

	identity, err := s.connector.Connect(ctx, provider)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		if dErrors.CodeOf(err) == dErrors.CodeValidation {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "wallet provider handshake failed")
	}

	userID := id.DeriveUserID(identity.Address)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.revoked[userID] > started {
		return nil, dErrors.New(dErrors.CodeConflict, "wallet connection superseded by disconnect")
	}

	s.generations[userID]++
	session := &Session{
		ID:          id.NewSessionID(),
		UserID:      userID,
		Identity:    *identity,
		Generation:  s.generations[userID],
		ConnectedAt: requestcontext.Now(ctx),
	}

	if err := s.store.Save(ctx, session, s.ttl); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist session")
	}

	token, err := s.tokens.Issue(session)
	if err != nil {
		_ = s.store.Delete(ctx, session.ID)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue session token")
	}

	s.logger.InfoContext(ctx, "wallet connected",
		"user_id", userID,
		"session_id", session.ID,
		"provider", provider,
		"generation", session.Generation,
	)
	s.emitAudit(ctx, session, audit.EventWalletConnected, "connected")

	return &ConnectResult{Session: session, Token: token}, nil
}

// Disconnect revokes the session. Disconnecting an already-revoked session
// is a no-op so retries are safe.
func (s *Service) Disconnect(ctx context.Context, sessionID id.SessionID) error {
	if sessionID.IsNil() {
		return dErrors.New(dErrors.CodeUnauthorized, "wallet connection required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.store.Find(ctx, sessionID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load session")
	}

	if err := s.store.Delete(ctx, sessionID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke session")
	}
	s.seq++
	s.revoked[session.UserID] = s.seq

	s.logger.InfoContext(ctx, "wallet disconnected",
		"user_id", session.UserID,
		"session_id", sessionID,
	)
	s.emitAudit(ctx, session, audit.EventWalletDisconnected, "disconnected")
	return nil
}

// Current returns the active session.
func (s *Service) Current(ctx context.Context, sessionID id.SessionID) (*Session, error) {
	if sessionID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "wallet connection required")
	}
	session, err := s.store.Find(ctx, sessionID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "wallet is disconnected")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load session")
	}
	return session, nil
}

// IsActive reports whether the session still exists. Implements the gate's
// SessionChecker.
func (s *Service) IsActive(sessionID string) bool {
	parsed, err := id.ParseSessionID(sessionID)
	if err != nil {
		return false
	}
	_, err = s.store.Find(context.Background(), parsed)
	return err == nil
}

func (s *Service) emitAudit(ctx context.Context, session *Session, action audit.AuditEvent, decision string) {
	if s.audit == nil {
		return
	}
	event := audit.Event{
		Category:      action.Category(),
		Timestamp:     time.Now(),
		UserID:        session.UserID,
		Subject:       session.ID.String(),
		Action:        string(action),
		Decision:      decision,
		RequestID:     requestcontext.RequestID(ctx),
		WalletAddress: session.Identity.Address,
	}
	if err := s.audit.Emit(context.WithoutCancel(ctx), event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"error", err,
		)
	}
}
