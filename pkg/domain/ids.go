// Package domain holds typed identifiers shared across features. Wrapping
// uuid.UUID in distinct types makes cross-assignment a compile error and
// keeps parsing invariants at trust boundaries.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "healthcred/pkg/domain-errors"
)

// UserID identifies the account behind a wallet session.
type UserID uuid.UUID

// SessionID identifies one wallet session lifetime.
type SessionID uuid.UUID

// WorkflowID identifies one document intake workflow instance.
type WorkflowID uuid.UUID

// DocumentID identifies one submitted document.
type DocumentID uuid.UUID

// OfferID identifies an offer in the catalog. Offers are seeded from a
// curated catalog, so IDs are human-readable slugs rather than UUIDs.
type OfferID string

func parseUUID(raw string, kind string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s is required", kind)
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s must be a valid UUID", kind)
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s must not be the nil UUID", kind)
	}
	return parsed, nil
}

// ParseUserID parses and validates a user ID string.
func ParseUserID(raw string) (UserID, error) {
	parsed, err := parseUUID(raw, "user id")
	if err != nil {
		return UserID{}, err
	}
	return UserID(parsed), nil
}

// ParseSessionID parses and validates a session ID string.
func ParseSessionID(raw string) (SessionID, error) {
	parsed, err := parseUUID(raw, "session id")
	if err != nil {
		return SessionID{}, err
	}
	return SessionID(parsed), nil
}

// ParseWorkflowID parses and validates a workflow ID string.
func ParseWorkflowID(raw string) (WorkflowID, error) {
	parsed, err := parseUUID(raw, "workflow id")
	if err != nil {
		return WorkflowID{}, err
	}
	return WorkflowID(parsed), nil
}

// ParseOfferID validates an offer ID slug.
func ParseOfferID(raw string) (OfferID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "offer id is required")
	}
	if raw != strings.ToLower(raw) || strings.ContainsAny(raw, " \t\n") {
		return "", dErrors.New(dErrors.CodeInvalidInput, "offer id must be a lowercase slug")
	}
	return OfferID(raw), nil
}

func (id UserID) String() string     { return uuid.UUID(id).String() }
func (id SessionID) String() string  { return uuid.UUID(id).String() }
func (id WorkflowID) String() string { return uuid.UUID(id).String() }
func (id DocumentID) String() string { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id SessionID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id WorkflowID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id DocumentID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// NewUserID returns a fresh random user ID.
func NewUserID() UserID { return UserID(uuid.New()) }

// walletNamespace pins user identity to the wallet address. Reconnecting the
// same wallet resolves to the same account, so scores and workflows survive
// a disconnect.
var walletNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// DeriveUserID maps a wallet address to its stable user ID.
func DeriveUserID(walletAddress string) UserID {
	return UserID(uuid.NewSHA1(walletNamespace, []byte(walletAddress)))
}

// NewSessionID returns a fresh random session ID.
func NewSessionID() SessionID { return SessionID(uuid.New()) }

// NewWorkflowID returns a fresh random workflow ID.
func NewWorkflowID() WorkflowID { return WorkflowID(uuid.New()) }

// NewDocumentID returns a fresh random document ID.
func NewDocumentID() DocumentID { return DocumentID(uuid.New()) }
