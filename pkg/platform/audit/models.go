package audit

import (
	"context"
	"time"

	id "healthcred/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/regulatory significance:
	// document verification outcomes and score mutations that drive
	// financial eligibility.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to security monitoring:
	// wallet session lifecycle and failed gate checks.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers events useful for debugging and operational
	// visibility. These can be sampled with shorter retention.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category      EventCategory
	Timestamp     time.Time
	UserID        id.UserID
	Subject       string
	Action        string
	Decision      string
	Reason        string
	RequestID     string
	WalletAddress string
	// ContentHash references the stored document blob for intake events.
	// It stands in for a ledger reference; no raw document bytes are ever
	// written to the audit trail.
	ContentHash string
}

// AuditEvent names every action the platform records.
type AuditEvent string

const (
	// Wallet session events
	EventWalletConnected    AuditEvent = "wallet_connected"
	EventWalletDisconnected AuditEvent = "wallet_disconnected"
	EventWalletGateDenied   AuditEvent = "wallet_gate_denied"

	// Intake events
	EventDocumentUploaded AuditEvent = "document_uploaded"
	EventDocumentVerified AuditEvent = "document_verified"
	EventIntakeFailed     AuditEvent = "intake_failed"
	EventIntakeCancelled  AuditEvent = "intake_cancelled"

	// Score events
	EventScoreUpdated AuditEvent = "score_updated"

	// Offer events
	EventOffersMatched AuditEvent = "offers_matched"
)

// eventCategories maps each audit event to its category.
var eventCategories = map[AuditEvent]EventCategory{
	EventWalletConnected:    CategorySecurity,
	EventWalletDisconnected: CategorySecurity,
	EventWalletGateDenied:   CategorySecurity,
	EventDocumentUploaded:   CategoryCompliance,
	EventDocumentVerified:   CategoryCompliance,
	EventIntakeFailed:       CategoryOperations,
	EventIntakeCancelled:    CategoryOperations,
	EventScoreUpdated:       CategoryCompliance,
	EventOffersMatched:      CategoryOperations,
}

// Category resolves the event's category, defaulting to operations for
// unknown actions so nothing is dropped on the floor.
func (e AuditEvent) Category() EventCategory {
	if category, ok := eventCategories[e]; ok {
		return category
	}
	return CategoryOperations
}

// Publisher accepts audit events from domain services. Implementations must
// be safe for concurrent use.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}

// Store persists audit events for querying.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByUser(ctx context.Context, userID id.UserID) ([]Event, error)
}
