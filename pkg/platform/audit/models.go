package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, sinks and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with regulatory significance, such as
	// a manufacturer registering a batch on the ledger.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to security monitoring:
	// rejected registrations, rate limit violations.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine activity such as completed
	// verifications. These can be sampled.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory `json:"category"`
	Timestamp time.Time     `json:"timestamp"`
	Action    string        `json:"action"`
	// Subject names who the event is about: a manufacturer for registrations,
	// a client IP prefix for rate limiting. Empty for anonymous verifications.
	Subject string `json:"subject,omitempty"`
	// SubjectIDHash is a SHA-256 hash of the verified identifier or batch ID,
	// so the stream can be correlated without carrying raw identifiers.
	SubjectIDHash string  `json:"subject_id_hash,omitempty"`
	Decision      string  `json:"decision,omitempty"`
	Reason        string  `json:"reason,omitempty"`
	Score         float64 `json:"score,omitempty"`
	Degraded      bool    `json:"degraded,omitempty"`
	RequestID     string  `json:"request_id,omitempty"`
	// ActorID tracks who performed the action when different from Subject.
	ActorID string `json:"actor_id,omitempty"`
}

// Store appends audit events to a sink.
type Store interface {
	Append(ctx context.Context, event Event) error
}

type AuditEvent string

const (
	EventVerificationCompleted   AuditEvent = "verification_completed"
	EventBatchRegistered         AuditEvent = "batch_registered"
	EventBatchRegistrationFailed AuditEvent = "batch_registration_failed"
	EventBatchRegistrationDenied AuditEvent = "batch_registration_denied"
	EventRateLimitExceeded       AuditEvent = "rate_limit_exceeded"
)

// eventCategories maps each audit event to its category.
var eventCategories = map[AuditEvent]EventCategory{
	EventBatchRegistered: CategoryCompliance,

	EventBatchRegistrationFailed: CategorySecurity,
	EventBatchRegistrationDenied: CategorySecurity,
	EventRateLimitExceeded:       CategorySecurity,

	EventVerificationCompleted: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// NewEvent starts an event for action with its category filled in.
func NewEvent(action AuditEvent) Event {
	return Event{
		Category: action.Category(),
		Action:   string(action),
	}
}

// HashIdentifier returns the hex SHA-256 of an identifier.
func HashIdentifier(identifier string) string {
	sum := sha256.Sum256([]byte(identifier))
	return hex.EncodeToString(sum[:])
}
