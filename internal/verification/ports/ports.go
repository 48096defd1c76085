//go:generate mockgen -source=ports.go -destination=../mocks/mocks.go -package=mocks EvidenceProvider,LedgerConnector,AuditPublisher

package ports

import (
	"context"

	"pharmaguard/internal/evidence/ledger"
	"pharmaguard/internal/evidence/providers"
	"pharmaguard/pkg/platform/audit"
)

// EvidenceProvider is a source of validity evidence for an identifier.
// Fetch never fails; unavailable sources answer from their fallback path.
type EvidenceProvider interface {
	Name() string
	Fetch(ctx context.Context, identifier string) providers.Result
}

// LedgerConnector manages connectivity to the ledger contract and batch
// submission. The ledger evidence provider shares this connection.
type LedgerConnector interface {
	Connect(ctx context.Context) error
	Submit(ctx context.Context, w ledger.BatchWitness) (ledger.Submission, error)
}

// AuditPublisher emits audit events. Failures are reported but never block
// a verification.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}
