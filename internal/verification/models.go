package verification

import (
	"time"

	"github.com/google/uuid"

	"pharmaguard/internal/analyzer"
	"pharmaguard/internal/evidence/providers"
)

// Verdict is the tiered safety outcome derived from an overall score.
type Verdict string

const (
	VerdictSafe    Verdict = "SAFE"
	VerdictCaution Verdict = "CAUTION"
	VerdictUnsafe  Verdict = "UNSAFE"
)

// rank orders verdicts from least to most trusted.
func (v Verdict) rank() int {
	switch v {
	case VerdictSafe:
		return 2
	case VerdictCaution:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether v is the same tier as other or a higher one.
func (v Verdict) AtLeast(other Verdict) bool {
	return v.rank() >= other.rank()
}

// Lifecycle is the engine initialization state.
type Lifecycle string

const (
	LifecycleUninitialized Lifecycle = "uninitialized"
	LifecycleReady         Lifecycle = "ready"
)

// State is the engine state owned by a Service. It is written once by Init.
type State struct {
	Lifecycle       Lifecycle `json:"state"`
	LedgerConnected bool      `json:"ledger_connected"`
	InitializedAt   time.Time `json:"initialized_at,omitzero"`
}

// Ready reports whether Init has run.
func (s State) Ready() bool {
	return s.Lifecycle == LifecycleReady
}

// Degraded reports whether the ledger is answered from its fallback only.
func (s State) Degraded() bool {
	return !s.Ready() || !s.LedgerConnected
}

// Report is the outcome of one verification. It is built once per Verify
// call and not modified afterwards.
type Report struct {
	ID              uuid.UUID                   `json:"id"`
	Identifier      string                      `json:"identifier"`
	ProviderResults map[string]providers.Result `json:"provider_results"`
	Analysis        analyzer.Result             `json:"analysis"`
	OverallScore    float64                     `json:"overall_score"`
	Verdict         Verdict                     `json:"verdict"`
	Guidance        string                      `json:"guidance"`
	Degraded        bool                        `json:"degraded"`
	EvaluatedAt     time.Time                   `json:"evaluated_at"`
}

// Registry returns the registry provider result.
func (r *Report) Registry() providers.Result {
	return r.ProviderResults[providers.NameRegistry]
}

// Ledger returns the ledger provider result.
func (r *Report) Ledger() providers.Result {
	return r.ProviderResults[providers.NameLedger]
}

// BatchInfo is the manufacturer-supplied metadata for a new batch.
type BatchInfo struct {
	BatchID           string `json:"batchId"`
	DrugName          string `json:"drugName"`
	Manufacturer      string `json:"manufacturer"`
	NDCCode           string `json:"ndcCode"`
	ManufacturingDate string `json:"manufacturingDate"`
	ExpiryDate        string `json:"expiryDate"`
	QualityScore      *int   `json:"qualityScore,omitempty"`
}

// Registration is the receipt for a batch submitted to the ledger.
type Registration struct {
	TransactionID string    `json:"transaction_id"`
	BatchID       string    `json:"batch_id"`
	SubmittedAt   time.Time `json:"submitted_at"`
}
