// Package providers defines the contract shared by every evidence source that
// contributes to a verification: the Provider interface, the Result it yields
// and the normalized failure taxonomy used on primary paths.
package providers

import (
	"context"
	"encoding/json"
	"fmt"
)

// Source identifies which path produced a Result.
type Source string

const (
	// SourcePrimary means the external dependency answered.
	SourcePrimary Source = "primary"
	// SourceFallback means the provider answered from its local table.
	SourceFallback Source = "fallback"
)

// Provider names used as keys in verification reports.
const (
	NameRegistry = "registry"
	NameLedger   = "ledger"
)

// Result is the validity signal a provider produced for one identifier.
// It is built fresh per call and never cached.
type Result struct {
	Valid        bool    `json:"valid"`
	Confidence   float64 `json:"confidence"`
	Reason       string  `json:"reason,omitempty"`
	Manufacturer string  `json:"manufacturer,omitempty"`
	DrugName     string  `json:"drug_name,omitempty"`
	Source       Source  `json:"source"`

	// RegistryCode is the normalized sub-identifier a registry looked up.
	RegistryCode string `json:"registry_code,omitempty"`

	// OnChain and Proof are set by ledger providers. Proof is carried
	// through untouched.
	OnChain bool            `json:"on_chain"`
	Proof   json.RawMessage `json:"proof,omitempty"`
}

// Validate checks the Result invariants.
func (r Result) Validate() error {
	if r.Confidence < 0 || r.Confidence > 1 {
		return fmt.Errorf("confidence %f out of range [0, 1]", r.Confidence)
	}
	switch r.Source {
	case SourcePrimary, SourceFallback:
	default:
		return fmt.Errorf("unknown source %q", r.Source)
	}
	return nil
}

// Effective returns the confidence a Result contributes as positive
// evidence: its confidence when valid, zero otherwise.
func (r Result) Effective() float64 {
	if !r.Valid {
		return 0
	}
	return r.Confidence
}

// Provider is implemented by every evidence source.
//
// Fetch never fails: a provider that cannot reach its primary dependency
// answers from its fallback path with lower confidence.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, identifier string) Result
}
