package handler

import (
	"encoding/json"
	"time"

	"pharmaguard/internal/evidence/providers"
	"pharmaguard/internal/verification"
)

// ReportResponse is the HTTP response for one verification.
type ReportResponse struct {
	ID           string                      `json:"id"`
	Identifier   string                      `json:"identifier"`
	Verdict      string                      `json:"verdict"`
	OverallScore float64                     `json:"overall_score"`
	Guidance     string                      `json:"guidance"`
	Degraded     bool                        `json:"degraded"`
	Providers    map[string]ProviderResponse `json:"providers"`
	Analysis     AnalysisResponse            `json:"analysis"`
	EvaluatedAt  time.Time                   `json:"evaluated_at"`
}

// ProviderResponse is the provider portion of the response.
type ProviderResponse struct {
	Valid        bool            `json:"valid"`
	Confidence   float64         `json:"confidence"`
	Source       string          `json:"source"`
	Reason       string          `json:"reason,omitempty"`
	Manufacturer string          `json:"manufacturer,omitempty"`
	DrugName     string          `json:"drug_name,omitempty"`
	RegistryCode string          `json:"registry_code,omitempty"`
	OnChain      *bool           `json:"on_chain,omitempty"`
	Proof        json.RawMessage `json:"proof,omitempty"`
}

type AnalysisResponse struct {
	Confidence   float64  `json:"confidence"`
	Score        int      `json:"score"`
	Manufacturer string   `json:"manufacturer"`
	Reasonings   []string `json:"reasonings"`
}

// BulkVerifyResponse is the HTTP response for POST /v1/verify/bulk.
type BulkVerifyResponse struct {
	Reports []*ReportResponse `json:"reports"`
}

// RegistrationResponse is the HTTP response for POST /v1/batches.
type RegistrationResponse struct {
	TransactionID string    `json:"transaction_id"`
	BatchID       string    `json:"batch_id"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// ReadinessResponse is the HTTP response for GET /readyz.
type ReadinessResponse struct {
	State           string     `json:"state"`
	LedgerConnected bool       `json:"ledger_connected"`
	InitializedAt   *time.Time `json:"initialized_at,omitempty"`
}

// FromReport converts a domain Report to an HTTP response.
func FromReport(report *verification.Report) *ReportResponse {
	resp := &ReportResponse{
		ID:           report.ID.String(),
		Identifier:   report.Identifier,
		Verdict:      string(report.Verdict),
		OverallScore: report.OverallScore,
		Guidance:     report.Guidance,
		Degraded:     report.Degraded,
		Providers:    make(map[string]ProviderResponse, len(report.ProviderResults)),
		Analysis: AnalysisResponse{
			Confidence:   report.Analysis.Confidence,
			Score:        report.Analysis.Score,
			Manufacturer: report.Analysis.Manufacturer,
			Reasonings:   report.Analysis.Reasonings,
		},
		EvaluatedAt: report.EvaluatedAt,
	}
	for name, result := range report.ProviderResults {
		resp.Providers[name] = fromProviderResult(name, result)
	}
	return resp
}

func fromProviderResult(name string, r providers.Result) ProviderResponse {
	pr := ProviderResponse{
		Valid:        r.Valid,
		Confidence:   r.Confidence,
		Source:       string(r.Source),
		Reason:       r.Reason,
		Manufacturer: r.Manufacturer,
		DrugName:     r.DrugName,
		RegistryCode: r.RegistryCode,
		Proof:        r.Proof,
	}
	if name == providers.NameLedger {
		onChain := r.OnChain
		pr.OnChain = &onChain
	}
	return pr
}

func FromRegistration(reg *verification.Registration) *RegistrationResponse {
	return &RegistrationResponse{
		TransactionID: reg.TransactionID,
		BatchID:       reg.BatchID,
		SubmittedAt:   reg.SubmittedAt,
	}
}

func FromState(state verification.State) *ReadinessResponse {
	resp := &ReadinessResponse{
		State:           string(state.Lifecycle),
		LedgerConnected: state.LedgerConnected,
	}
	if !state.InitializedAt.IsZero() {
		at := state.InitializedAt
		resp.InitializedAt = &at
	}
	return resp
}
