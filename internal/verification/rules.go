package verification

import (
	"time"

	"github.com/google/uuid"

	"pharmaguard/internal/analyzer"
	"pharmaguard/internal/evidence/providers"
)

// Source weights. They sum to 1 so the overall score stays a convex
// combination of its inputs.
const (
	weightRegistry = 0.5
	weightLedger   = 0.3
	weightAnalyzer = 0.2
)

// Verdict thresholds, inclusive on the lower bound.
const (
	thresholdSafe    = 0.8
	thresholdCaution = 0.6
)

var guidance = map[Verdict]string{
	VerdictSafe:    "medication appears to be authentic and safe",
	VerdictCaution: "verify with pharmacist before use",
	VerdictUnsafe:  "do not use this medication; it may be counterfeit or contaminated",
}

// Aggregate combines the evidence into one weighted score.
// Invalid provider results contribute nothing, however confident they are.
// This is pure domain logic - no I/O, no side effects.
func Aggregate(registry, ledger providers.Result, analysis analyzer.Result) float64 {
	return weightRegistry*registry.Effective() +
		weightLedger*ledger.Effective() +
		weightAnalyzer*analysis.Confidence
}

// Classify maps a score to its verdict tier.
func Classify(score float64) Verdict {
	switch {
	case score >= thresholdSafe:
		return VerdictSafe
	case score >= thresholdCaution:
		return VerdictCaution
	default:
		return VerdictUnsafe
	}
}

// Guidance returns consumer guidance for a verdict.
func Guidance(v Verdict) string {
	return guidance[v]
}

// BuildReport assembles the report for gathered evidence.
// This is pure domain logic - no I/O, no side effects.
func BuildReport(identifier string, evidence *GatheredEvidence, degraded bool, evalTime time.Time) *Report {
	score := Aggregate(evidence.Registry, evidence.Ledger, evidence.Analysis)
	verdict := Classify(score)

	return &Report{
		ID:         uuid.New(),
		Identifier: identifier,
		ProviderResults: map[string]providers.Result{
			providers.NameRegistry: evidence.Registry,
			providers.NameLedger:   evidence.Ledger,
		},
		Analysis:     evidence.Analysis,
		OverallScore: score,
		Verdict:      verdict,
		Guidance:     Guidance(verdict),
		Degraded:     degraded,
		EvaluatedAt:  evalTime,
	}
}
