package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the verification engine.
type Metrics struct {
	// Evidence gathering latencies by provider
	EvidenceLatency *prometheus.HistogramVec

	// Provider results answered from the fallback path
	FallbackTotal *prometheus.CounterVec

	// Verdicts by tier and degraded flag
	VerdictTotal *prometheus.CounterVec

	// Overall verification latency
	VerifyLatency prometheus.Histogram

	// Batch registration outcomes by result
	RegistrationTotal *prometheus.CounterVec
}

// New registers the verification metrics on reg. A nil reg uses the
// default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		EvidenceLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pharmaguard_evidence_duration_seconds",
			Help:    "Duration of evidence gathering by provider",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"provider"}), // provider: "registry", "ledger", "analyzer"

		FallbackTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pharmaguard_evidence_fallback_total",
			Help: "Provider results served from the fallback path",
		}, []string{"provider"}),

		VerdictTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pharmaguard_verdicts_total",
			Help: "Verification verdicts by tier",
		}, []string{"verdict", "degraded"}),

		VerifyLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "pharmaguard_verify_duration_seconds",
			Help:    "Duration of a full verification including evidence gathering",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),

		RegistrationTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pharmaguard_batch_registrations_total",
			Help: "Batch registration attempts by outcome",
		}, []string{"outcome"}),
	}
}

// ObserveEvidenceLatency records the duration of fetching evidence from a provider.
func (m *Metrics) ObserveEvidenceLatency(provider string, d time.Duration) {
	if m != nil {
		m.EvidenceLatency.WithLabelValues(provider).Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementFallback(provider string) {
	if m != nil {
		m.FallbackTotal.WithLabelValues(provider).Inc()
	}
}

// IncrementVerdict records a verification verdict.
func (m *Metrics) IncrementVerdict(verdict string, degraded bool) {
	if m != nil {
		label := "false"
		if degraded {
			label = "true"
		}
		m.VerdictTotal.WithLabelValues(verdict, label).Inc()
	}
}

func (m *Metrics) ObserveVerifyLatency(d time.Duration) {
	if m != nil {
		m.VerifyLatency.Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementRegistration(outcome string) {
	if m != nil {
		m.RegistrationTotal.WithLabelValues(outcome).Inc()
	}
}
