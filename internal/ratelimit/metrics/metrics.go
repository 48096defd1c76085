package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Decisions      *prometheus.CounterVec
	StoreErrors    prometheus.Counter
	FallbackActive prometheus.Gauge
}

// New registers the rate limit metrics on reg, or on the default registerer
// when reg is nil.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		Decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pharmaguard_ratelimit_decisions_total",
			Help: "Rate limit decisions by outcome",
		}, []string{"outcome"}), // outcome: "allowed", "denied", "failed_open"
		StoreErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "pharmaguard_ratelimit_store_errors_total",
			Help: "Errors returned by the primary rate limit store",
		}),
		FallbackActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "pharmaguard_ratelimit_fallback_active",
			Help: "1 while the in-memory fallback limiter is serving requests",
		}),
	}
}

func (m *Metrics) IncrementDecision(outcome string) {
	if m == nil {
		return
	}
	m.Decisions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementStoreErrors() {
	if m == nil {
		return
	}
	m.StoreErrors.Inc()
}

func (m *Metrics) SetFallbackActive(active bool) {
	if m == nil {
		return
	}
	if active {
		m.FallbackActive.Set(1)
		return
	}
	m.FallbackActive.Set(0)
}
