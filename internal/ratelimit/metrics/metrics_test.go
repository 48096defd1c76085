package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncrementDecision("allowed")
	m.IncrementDecision("allowed")
	m.IncrementDecision("denied")
	m.IncrementStoreErrors()
	m.SetFallbackActive(true)

	assert.InDelta(t, 2, testutil.ToFloat64(m.Decisions.WithLabelValues("allowed")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Decisions.WithLabelValues("denied")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.StoreErrors), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.FallbackActive), 0)

	m.SetFallbackActive(false)
	assert.InDelta(t, 0, testutil.ToFloat64(m.FallbackActive), 0)
}

func TestNilMetricsAreNoOps(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementDecision("allowed")
		m.IncrementStoreErrors()
		m.SetFallbackActive(true)
	})
}
