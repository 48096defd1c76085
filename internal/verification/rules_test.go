package verification

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmaguard/internal/analyzer"
	"pharmaguard/internal/evidence/providers"
)

func primary(valid bool, confidence float64) providers.Result {
	return providers.Result{Valid: valid, Confidence: confidence, Source: providers.SourcePrimary}
}

func TestAggregate_Scenarios(t *testing.T) {
	tests := []struct {
		name     string
		registry providers.Result
		ledger   providers.Result
		analysis float64
		want     float64
		verdict  Verdict
	}{
		{
			name:     "all sources agree on authentic",
			registry: primary(true, 0.9),
			ledger:   primary(true, 0.95),
			analysis: 0.9,
			want:     0.915,
			verdict:  VerdictSafe,
		},
		{
			name:     "both providers invalid",
			registry: primary(false, 0.9),
			ledger:   primary(false, 0.95),
			analysis: 0.5,
			want:     0.1,
			verdict:  VerdictUnsafe,
		},
		{
			name:     "invalid results contribute nothing however confident",
			registry: primary(false, 1),
			ledger:   primary(true, 1),
			analysis: 1,
			want:     0.5,
			verdict:  VerdictUnsafe,
		},
		{
			name:     "registry and analyzer only",
			registry: primary(true, 0.9),
			ledger:   primary(false, 0.2),
			analysis: 1,
			want:     0.65,
			verdict:  VerdictCaution,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := Aggregate(tt.registry, tt.ledger, analyzer.Result{Confidence: tt.analysis})
			assert.InDelta(t, tt.want, score, 1e-9)
			assert.Equal(t, tt.verdict, Classify(score))
		})
	}
}

func TestAggregate_WeightedSumAndRange(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for range 1000 {
		reg := primary(rng.IntN(2) == 1, rng.Float64())
		led := primary(rng.IntN(2) == 1, rng.Float64())
		an := analyzer.Result{Confidence: rng.Float64()}

		score := Aggregate(reg, led, an)

		want := 0.5*reg.Effective() + 0.3*led.Effective() + 0.2*an.Confidence
		require.InDelta(t, want, score, 1e-12)
		require.GreaterOrEqual(t, score, 0.0)
		require.LessOrEqual(t, score, 1.0)
	}
}

func TestClassify_Thresholds(t *testing.T) {
	assert.Equal(t, VerdictSafe, Classify(1))
	assert.Equal(t, VerdictSafe, Classify(0.8))
	assert.Equal(t, VerdictCaution, Classify(0.7999))
	assert.Equal(t, VerdictCaution, Classify(0.6))
	assert.Equal(t, VerdictUnsafe, Classify(0.5999))
	assert.Equal(t, VerdictUnsafe, Classify(0))
}

func TestClassify_Monotonic(t *testing.T) {
	prev := Classify(0)
	for i := 1; i <= 1000; i++ {
		next := Classify(float64(i) / 1000)
		require.True(t, next.AtLeast(prev), "verdict dropped at score %d/1000", i)
		prev = next
	}
}

func TestGuidance_EveryVerdict(t *testing.T) {
	for _, v := range []Verdict{VerdictSafe, VerdictCaution, VerdictUnsafe} {
		assert.NotEmpty(t, Guidance(v), v)
	}
}

func TestBuildReport(t *testing.T) {
	at := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	evidence := &GatheredEvidence{
		Registry: primary(true, 0.9),
		Ledger:   primary(true, 0.95),
		Analysis: analyzer.Analyze("68180-518-01"),
	}

	report := BuildReport("68180-518-01", evidence, false, at)

	assert.NotEqual(t, [16]byte{}, [16]byte(report.ID))
	assert.Equal(t, "68180-518-01", report.Identifier)
	assert.Equal(t, evidence.Registry, report.Registry())
	assert.Equal(t, evidence.Ledger, report.Ledger())
	assert.InDelta(t, 0.935, report.OverallScore, 1e-9)
	assert.Equal(t, VerdictSafe, report.Verdict)
	assert.Equal(t, Guidance(VerdictSafe), report.Guidance)
	assert.Equal(t, at, report.EvaluatedAt)
}
