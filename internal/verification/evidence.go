package verification

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"pharmaguard/internal/analyzer"
	"pharmaguard/internal/evidence/providers"
	"pharmaguard/internal/verification/ports"
)

// GatheredEvidence holds the three independent evidence results for one
// identifier together with how long each took.
type GatheredEvidence struct {
	Registry  providers.Result
	Ledger    providers.Result
	Analysis  analyzer.Result
	Latencies EvidenceLatencies
}

// EvidenceLatencies tracks per-source fetch duration.
type EvidenceLatencies struct {
	Registry time.Duration
	Ledger   time.Duration
	Analyzer time.Duration
}

// gatherEvidence runs the registry, ledger and analyzer concurrently. None of
// the calls can fail, so the group never cancels a sibling; each provider
// applies its own timeout.
func (s *Service) gatherEvidence(ctx context.Context, identifier string) *GatheredEvidence {
	evidence := &GatheredEvidence{}
	var g errgroup.Group

	g.Go(func() error {
		evidence.Registry, evidence.Latencies.Registry = s.fetch(ctx, s.registry, identifier)
		return nil
	})

	g.Go(func() error {
		evidence.Ledger, evidence.Latencies.Ledger = s.fetch(ctx, s.ledger, identifier)
		return nil
	})

	g.Go(func() error {
		start := s.now()
		evidence.Analysis = analyzer.Analyze(identifier)
		evidence.Latencies.Analyzer = s.now().Sub(start)
		s.metrics.ObserveEvidenceLatency("analyzer", evidence.Latencies.Analyzer)
		return nil
	})

	_ = g.Wait()
	return evidence
}

func (s *Service) fetch(ctx context.Context, p ports.EvidenceProvider, identifier string) (providers.Result, time.Duration) {
	ctx, span := s.tracer.Start(ctx, "evidence."+p.Name(), trace.WithAttributes(
		attribute.String("provider", p.Name()),
	))
	defer span.End()

	start := s.now()
	result := p.Fetch(ctx, identifier)
	elapsed := s.now().Sub(start)

	span.SetAttributes(
		attribute.String("source", string(result.Source)),
		attribute.Bool("valid", result.Valid),
		attribute.Float64("confidence", result.Confidence),
	)
	s.metrics.ObserveEvidenceLatency(p.Name(), elapsed)
	if result.Source == providers.SourceFallback {
		s.metrics.IncrementFallback(p.Name())
	}

	if err := result.Validate(); err != nil {
		s.logger.WarnContext(ctx, "provider returned malformed result",
			"provider", p.Name(),
			"error", err,
		)
		result = clampResult(result)
	}
	return result, elapsed
}

// clampResult forces a malformed provider result back into range so the
// overall score stays in [0, 1].
func clampResult(r providers.Result) providers.Result {
	r.Confidence = min(max(r.Confidence, 0), 1)
	if r.Source != providers.SourcePrimary && r.Source != providers.SourceFallback {
		r.Source = providers.SourceFallback
	}
	return r
}
