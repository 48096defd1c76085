package verification

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"pharmaguard/internal/verification/metrics"
	"pharmaguard/internal/verification/ports"
	dErrors "pharmaguard/pkg/domain-errors"
	"pharmaguard/pkg/platform/audit"
	"pharmaguard/pkg/requestcontext"
)

const (
	defaultBulkConcurrency = 4
	tracerName             = "pharmaguard/verification"
)

// Service fuses registry, ledger and pattern evidence into a verdict, and
// submits new batches to the ledger.
//
// Engine state is written once by Init and read lock-free afterwards, so a
// Service is safe for concurrent use.
type Service struct {
	registry ports.EvidenceProvider
	ledger   ports.EvidenceProvider
	conn     ports.LedgerConnector

	logger          *slog.Logger
	metrics         *metrics.Metrics
	auditor         ports.AuditPublisher
	tracer          trace.Tracer
	now             func() time.Time
	bulkConcurrency int

	initMu sync.Mutex
	state  atomic.Pointer[State]
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithAuditPublisher emits verification and registration events.
func WithAuditPublisher(p ports.AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = p
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithClock overrides the time source used for report timestamps and
// latency measurement.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithBulkConcurrency bounds how many verifications VerifyMany runs at once.
func WithBulkConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.bulkConcurrency = n
		}
	}
}

// New creates a Service. Both evidence providers are required. A nil
// connector leaves the engine permanently degraded.
func New(registry, ledger ports.EvidenceProvider, conn ports.LedgerConnector, opts ...Option) (*Service, error) {
	if registry == nil {
		return nil, errors.New("registry provider is required")
	}
	if ledger == nil {
		return nil, errors.New("ledger provider is required")
	}

	s := &Service{
		registry:        registry,
		ledger:          ledger,
		conn:            conn,
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer:          otel.Tracer(tracerName),
		now:             time.Now,
		bulkConcurrency: defaultBulkConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.state.Store(&State{Lifecycle: LifecycleUninitialized})
	return s, nil
}

// Init moves the engine to READY, connecting the ledger if it can. A
// connection failure only leaves the engine degraded; Init never fails.
// Calling Init again returns the existing state.
func (s *Service) Init(ctx context.Context) State {
	s.initMu.Lock()
	defer s.initMu.Unlock()

	if current := s.state.Load(); current.Ready() {
		return *current
	}

	next := State{Lifecycle: LifecycleReady, InitializedAt: s.now()}
	if s.conn == nil {
		s.logger.WarnContext(ctx, "no ledger connector configured, running degraded")
	} else if err := s.conn.Connect(ctx); err != nil {
		s.logger.WarnContext(ctx, "ledger connection failed, running degraded",
			"error", err,
		)
	} else {
		next.LedgerConnected = true
	}

	s.state.Store(&next)
	s.logger.InfoContext(ctx, "verification engine ready",
		"ledger_connected", next.LedgerConnected,
	)
	return next
}

// State returns a snapshot of the engine state.
func (s *Service) State() State {
	return *s.state.Load()
}

// Verify produces a Report for identifier. Provider failures never surface;
// the only error is a validation error for an empty identifier.
func (s *Service) Verify(ctx context.Context, identifier string) (*Report, error) {
	if strings.TrimSpace(identifier) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "identifier is required")
	}

	ctx, span := s.tracer.Start(ctx, "verification.Verify")
	defer span.End()

	start := s.now()
	state := s.State()
	evidence := s.gatherEvidence(ctx, identifier)
	report := BuildReport(identifier, evidence, state.Degraded(), s.now())

	s.metrics.ObserveVerifyLatency(s.now().Sub(start))
	s.metrics.IncrementVerdict(string(report.Verdict), report.Degraded)
	span.SetAttributes(
		attribute.String("verdict", string(report.Verdict)),
		attribute.Float64("score", report.OverallScore),
		attribute.Bool("degraded", report.Degraded),
	)

	s.logger.InfoContext(ctx, "verification completed",
		"request_id", requestcontext.RequestID(ctx),
		"report_id", report.ID,
		"verdict", report.Verdict,
		"score", report.OverallScore,
		"registry_source", evidence.Registry.Source,
		"ledger_source", evidence.Ledger.Source,
		"degraded", report.Degraded,
	)

	event := audit.NewEvent(audit.EventVerificationCompleted)
	event.SubjectIDHash = audit.HashIdentifier(identifier)
	event.Decision = string(report.Verdict)
	event.Score = report.OverallScore
	event.Degraded = report.Degraded
	s.emitAudit(ctx, event)

	return report, nil
}

// VerifyMany verifies identifiers with bounded concurrency. Reports are
// returned in input order. Every identifier is validated before any work
// starts.
func (s *Service) VerifyMany(ctx context.Context, identifiers []string) ([]*Report, error) {
	for i, identifier := range identifiers {
		if strings.TrimSpace(identifier) == "" {
			return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("identifiers[%d] is empty", i))
		}
	}

	reports := make([]*Report, len(identifiers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.bulkConcurrency)

	for i, identifier := range identifiers {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			report, err := s.Verify(gctx, identifier)
			if err != nil {
				return err
			}
			reports[i] = report
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "bulk verification cancelled")
		}
		return nil, err
	}
	return reports, nil
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	event.RequestID = requestcontext.RequestID(ctx)
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed",
			"action", event.Action,
			"error", err,
		)
	}
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
