package ledger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"pharmaguard/internal/evidence/providers"
	"pharmaguard/pkg/platform/sentinel"
)

const defaultTimeout = 5 * time.Second

// Provider checks identifiers against the ledger contract. Until Connect
// succeeds every Fetch is answered from the local registered set.
type Provider struct {
	client     Client
	registered []string
	timeout    time.Duration
	logger     *slog.Logger
	now        func() time.Time

	connected atomic.Bool
}

// Option configures a Provider.
type Option func(*Provider)

// WithRegistered replaces the fallback registered set.
func WithRegistered(fragments []string) Option {
	return func(p *Provider) {
		p.registered = fragments
	}
}

// WithTimeout bounds each ledger call.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithLogger sets the provider logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithClock overrides the witness timestamp source.
func WithClock(now func() time.Time) Option {
	return func(p *Provider) {
		if now != nil {
			p.now = now
		}
	}
}

// NewProvider builds a ledger provider around client. A nil client can
// never connect.
func NewProvider(client Client, opts ...Option) *Provider {
	p := &Provider{
		client:     client,
		registered: DefaultRegistered,
		timeout:    defaultTimeout,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name implements providers.Provider.
func (p *Provider) Name() string {
	return providers.NameLedger
}

// Connect establishes ledger connectivity by pinging the contract.
func (p *Provider) Connect(ctx context.Context) error {
	if p.client == nil {
		return fmt.Errorf("ledger client: %w", sentinel.ErrNotConfigured)
	}

	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.client.Ping(callCtx); err != nil {
		p.connected.Store(false)
		return providers.Classify(p.Name(), err)
	}
	p.connected.Store(true)
	return nil
}

// Connected reports whether Connect succeeded.
func (p *Provider) Connected() bool {
	return p.connected.Load()
}

// Fetch implements providers.Provider.
func (p *Provider) Fetch(ctx context.Context, identifier string) providers.Result {
	if !p.Connected() {
		return lookupFallback(p.registered, identifier)
	}

	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	auth, err := p.client.VerifyAuthenticity(callCtx, Witness{
		BatchID:   identifier,
		Timestamp: p.now().UnixMilli(),
	})
	if err != nil {
		pe := providers.Classify(p.Name(), err)
		if pe.Category == providers.ErrorNotFound {
			return providers.Result{
				Valid:      false,
				Confidence: confidenceNotAuthentic,
				Reason:     reasonNotOnLedger,
				OnChain:    true,
				Source:     providers.SourcePrimary,
			}
		}
		p.logger.WarnContext(ctx, "ledger verification failed, using fallback",
			"category", pe.Category,
			"error", err,
		)
		return lookupFallback(p.registered, identifier)
	}

	result := providers.Result{
		Valid:      auth.Authenticated,
		Confidence: confidenceNotAuthentic,
		OnChain:    true,
		Proof:      auth.Proof,
		Source:     providers.SourcePrimary,
	}
	if auth.Authenticated {
		result.Confidence = confidenceAuthentic
	} else {
		result.Reason = reasonNotAuthentic
	}
	return result
}

// Submit registers a batch witness on the ledger. It requires a prior
// successful Connect.
func (p *Provider) Submit(ctx context.Context, w BatchWitness) (Submission, error) {
	if !p.Connected() {
		return Submission{}, fmt.Errorf("ledger not connected: %w", sentinel.ErrUnavailable)
	}

	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	sub, err := p.client.RegisterBatch(callCtx, w)
	if err != nil {
		return Submission{}, providers.Classify(p.Name(), err)
	}
	return sub, nil
}
