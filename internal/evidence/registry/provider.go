package registry

import (
	"context"
	"io"
	"log/slog"
	"time"

	"pharmaguard/internal/evidence/providers"
	"pharmaguard/pkg/platform/circuit"
)

const defaultTimeout = 5 * time.Second

// Provider checks identifiers against a public drug registry and falls back
// to a local table of known codes when the registry cannot answer.
type Provider struct {
	client  Client
	breaker *circuit.Breaker
	table   []KnownCode
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures a Provider.
type Option func(*Provider)

// WithBreaker short-circuits the registry while it keeps failing.
func WithBreaker(b *circuit.Breaker) Option {
	return func(p *Provider) {
		p.breaker = b
	}
}

// WithKnownCodes replaces the fallback table.
func WithKnownCodes(table []KnownCode) Option {
	return func(p *Provider) {
		p.table = table
	}
}

// WithTimeout bounds each registry call.
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

// NewProvider builds a registry provider. A nil client leaves only the
// fallback path.
func NewProvider(client Client, opts ...Option) *Provider {
	p := &Provider{
		client:  client,
		table:   DefaultKnownCodes,
		timeout: defaultTimeout,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name implements providers.Provider.
func (p *Provider) Name() string {
	return providers.NameRegistry
}

// Fetch implements providers.Provider.
func (p *Provider) Fetch(ctx context.Context, identifier string) providers.Result {
	code := ExtractCode(identifier)

	if p.client == nil {
		return lookupFallback(p.table, identifier, code)
	}
	if p.breaker != nil && !p.breaker.Allow() {
		p.logger.DebugContext(ctx, "registry circuit open, using fallback",
			"registry_code", code,
		)
		return lookupFallback(p.table, identifier, code)
	}

	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	records, err := p.client.LookupNDC(callCtx, code)
	if err != nil {
		// A caller that went away says nothing about registry health.
		if ctx.Err() != nil {
			p.logger.DebugContext(ctx, "registry lookup abandoned by caller",
				"registry_code", code,
				"error", ctx.Err(),
			)
			return lookupFallback(p.table, identifier, code)
		}

		pe := providers.Classify(p.Name(), err)
		if pe.Category == providers.ErrorNotFound {
			p.recordSuccess(ctx)
			return providers.Result{
				Valid:        false,
				Confidence:   confidenceNotFound,
				Reason:       reasonNotFound,
				RegistryCode: code,
				Source:       providers.SourcePrimary,
			}
		}

		p.recordFailure(ctx)
		p.logger.WarnContext(ctx, "registry unavailable, using fallback",
			"registry_code", code,
			"category", pe.Category,
			"error", err,
		)
		return lookupFallback(p.table, identifier, code)
	}

	p.recordSuccess(ctx)
	if len(records) == 0 {
		p.logger.InfoContext(ctx, "registry returned no records, using fallback",
			"registry_code", code,
		)
		return lookupFallback(p.table, identifier, code)
	}

	drug := records[0]
	return providers.Result{
		Valid:        true,
		Confidence:   confidenceFound,
		DrugName:     drug.DisplayName(),
		Manufacturer: drug.LabelerName,
		RegistryCode: code,
		Source:       providers.SourcePrimary,
	}
}

func (p *Provider) recordFailure(ctx context.Context) {
	if p.breaker == nil {
		return
	}
	if _, change := p.breaker.RecordFailure(); change.Opened {
		p.logger.WarnContext(ctx, "registry circuit opened", "breaker", p.breaker.Name())
	}
}

func (p *Provider) recordSuccess(ctx context.Context) {
	if p.breaker == nil {
		return
	}
	if _, change := p.breaker.RecordSuccess(); change.Closed {
		p.logger.InfoContext(ctx, "registry circuit closed", "breaker", p.breaker.Name())
	}
}
