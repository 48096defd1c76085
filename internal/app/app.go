// Package app wires configuration into a running verification engine and
// its HTTP surface. Both the server and the CLI build on it.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"pharmaguard/internal/evidence/ledger"
	"pharmaguard/internal/evidence/registry"
	registrycache "pharmaguard/internal/evidence/registry/cache"
	registrystore "pharmaguard/internal/evidence/registry/store"
	httpapi "pharmaguard/internal/http"
	jwttoken "pharmaguard/internal/jwt_token"
	"pharmaguard/internal/platform/config"
	"pharmaguard/internal/platform/logger"
	"pharmaguard/internal/platform/metrics"
	platformredis "pharmaguard/internal/platform/redis"
	rlmetrics "pharmaguard/internal/ratelimit/metrics"
	ratelimitmw "pharmaguard/internal/ratelimit/middleware"
	"pharmaguard/internal/ratelimit/models"
	"pharmaguard/internal/ratelimit/ports"
	"pharmaguard/internal/ratelimit/store/bucket"
	"pharmaguard/internal/verification"
	"pharmaguard/internal/verification/handler"
	vmetrics "pharmaguard/internal/verification/metrics"
	"pharmaguard/pkg/platform/audit/publisher"
	auditkafka "pharmaguard/pkg/platform/audit/store/kafka"
	auditmemory "pharmaguard/pkg/platform/audit/store/memory"
	"pharmaguard/pkg/platform/circuit"
	"pharmaguard/pkg/platform/middleware/auth"
)

// auditBufferSize bounds events queued for the Kafka audit stream.
const auditBufferSize = 1024

// App holds the wired components.
type App struct {
	Config  config.Config
	Logger  *slog.Logger
	Service *verification.Service
	Router  http.Handler
	Metrics *metrics.Metrics
	// Tokens is nil when no JWT signing key is configured.
	Tokens *jwttoken.JWTService
	// AuditStore is set when audit events stay in memory.
	AuditStore *auditmemory.InMemoryStore

	closers []func() error
}

// Option customises how New builds the App.
type Option func(*options)

type options struct {
	logger     *slog.Logger
	httpClient *http.Client
	now        func() time.Time
}

// WithLogger replaces the logger built from configuration.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithHTTPClient sets the client used for registry and ledger calls.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithClock overrides the engine clock.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New builds every component from cfg. It does not run Init; callers do
// that once they are ready to accept traffic.
func New(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	log := o.logger
	if log == nil {
		log = logger.New(cfg.Log.Level, cfg.Log.Format)
	}

	a := &App{Config: cfg, Logger: log, Metrics: metrics.New()}
	ok := false
	defer func() {
		if !ok {
			_ = a.Close()
		}
	}()

	rdb, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	if rdb != nil {
		a.closers = append(a.closers, rdb.Close)
	}

	auditor, err := a.buildAudit(cfg)
	if err != nil {
		return nil, err
	}

	registryProvider := buildRegistry(cfg, rdb, o.httpClient, log)
	ledgerProvider := ledger.NewProvider(
		ledger.NewGatewayClient(cfg.Ledger.GatewayURL, cfg.Ledger.ContractAddress, o.httpClient, cfg.ProviderTimeout),
		ledger.WithTimeout(cfg.ProviderTimeout),
		ledger.WithLogger(log),
	)

	svcOpts := []verification.Option{
		verification.WithLogger(log),
		verification.WithMetrics(vmetrics.New(a.Metrics.Registry())),
		verification.WithAuditPublisher(auditor),
		verification.WithBulkConcurrency(cfg.BulkConcurrency),
	}
	if o.now != nil {
		svcOpts = append(svcOpts, verification.WithClock(o.now))
	}
	a.Service, err = verification.New(registryProvider, ledgerProvider, ledgerProvider, svcOpts...)
	if err != nil {
		return nil, err
	}

	var validator auth.JWTValidator
	if cfg.Auth.JWTSigningKey != "" {
		a.Tokens = jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer, cfg.Auth.Audience)
		validator = jwttoken.NewJWTServiceAdapter(a.Tokens)
	} else {
		log.Warn("no JWT signing key configured, batch registration endpoint disabled")
	}

	rateLimit, bulkRateLimit := buildRateLimit(cfg, rdb, auditor, a.Metrics, log)
	a.Router = httpapi.NewRouter(httpapi.Deps{
		Verification:   handler.New(a.Service, log),
		RateLimit:      rateLimit,
		BulkRateLimit:  bulkRateLimit,
		TokenValidator: validator,
		Metrics:        a.Metrics,
		TrustProxy:     cfg.Server.TrustProxy,
		Logger:         log,
	})

	ok = true
	return a, nil
}

// Init connects the engine to the ledger. See verification.Service.Init.
func (a *App) Init(ctx context.Context) verification.State {
	state := a.Service.Init(ctx)
	a.Logger.InfoContext(ctx, "verification engine initialized",
		"ledger_connected", state.LedgerConnected,
		"degraded", state.Degraded(),
	)
	return state
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) buildAudit(cfg config.Config) (*publisher.Publisher, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		a.AuditStore = auditmemory.NewInMemoryStore()
		pub := publisher.NewPublisher(a.AuditStore, publisher.WithLogger(a.Logger))
		a.closers = append(a.closers, pub.Close)
		return pub, nil
	}

	stream, err := auditkafka.New(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	if err != nil {
		return nil, fmt.Errorf("audit stream: %w", err)
	}
	a.closers = append(a.closers, func() error {
		stream.Close()
		return nil
	})
	pub := publisher.NewPublisher(stream,
		publisher.WithAsyncBuffer(auditBufferSize),
		publisher.WithSampler(publisher.NewSampler(cfg.Kafka.SampleRate)),
		publisher.WithLogger(a.Logger),
	)
	// Registered after the stream so Close drains the buffer first.
	a.closers = append(a.closers, pub.Close)
	return pub, nil
}

func buildRegistry(cfg config.Config, rdb *platformredis.Client, httpClient *http.Client, log *slog.Logger) *registry.Provider {
	var client registry.Client = registry.NewFDAClient(cfg.Registry.URL, httpClient, cfg.ProviderTimeout)
	if cfg.Registry.CacheTTL > 0 {
		var store registrycache.Store = registrystore.NewInMemoryCache(cfg.Registry.CacheTTL)
		if rdb != nil {
			store = registrystore.NewRedisCache(rdb.Client, cfg.Registry.CacheTTL)
		}
		client = registrycache.New(client, store, log)
	}

	breaker := circuit.New("registry",
		circuit.WithFailureThreshold(cfg.Registry.FailureThreshold),
		circuit.WithCooldown(cfg.Registry.Cooldown),
	)
	return registry.NewProvider(client,
		registry.WithBreaker(breaker),
		registry.WithTimeout(cfg.ProviderTimeout),
		registry.WithLogger(log),
	)
}

// buildRateLimit returns the single-verification limiter and the bulk
// limiter. A bulk request may carry handler.MaxBulkIdentifiers identifiers,
// so its budget is the per-minute limit divided by that, at least one.
func buildRateLimit(cfg config.Config, rdb *platformredis.Client, auditor ports.AuditPublisher, m *metrics.Metrics, log *slog.Logger) (*ratelimitmw.Middleware, *ratelimitmw.Middleware) {
	var store ports.BucketStore = bucket.New()
	if rdb != nil {
		store = bucket.NewRedis(rdb.Client)
	}
	rlm := rlmetrics.New(m.Registry())

	newMiddleware := func(limit models.Limit) *ratelimitmw.Middleware {
		limiter := ratelimitmw.NewLimiter(store, limit,
			ratelimitmw.WithLimiterLogger(log),
			ratelimitmw.WithLimiterMetrics(rlm),
		)
		return ratelimitmw.New(limiter, log,
			ratelimitmw.WithAuditPublisher(auditor),
			ratelimitmw.WithMetrics(rlm),
		)
	}
	bulkPerMinute := max(1, cfg.RateLimit.PerMinute/handler.MaxBulkIdentifiers)
	return newMiddleware(models.PerMinute(cfg.RateLimit.PerMinute)),
		newMiddleware(models.PerMinute(bulkPerMinute))
}
