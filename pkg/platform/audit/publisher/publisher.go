// Package publisher fans audit events out to a Store.
//
// Compliance events are written synchronously even in async mode, so a
// failed write surfaces to the caller. Operations events may be sampled and
// are dropped rather than blocking when the async buffer is full.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	audit "pharmaguard/pkg/platform/audit"
)

var (
	ErrBufferFull = errors.New("audit buffer full")
	ErrClosed     = errors.New("audit publisher closed")
)

// Publisher emits audit events to a store, optionally through a bounded
// in-memory buffer drained by a single worker.
type Publisher struct {
	store   audit.Store
	logger  *slog.Logger
	sampler *Sampler
	now     func() time.Time

	bufferSize int
	queue      chan audit.Event
	wg         sync.WaitGroup

	// mu guards closed and sends on queue against Close.
	mu     sync.RWMutex
	closed bool
}

type Option func(*Publisher)

// WithAsyncBuffer enables async delivery through a buffer of n events.
func WithAsyncBuffer(n int) Option {
	return func(p *Publisher) {
		p.bufferSize = n
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithSampler samples operations events. Compliance and security events are
// never sampled.
func WithSampler(s *Sampler) Option {
	return func(p *Publisher) {
		p.sampler = s
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *Publisher) {
		if now != nil {
			p.now = now
		}
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store:  store,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.bufferSize > 0 {
		p.queue = make(chan audit.Event, p.bufferSize)
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

// Emit records an event. A zero Timestamp is set to the publisher clock and
// an empty Category is derived from the action.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Action == "" {
		return fmt.Errorf("audit event requires Action")
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = p.now()
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}
	if event.Category == audit.CategoryOperations && p.sampler != nil && !p.sampler.ShouldSample(event.Action) {
		return nil
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}

	if p.queue == nil || event.Category == audit.CategoryCompliance {
		if err := p.store.Append(ctx, event); err != nil {
			return fmt.Errorf("audit append %s: %w", event.Action, err)
		}
		return nil
	}

	select {
	case p.queue <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		p.logger.WarnContext(ctx, "audit buffer full, dropping event",
			"action", event.Action,
			"category", event.Category,
		)
		return ErrBufferFull
	}
}

// Close stops accepting events and drains anything still buffered. Emit
// after Close returns ErrClosed.
func (p *Publisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	if p.queue != nil {
		close(p.queue)
	}
	p.mu.Unlock()

	p.wg.Wait()
	return nil
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for event := range p.queue {
		if err := p.store.Append(context.Background(), event); err != nil {
			p.logger.Error("audit append failed",
				"action", event.Action,
				"category", event.Category,
				"error", err,
			)
		}
	}
}
