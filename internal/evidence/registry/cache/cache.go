// Package cache fronts a registry client with a lookup cache.
package cache

import (
	"context"
	"errors"
	"log/slog"

	"pharmaguard/internal/evidence/registry"
	"pharmaguard/pkg/platform/sentinel"
)

// Store holds registry lookups by NDC. FindLookup reports a miss as
// sentinel.ErrNotFound.
type Store interface {
	FindLookup(ctx context.Context, code string) ([]registry.DrugRecord, error)
	SaveLookup(ctx context.Context, code string, records []registry.DrugRecord) error
}

// Client implements registry.Client by consulting store before the
// wrapped client. Only successful lookups with records are cached, and
// cache failures never fail a lookup.
type Client struct {
	next   registry.Client
	store  Store
	logger *slog.Logger
}

// New wraps next with store. A nil logger discards cache warnings.
func New(next registry.Client, store Store, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{next: next, store: store, logger: logger}
}

// LookupNDC returns cached records when fresh, otherwise queries the
// registry and caches what it finds.
func (c *Client) LookupNDC(ctx context.Context, code string) ([]registry.DrugRecord, error) {
	records, err := c.store.FindLookup(ctx, code)
	if err == nil {
		return records, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		c.logger.WarnContext(ctx, "registry cache read failed", "error", err)
	}

	records, err = c.next.LookupNDC(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := c.store.SaveLookup(ctx, code, records); err != nil {
		c.logger.WarnContext(ctx, "registry cache write failed", "error", err)
	}
	return records, nil
}
