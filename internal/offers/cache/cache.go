// Package cache provides a Redis read-through layer in front of an offer
// store, so catalog reads on every match call do not hammer Postgres.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"healthcred/internal/offers"
	id "healthcred/pkg/domain"
)

const catalogKey = "offers:catalog"

// Store is the subset of the offer store the cache fronts.
type Store interface {
	List(ctx context.Context) ([]offers.Offer, error)
	Find(ctx context.Context, offerID id.OfferID) (*offers.Offer, error)
}

// CachedStore fronts a Store with a Redis catalog cache. The catalog changes
// rarely, so a short TTL keeps reads cheap without an invalidation protocol.
type CachedStore struct {
	inner  Store
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// New constructs a read-through cache over inner.
func New(inner Store, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedStore {
	return &CachedStore{inner: inner, client: client, ttl: ttl, logger: logger}
}

func (c *CachedStore) List(ctx context.Context) ([]offers.Offer, error) {
	cached, err := c.client.Get(ctx, catalogKey).Bytes()
	if err == nil {
		var catalog []offers.Offer
		if err := json.Unmarshal(cached, &catalog); err == nil {
			return catalog, nil
		}
		// A corrupt entry falls through to the inner store and is rewritten.
		c.logger.Warn("discarding corrupt catalog cache entry")
	} else if !errors.Is(err, redis.Nil) {
		// Redis being down must not take offer matching down with it.
		c.logger.Warn("catalog cache read failed", "error", err)
	}

	catalog, err := c.inner.List(ctx)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(catalog); err == nil {
		if err := c.client.Set(ctx, catalogKey, encoded, c.ttl).Err(); err != nil {
			c.logger.Warn("catalog cache write failed", "error", err)
		}
	}
	return catalog, nil
}

func (c *CachedStore) Find(ctx context.Context, offerID id.OfferID) (*offers.Offer, error) {
	catalog, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range catalog {
		if catalog[i].ID == offerID {
			return &catalog[i], nil
		}
	}
	return c.inner.Find(ctx, offerID)
}

// Invalidate drops the cached catalog, forcing the next read through.
func (c *CachedStore) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, catalogKey).Err(); err != nil {
		return fmt.Errorf("invalidate catalog cache: %w", err)
	}
	return nil
}
