package repo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	cmdrredis "github.com/clinmeta/cmdr-backend/pkg/redis"
)

// KeyValueCache is the subset of the redis client the aggregate cache needs.
type KeyValueCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// AggregateCache is a read-through cache in front of repository UID lookups.
// Loads populate it, mutations invalidate it. Cache failures are swallowed:
// the database remains the source of truth.
type AggregateCache struct {
	kv         KeyValueCache
	entityType string
	ttl        time.Duration
}

// NewAggregateCache builds a cache scoped to one entity type. A nil kv
// client yields a disabled cache that misses on every lookup.
func NewAggregateCache(kv KeyValueCache, entityType string, ttl time.Duration) *AggregateCache {
	return &AggregateCache{kv: kv, entityType: entityType, ttl: ttl}
}

// Get unmarshals the cached payload for uid into dest. Returns false on a
// miss, a disabled cache, or a corrupt entry.
func (c *AggregateCache) Get(ctx context.Context, uid string, dest any) bool {
	if c == nil || c.kv == nil {
		return false
	}
	raw, err := c.kv.Get(ctx, cmdrredis.AggregateKey(c.entityType, uid))
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		_ = c.kv.Del(ctx, cmdrredis.AggregateKey(c.entityType, uid))
		return false
	}
	return true
}

// Put stores the payload for uid with the configured TTL.
func (c *AggregateCache) Put(ctx context.Context, uid string, value any) error {
	if c == nil || c.kv == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.kv.Set(ctx, cmdrredis.AggregateKey(c.entityType, uid), raw, c.ttl)
}

// Invalidate drops the cached payload for uid. Called after every save.
func (c *AggregateCache) Invalidate(ctx context.Context, uid string) error {
	if c == nil || c.kv == nil {
		return nil
	}
	err := c.kv.Del(ctx, cmdrredis.AggregateKey(c.entityType, uid))
	if err != nil && !errors.Is(err, cmdrredis.ErrCacheMiss) {
		return err
	}
	return nil
}
