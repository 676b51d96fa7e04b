// Package cache provides a Redis-backed, TTL-bounded cache for asset
// lookups. It is an explicit injected object rather than process-global
// state: the handler wiring constructs it once and hands it to the engine
// as its AssetStore, and invalidation is either TTL expiry or an explicit
// Invalidate call when the inventory system signals a change.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ravshanbk/asset-reservation/internal/engine"
	"github.com/ravshanbk/asset-reservation/internal/model"
)

// AssetCache wraps an engine.AssetStore with read-through caching. A nil
// Redis client degrades to a passthrough, mirroring how the rest of the
// service treats an unreachable Redis.
type AssetCache struct {
	store  engine.AssetStore
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

// NewAssetCache builds the cache. ttl bounds staleness of the reservable
// flag and status; keep it short since those fields gate bookings.
func NewAssetCache(store engine.AssetStore, rdb *redis.Client, ttl time.Duration) *AssetCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &AssetCache{store: store, rdb: rdb, ttl: ttl, prefix: "asset"}
}

func (c *AssetCache) key(id uint64) string { return fmt.Sprintf("%s:%d", c.prefix, id) }

// GetAsset implements engine.AssetStore. Redis failures are treated as
// misses; the underlying store is always authoritative.
func (c *AssetCache) GetAsset(ctx context.Context, id uint64) (*model.Asset, error) {
	if c.rdb == nil {
		return c.store.GetAsset(ctx, id)
	}
	if raw, err := c.rdb.Get(ctx, c.key(id)).Bytes(); err == nil {
		var a model.Asset
		if err := json.Unmarshal(raw, &a); err == nil {
			return &a, nil
		}
	}
	a, err := c.store.GetAsset(ctx, id)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(a); err == nil {
		_ = c.rdb.Set(ctx, c.key(id), raw, c.ttl).Err()
	}
	return a, nil
}

// Invalidate drops the cached entry for an asset. Call it when the
// inventory system reports a status or reservable change.
func (c *AssetCache) Invalidate(ctx context.Context, id uint64) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, c.key(id)).Err()
}
