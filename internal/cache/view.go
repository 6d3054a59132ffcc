package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/crud_template/internal/logging"
)

// ViewCache stores JSON encoded values of type T under prefix:key. A nil
// client turns every call into a miss or a no-op, and Redis failures are only
// logged so a broken cache never fails a request.
type ViewCache[T any] struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

func NewViewCache[T any](client redis.Cmdable, prefix string, ttl time.Duration) *ViewCache[T] {
	return &ViewCache[T]{client: client, prefix: prefix, ttl: ttl}
}

func (c *ViewCache[T]) Enabled() bool {
	return c != nil && c.client != nil
}

func (c *ViewCache[T]) Key(key string) string {
	return c.prefix + ":" + key
}

func (c *ViewCache[T]) Get(ctx context.Context, key string) (*T, bool) {
	if !c.Enabled() {
		return nil, false
	}
	data, err := c.client.Get(ctx, c.Key(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logging.FromContext(ctx).Warn("cache_read_failed", "key", c.Key(key), "error", err)
		}
		return nil, false
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		logging.FromContext(ctx).Warn("cache_decode_failed", "key", c.Key(key), "error", err)
		return nil, false
	}
	return &v, true
}

func (c *ViewCache[T]) Set(ctx context.Context, key string, value *T) {
	if !c.Enabled() || value == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		logging.FromContext(ctx).Warn("cache_encode_failed", "key", c.Key(key), "error", err)
		return
	}
	if err := c.client.Set(ctx, c.Key(key), data, c.ttl).Err(); err != nil {
		logging.FromContext(ctx).Warn("cache_write_failed", "key", c.Key(key), "error", err)
	}
}

func (c *ViewCache[T]) Delete(ctx context.Context, keys ...string) {
	if !c.Enabled() || len(keys) == 0 {
		return
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.Key(k)
	}
	if err := c.client.Del(ctx, full...).Err(); err != nil {
		logging.FromContext(ctx).Warn("cache_delete_failed", "keys", full, "error", err)
	}
}
