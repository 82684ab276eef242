package redis

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// ViewCache is a JSON-backed Redis cache for read model projections such as
// account and transaction views. A zero TTL means keys do not expire.
type ViewCache[T any] struct {
	client *goredis.Client
	prefix string
	ttl    time.Duration
}

func NewViewCache[T any](client *goredis.Client, prefix string, ttl time.Duration) *ViewCache[T] {
	return &ViewCache[T]{client: client, prefix: prefix, ttl: ttl}
}

// Get returns (nil, false) on a miss, a Redis error or a value that no longer
// decodes into T. Callers fall back to the source of truth in every case.
func (c *ViewCache[T]) Get(ctx context.Context, id string) (*T, bool) {
	data, err := c.client.Get(ctx, c.prefix+id).Bytes()
	if err != nil {
		return nil, false
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		slog.WarnContext(ctx, "view cache: dropping undecodable entry", "key", c.prefix+id, "error", err)
		c.Delete(ctx, id)
		return nil, false
	}
	return &v, true
}

// Set is best effort: a failed cache write is logged, not returned.
func (c *ViewCache[T]) Set(ctx context.Context, id string, value *T) {
	data, err := json.Marshal(value)
	if err != nil {
		slog.ErrorContext(ctx, "view cache: marshal error", "key", c.prefix+id, "error", err)
		return
	}
	if err := c.client.Set(ctx, c.prefix+id, data, c.ttl).Err(); err != nil {
		slog.WarnContext(ctx, "view cache: write error", "key", c.prefix+id, "error", err)
	}
}

func (c *ViewCache[T]) Delete(ctx context.Context, id string) {
	if err := c.client.Del(ctx, c.prefix+id).Err(); err != nil {
		slog.WarnContext(ctx, "view cache: delete error", "key", c.prefix+id, "error", err)
	}
}
