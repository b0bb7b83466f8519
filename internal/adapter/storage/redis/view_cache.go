package redis

import (
	"context"
	"fmt"
	"time"

	"finance-tracker/internal/core/domain"

	goredis "github.com/redis/go-redis/v9"
)

// viewNames enumerates every cached view kind. InvalidateScope derives the
// keys to drop from this list, so any new cached view must be added here.
var viewNames = []string{"dashboard", "transactions"}

// ViewCache implements ports.ViewCache using Redis. Keys are namespaced by
// view kind and scope owner: "dashboard:user:<id>", "transactions:org:<id>".
type ViewCache struct {
	client *goredis.Client
}

// NewViewCache creates a new Redis-backed view cache.
func NewViewCache(client *goredis.Client) *ViewCache {
	return &ViewCache{client: client}
}

// Get retrieves a cached view. Returns nil, nil on miss.
func (c *ViewCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis view get: %w", err)
	}
	return val, nil
}

// Set stores a view with TTL.
func (c *ViewCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis view set: %w", err)
	}
	return nil
}

// InvalidateScope drops every cached view belonging to the scope.
func (c *ViewCache) InvalidateScope(ctx context.Context, scope domain.Scope) error {
	owner := scope.OwnerKey()
	keys := make([]string, 0, len(viewNames))
	for _, name := range viewNames {
		keys = append(keys, name+":"+owner)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis view invalidate: %w", err)
	}
	return nil
}
