package statements

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores assembled statement views in Redis. Statements are immutable
// once generated, so entries only ever expire by TTL.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache helper.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func viewKey(id int64) string {
	return fmt.Sprintf("statements:view:%d", id)
}

// Get loads a cached view. A nil cache or a miss reports ok=false.
func (c *Cache) Get(ctx context.Context, id int64) (View, bool) {
	if c == nil || c.client == nil {
		return View{}, false
	}
	raw, err := c.client.Get(ctx, viewKey(id)).Bytes()
	if err != nil {
		return View{}, false
	}
	var view View
	if err := json.Unmarshal(raw, &view); err != nil {
		return View{}, false
	}
	return view, true
}

// Set stores a view with the configured TTL. Failures are the caller's to log;
// caching is best effort.
func (c *Cache) Set(ctx context.Context, view View) error {
	if c == nil || c.client == nil {
		return nil
	}
	raw, err := json.Marshal(view)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, viewKey(view.ID), raw, c.ttl).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}
