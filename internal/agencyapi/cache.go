package agencyapi

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/redis/go-redis/v9"

	"agency-workers/internal/common/logger"
)

const cacheKeyPrefix = "ref:"

// Cache keeps reference data in Redis. A nil *Cache or nil client disables
// caching; Redis failures degrade to a miss.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
	log logger.Logger
}

func NewCache(rdb *redis.Client, ttl time.Duration, log logger.Logger) *Cache {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Cache{rdb: rdb, ttl: ttl, log: log}
}

func (c *Cache) enabled() bool { return c != nil && c.rdb != nil && c.ttl > 0 }

// get reports whether resource was found and decoded into dest.
func (c *Cache) get(ctx context.Context, resource string, dest interface{}) bool {
	if !c.enabled() {
		return false
	}
	raw, err := c.rdb.Get(ctx, cacheKeyPrefix+resource).Bytes()
	if err != nil {
		if !stderrors.Is(err, redis.Nil) {
			c.log.Warn("Reference cache read failed", map[string]interface{}{
				"resource": resource,
				"error":    err.Error(),
			})
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		c.log.Warn("Discarding unreadable cache entry", map[string]interface{}{
			"resource": resource,
			"error":    err.Error(),
		})
		return false
	}
	return true
}

func (c *Cache) set(ctx context.Context, resource string, value interface{}) {
	if !c.enabled() {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, cacheKeyPrefix+resource, raw, c.ttl).Err(); err != nil {
		c.log.Warn("Reference cache write failed", map[string]interface{}{
			"resource": resource,
			"error":    err.Error(),
		})
	}
}

// Invalidate drops the cached copies of the given resources.
func (c *Cache) Invalidate(ctx context.Context, resources ...string) error {
	if !c.enabled() || len(resources) == 0 {
		return nil
	}
	keys := make([]string, len(resources))
	for i, r := range resources {
		keys[i] = cacheKeyPrefix + r
	}
	return c.rdb.Del(ctx, keys...).Err()
}
