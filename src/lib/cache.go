package lib

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RoleCache caches role permission sets with an injected TTL and clock so
// staleness is a construction-time decision, not a module-level constant.
type RoleCache struct {
	rdb *redis.Client
	ttl time.Duration
	now func() time.Time
}

func NewRoleCache(rdb *redis.Client, ttl time.Duration, now func() time.Time) *RoleCache {
	if now == nil {
		now = time.Now
	}
	return &RoleCache{rdb: rdb, ttl: ttl, now: now}
}

func roleKey(role string) string {
	return fmt.Sprintf("roles:%s:permissions", role)
}

func (c *RoleCache) Get(ctx context.Context, role string) ([]string, bool, error) {
	if c.rdb == nil {
		return nil, false, nil
	}
	val, err := c.rdb.Get(ctx, roleKey(role)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var perms []string
	if err := json.Unmarshal([]byte(val), &perms); err != nil {
		return nil, false, err
	}
	return perms, true, nil
}

func (c *RoleCache) Set(ctx context.Context, role string, perms []string) error {
	if c.rdb == nil {
		return nil
	}
	raw, err := json.Marshal(perms)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, roleKey(role), raw, c.ttl).Err()
}
