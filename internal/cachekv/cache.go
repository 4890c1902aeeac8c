// Package cachekv is the cache adapter (C2): a thin, TTL-aware wrapper over
// go-zero's Redis client, generalized from the teacher's
// services/gateway/services/auth/domain/cache.Cache interface (which only
// tracked valid/swappable access tokens) into a general key/value and
// set-membership facade every other component shares.
package cachekv

import (
	"context"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/stores/redis"

	"github.com/entativa/eid/internal/errs"
)

// Default TTLs per spec §4.2.
const (
	HandleValidationTTL = 60 * time.Minute
	AccessTokenTTL      = 5 * time.Minute
	DEKTTL              = 2 * time.Hour
	SessionTTL          = 1 * time.Hour
)

// Cache is the interface every component depends on, never *redis.Redis
// directly, so tests can substitute an in-memory fake.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	AddToSet(ctx context.Context, key, member string) error
	RemoveFromSet(ctx context.Context, key, member string) error
	IsSetMember(ctx context.Context, key, member string) (bool, error)
	InvalidatePrefix(ctx context.Context, prefix string) error
	// IncrWithTTL increments key and, on the first increment (count == 1),
	// sets its TTL — the standard Redis sliding-window counter idiom used
	// by internal/oauth's rate limiter and internal/mfa's lockout counters.
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// RedisCache implements Cache over go-zero's *redis.Redis, the way the
// teacher's auth.Cache wraps it for SismemberCtx/SaddCtx/SremCtx/SetexCtx.
type RedisCache struct {
	rds *redis.Redis
}

func New(rds *redis.Redis) *RedisCache {
	return &RedisCache{rds: rds}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.rds.GetCtx(ctx, key)
	if err != nil {
		return "", false, errs.Newf(errs.TransientError, "cache get %s: %v", key, err)
	}
	return val, val != "", nil
}

func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := c.rds.SetexCtx(ctx, key, value, int(ttl.Seconds())); err != nil {
		return errs.Newf(errs.TransientError, "cache set %s: %v", key, err)
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if _, err := c.rds.DelCtx(ctx, key); err != nil {
		return errs.Newf(errs.TransientError, "cache delete %s: %v", key, err)
	}
	return nil
}

func (c *RedisCache) AddToSet(ctx context.Context, key, member string) error {
	if _, err := c.rds.SaddCtx(ctx, key, member); err != nil {
		return errs.Newf(errs.TransientError, "cache sadd %s: %v", key, err)
	}
	return nil
}

func (c *RedisCache) RemoveFromSet(ctx context.Context, key, member string) error {
	if _, err := c.rds.SremCtx(ctx, key, member); err != nil {
		return errs.Newf(errs.TransientError, "cache srem %s: %v", key, err)
	}
	return nil
}

func (c *RedisCache) IsSetMember(ctx context.Context, key, member string) (bool, error) {
	ok, err := c.rds.SismemberCtx(ctx, key, member)
	if err != nil {
		return false, errs.Newf(errs.TransientError, "cache sismember %s: %v", key, err)
	}
	return ok, nil
}

func (c *RedisCache) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := c.rds.IncrCtx(ctx, key)
	if err != nil {
		return 0, errs.Newf(errs.TransientError, "cache incr %s: %v", key, err)
	}
	if count == 1 {
		if err := c.rds.ExpireCtx(ctx, key, int(ttl.Seconds())); err != nil {
			return count, errs.Newf(errs.TransientError, "cache expire %s: %v", key, err)
		}
	}
	return count, nil
}

// InvalidatePrefix scans for and deletes every key under prefix, grounded
// on pkg/gourdiantoken-master's redis repository SCAN-based cleanup of
// revoked/rotated key prefixes, hand-adapted here since that package is a
// separate Go module and cannot be imported directly.
func (c *RedisCache) InvalidatePrefix(ctx context.Context, prefix string) error {
	var cursor uint64
	for {
		keys, next, err := c.rds.ScanCtx(ctx, cursor, prefix+"*", int64(200))
		if err != nil {
			return errs.Newf(errs.TransientError, "cache scan %s: %v", prefix, err)
		}
		for _, k := range keys {
			if _, err := c.rds.DelCtx(ctx, k); err != nil {
				logx.WithContext(ctx).Errorf("cachekv: delete %s during prefix invalidation: %v", k, err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// Key prefixes shared across components.
const (
	PrefixHandleValid   = "eid:handle:valid:"
	PrefixAccessToken   = "eid:token:access:"
	PrefixSwapToken     = "eid:token:swap:"
	PrefixDEK           = "eid:crypto:dek:"
	PrefixSession       = "eid:session:"
	PrefixRateLimit     = "eid:ratelimit:"
	PrefixMFALockout    = "eid:mfa:lockout:"
	PrefixLoginLockout  = "eid:login:lockout:"
)
