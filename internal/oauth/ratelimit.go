package oauth

import (
	"context"
	"time"

	"github.com/entativa/eid/internal/cachekv"
	"github.com/entativa/eid/internal/errs"
)

// RateLimiter throttles the token and authorize endpoints per identity/IP/
// client, grounded on pkg/gourdiantoken-master's Redis TTL-key idiom
// (`revoked:*` prefix keys with an expiry) applied to a sliding counter
// instead of a revocation flag.
type RateLimiter struct {
	cache cachekv.Cache
}

func NewRateLimiter(cache cachekv.Cache) *RateLimiter {
	return &RateLimiter{cache: cache}
}

// Allow increments the per-minute counter for key and rejects once limit is
// exceeded within the current minute window.
func (r *RateLimiter) Allow(ctx context.Context, key string, limitPerMinute int) error {
	count, err := r.cache.IncrWithTTL(ctx, cachekv.PrefixRateLimit+key, time.Minute)
	if err != nil {
		return err
	}
	if int(count) > limitPerMinute {
		return errs.New(errs.RateLimited, "rate limit exceeded")
	}
	return nil
}
