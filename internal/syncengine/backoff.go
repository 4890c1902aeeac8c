package syncengine

import (
	"math"
	"math/rand"
	"time"
)

// Backoff computes retry delays per spec §4.8: exponential with jitter,
// base and cap configurable (defaults 2s / 10min).
type Backoff struct {
	Base time.Duration
	Cap  time.Duration
}

func NewBackoff(baseMs, capMs int) Backoff {
	return Backoff{Base: time.Duration(baseMs) * time.Millisecond, Cap: time.Duration(capMs) * time.Millisecond}
}

// Next returns the delay before attempt number attempt (1-indexed),
// full-jitter: a uniform random value in [0, min(cap, base*2^attempt)].
func (b Backoff) Next(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	exp := float64(b.Base) * math.Pow(2, float64(attempt-1))
	if exp > float64(b.Cap) || math.IsInf(exp, 1) {
		exp = float64(b.Cap)
	}
	return time.Duration(rand.Int63n(int64(exp) + 1))
}
