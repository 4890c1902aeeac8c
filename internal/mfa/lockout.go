package mfa

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/entativa/eid/internal/cachekv"
	"github.com/entativa/eid/internal/errs"
	"github.com/entativa/eid/internal/store"
)

// Lockout tracks consecutive MFA failures per method and locks it after
// maxFailed, mirroring spec §3's MFAMethod.locked_until field. Counting is
// cache-backed (not DB-backed) so a burst of failed attempts doesn't
// require a write transaction per attempt.
type Lockout struct {
	cache      cachekv.Cache
	repo       *store.MFARepo
	maxFailed  int
	cooldown   time.Duration
}

func NewLockout(cache cachekv.Cache, repo *store.MFARepo, maxFailed int, cooldown time.Duration) *Lockout {
	return &Lockout{cache: cache, repo: repo, maxFailed: maxFailed, cooldown: cooldown}
}

// RecordFailure increments the failure counter for methodID and locks the
// method once maxFailed is reached within cooldown.
func (l *Lockout) RecordFailure(ctx context.Context, method *store.MFAMethod) error {
	key := cachekv.PrefixMFALockout + method.ID.String()
	count, err := l.cache.IncrWithTTL(ctx, key, l.cooldown)
	if err != nil {
		return err
	}
	method.FailedCounter = int(count)
	if int(count) >= l.maxFailed {
		until := time.Now().UTC().Add(l.cooldown)
		method.LockedUntil = &until
	}
	return l.repo.UpdateMethod(ctx, method)
}

// RecordSuccess clears the failure counter and any lock on methodID.
func (l *Lockout) RecordSuccess(ctx context.Context, methodID uuid.UUID, method *store.MFAMethod) error {
	_ = l.cache.Delete(ctx, cachekv.PrefixMFALockout+methodID.String())
	method.FailedCounter = 0
	method.LockedUntil = nil
	method.UseCount++
	return l.repo.UpdateMethod(ctx, method)
}

// CheckLocked returns an AccountLocked-family error if method is currently
// within its lockout window.
func CheckLocked(method *store.MFAMethod) error {
	if method.LockedUntil != nil && time.Now().UTC().Before(*method.LockedUntil) {
		return errs.New(errs.AccountLocked, "mfa method temporarily locked after repeated failures")
	}
	return nil
}
