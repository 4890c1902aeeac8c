package identity

import (
	"context"
	"time"

	"github.com/entativa/eid/internal/errs"
	"github.com/entativa/eid/internal/store"
)

// AccountLockout tracks consecutive failed login attempts on the Identity
// row itself (spec §4.9), distinct from mfa.Lockout's per-method,
// cache-backed counter: a login lockout must survive past the MFA step and
// is checked before a password is ever compared.
type AccountLockout struct {
	identities *store.IdentityRepo
	maxAttempts int
	duration    time.Duration
}

func NewAccountLockout(identities *store.IdentityRepo, maxAttempts int, duration time.Duration) *AccountLockout {
	return &AccountLockout{identities: identities, maxAttempts: maxAttempts, duration: duration}
}

// Check returns errs.AccountLocked if id is currently within its lockout
// window.
func (l *AccountLockout) Check(id *store.Identity) error {
	if id.LockedUntil != nil && time.Now().UTC().Before(*id.LockedUntil) {
		return errs.New(errs.AccountLocked, "account temporarily locked after repeated failed logins")
	}
	return nil
}

// RecordFailure increments id's failure counter and locks the account once
// maxAttempts is reached.
func (l *AccountLockout) RecordFailure(ctx context.Context, id *store.Identity) error {
	id.FailedLoginAttempts++
	if id.FailedLoginAttempts >= l.maxAttempts {
		until := time.Now().UTC().Add(l.duration)
		id.LockedUntil = &until
	}
	id.UpdatedAt = time.Now().UTC()
	return l.identities.Update(ctx, id)
}

// RecordSuccess clears the failure counter and any lock on a successful login.
func (l *AccountLockout) RecordSuccess(ctx context.Context, id *store.Identity) error {
	if id.FailedLoginAttempts == 0 && id.LockedUntil == nil {
		return nil
	}
	id.FailedLoginAttempts = 0
	id.LockedUntil = nil
	id.UpdatedAt = time.Now().UTC()
	return l.identities.Update(ctx, id)
}
