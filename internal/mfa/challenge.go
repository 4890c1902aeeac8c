package mfa

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/google/uuid"

	"github.com/entativa/eid/internal/errs"
	"github.com/entativa/eid/internal/store"
)

// ChallengeTTL is the default MFA challenge lifetime (spec §6, "5m").
const ChallengeTTL = 5 * time.Minute

// ChallengeManager issues and verifies single-use MFA challenges (spec §3/§4.5).
type ChallengeManager struct {
	repo        *store.MFARepo
	maxAttempts int
}

func NewChallengeManager(repo *store.MFARepo, maxAttempts int) *ChallengeManager {
	return &ChallengeManager{repo: repo, maxAttempts: maxAttempts}
}

// Issue creates a pending challenge. For SMS/email methods, codeHash is the
// hash of the just-sent code; for TOTP/hardware-key methods there is no
// server-issued code, so codeHash is nil and VerifyTOTP/hardware assertion
// handles the check directly.
func (c *ChallengeManager) Issue(ctx context.Context, identityID, methodID uuid.UUID, purpose store.ChallengePurpose, codeHash *string) (*store.MFAChallenge, error) {
	now := time.Now().UTC()
	ch := &store.MFAChallenge{
		ID:          uuid.New(),
		IdentityID:  identityID,
		MethodID:    methodID,
		Purpose:     purpose,
		CodeHash:    codeHash,
		IssuedAt:    now,
		ExpiresAt:   now.Add(ChallengeTTL),
		MaxAttempts: c.maxAttempts,
		Status:      store.ChallengePending,
	}
	if err := c.repo.CreateChallenge(ctx, ch); err != nil {
		return nil, err
	}
	return ch, nil
}

// VerifyCode checks a submitted code against the challenge's stored hash,
// consuming an attempt and transitioning status on success, exhaustion, or
// expiry (spec §3 status enum: pending, consumed, expired, failed).
func (c *ChallengeManager) VerifyCode(ctx context.Context, ch *store.MFAChallenge, submittedHash string) error {
	if ch.Status != store.ChallengePending {
		return errs.New(errs.MFAFailed, "challenge is not pending")
	}
	if time.Now().UTC().After(ch.ExpiresAt) {
		ch.Status = store.ChallengeExpired
		_ = c.repo.UpdateChallenge(ctx, ch)
		return errs.New(errs.MFAFailed, "challenge expired")
	}

	ch.Attempts++
	if ch.CodeHash == nil || subtle.ConstantTimeCompare([]byte(*ch.CodeHash), []byte(submittedHash)) != 1 {
		if ch.Attempts >= ch.MaxAttempts {
			ch.Status = store.ChallengeFailed
		}
		if err := c.repo.UpdateChallenge(ctx, ch); err != nil {
			return err
		}
		return errs.New(errs.MFAFailed, "invalid code")
	}

	ch.Status = store.ChallengeConsumed
	return c.repo.UpdateChallenge(ctx, ch)
}

// Consume marks a challenge consumed directly, for methods (TOTP, hardware
// key) whose verification happens outside the code-hash comparison above.
func (c *ChallengeManager) Consume(ctx context.Context, ch *store.MFAChallenge) error {
	if ch.Status != store.ChallengePending {
		return errs.New(errs.MFAFailed, "challenge is not pending")
	}
	ch.Status = store.ChallengeConsumed
	return c.repo.UpdateChallenge(ctx, ch)
}
