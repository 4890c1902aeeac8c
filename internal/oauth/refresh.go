package oauth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/entativa/eid/internal/cachekv"
	"github.com/entativa/eid/internal/crypto"
	"github.com/entativa/eid/internal/errs"
	"github.com/entativa/eid/internal/store"
)

// RefreshTTL is the default refresh-token lifetime (spec §6, "720h").
const RefreshTTL = 720 * time.Hour

// RefreshManager handles issuance, rotation, and reuse detection of
// refresh tokens, hand-adapted from pkg/gourdiantoken-master's rotation and
// revocation design (that package has its own go.mod and can't be imported
// directly; its SCAN-based revoked-prefix cleanup and generation-tracking
// rotation are reauthored here against store.TokenRepo).
type RefreshManager struct {
	tokens *store.TokenRepo
	cache  cachekv.Cache
}

func NewRefreshManager(tokens *store.TokenRepo, cache cachekv.Cache) *RefreshManager {
	return &RefreshManager{tokens: tokens, cache: cache}
}

// IssueInitial mints generation-0 of a new token family, e.g. at login.
func (r *RefreshManager) IssueInitial(ctx context.Context, identityID, clientID, sessionID uuid.UUID, scopes []string) (string, error) {
	bearer, err := crypto.RandomToken(32)
	if err != nil {
		return "", err
	}
	now := time.Now().UTC()
	family := uuid.New()
	t := &store.Token{
		ID:          uuid.New(),
		Type:        store.TokenRefresh,
		Hash:        crypto.HashToken(bearer),
		IdentityID:  &identityID,
		ClientID:    clientID.String(),
		SessionID:   &sessionID,
		Scopes:      store.StringArray(scopes),
		IssuedAt:    now,
		ExpiresAt:   now.Add(RefreshTTL),
		Status:      store.TokenActive,
		TokenFamily: &family,
		Generation:  0,
	}
	if err := r.tokens.Create(ctx, t); err != nil {
		return "", err
	}
	return bearer, nil
}

// Rotate redeems a refresh token bearer value, issuing the next generation
// in its family. If the presented token was already rotated away (use_count
// or status says "used"/"revoked") this is reuse: the whole family is
// revoked immediately (spec §3: "reuse of a prior generation revokes the
// entire family").
func (r *RefreshManager) Rotate(ctx context.Context, bearer string) (string, *store.Token, error) {
	old, err := r.tokens.GetByHash(ctx, crypto.HashToken(bearer))
	if err != nil {
		return "", nil, errs.New(errs.InvalidGrant, "invalid refresh token")
	}
	if old.Type != store.TokenRefresh {
		return "", nil, errs.New(errs.InvalidGrant, "not a refresh token")
	}
	if old.Status != store.TokenActive {
		if old.TokenFamily != nil {
			if revokeErr := r.tokens.RevokeFamily(ctx, *old.TokenFamily); revokeErr != nil {
				return "", nil, revokeErr
			}
			r.invalidateFamilyCache(ctx, *old.TokenFamily)
		}
		return "", nil, errs.New(errs.ReuseDetected, "refresh token reuse detected, family revoked")
	}
	if time.Now().UTC().After(old.ExpiresAt) {
		return "", nil, errs.New(errs.InvalidGrant, "refresh token expired")
	}

	bearerNext, err := crypto.RandomToken(32)
	if err != nil {
		return "", nil, err
	}
	now := time.Now().UTC()
	next := &store.Token{
		ID:            uuid.New(),
		Type:          store.TokenRefresh,
		Hash:          crypto.HashToken(bearerNext),
		IdentityID:    old.IdentityID,
		ClientID:      old.ClientID,
		SessionID:     old.SessionID,
		Scopes:        old.Scopes,
		IssuedAt:      now,
		ExpiresAt:     now.Add(RefreshTTL),
		Status:        store.TokenActive,
		TokenFamily:   old.TokenFamily,
		Generation:    old.Generation + 1,
		ParentTokenID: &old.ID,
	}
	if err := r.tokens.Rotate(ctx, old, next); err != nil {
		if errs.Is(err, errs.ReuseDetected) && old.TokenFamily != nil {
			_ = r.tokens.RevokeFamily(ctx, *old.TokenFamily)
			r.invalidateFamilyCache(ctx, *old.TokenFamily)
		}
		return "", nil, err
	}
	return bearerNext, next, nil
}

func (r *RefreshManager) invalidateFamilyCache(ctx context.Context, family uuid.UUID) {
	_ = r.cache.InvalidatePrefix(ctx, cachekv.PrefixAccessToken+family.String())
}

// RevokeSession revokes every token tied to a session, e.g. on logout.
func (r *RefreshManager) RevokeSession(ctx context.Context, sessionTokens []store.Token) error {
	for _, t := range sessionTokens {
		if err := r.tokens.Revoke(ctx, t.ID); err != nil {
			return err
		}
	}
	return nil
}
