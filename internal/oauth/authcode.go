package oauth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/entativa/eid/internal/crypto"
	"github.com/entativa/eid/internal/errs"
	"github.com/entativa/eid/internal/store"
)

// AuthCodeTTL is the default authorization-code lifetime (spec §6 config
// default, "10m").
const AuthCodeTTL = 10 * time.Minute

// AuthCodeIssuer issues and redeems single-use authorization codes,
// grounded on the teacher's GenerateRefreshToken (crypto/rand + base64url)
// generalized into the Token sum type from spec §9.
type AuthCodeIssuer struct {
	tokens *store.TokenRepo
}

func NewAuthCodeIssuer(tokens *store.TokenRepo) *AuthCodeIssuer {
	return &AuthCodeIssuer{tokens: tokens}
}

// IssueParams carries everything needed to mint an authorization code.
type IssueParams struct {
	IdentityID      uuid.UUID
	ClientID        string
	SessionID       uuid.UUID
	Scopes          []string
	RedirectURI     string
	CodeChallenge   string
	ChallengeMethod ChallengeMethod
}

// Issue mints a new authorization code and returns the bearer value to
// hand back to the client (never stored in plaintext — only its hash is).
func (a *AuthCodeIssuer) Issue(ctx context.Context, p IssueParams) (string, error) {
	bearer, err := crypto.RandomToken(32)
	if err != nil {
		return "", err
	}
	now := time.Now().UTC()
	method := string(p.ChallengeMethod)
	redirectURI := p.RedirectURI
	one := 1
	t := &store.Token{
		ID:              uuid.New(),
		Type:            store.TokenAuthCode,
		Hash:            crypto.HashToken(bearer),
		IdentityID:      &p.IdentityID,
		ClientID:        p.ClientID,
		SessionID:       &p.SessionID,
		Scopes:          store.StringArray(p.Scopes),
		IssuedAt:        now,
		ExpiresAt:       now.Add(AuthCodeTTL),
		MaxUses:         &one,
		Status:          store.TokenActive,
		CodeChallenge:   &p.CodeChallenge,
		ChallengeMethod: &method,
		RedirectURI:     &redirectURI,
	}
	if err := a.tokens.Create(ctx, t); err != nil {
		return "", err
	}
	return bearer, nil
}

// Redeem validates and single-use-consumes an authorization code, checking
// PKCE and redirect_uri, and returns the underlying token row.
func (a *AuthCodeIssuer) Redeem(ctx context.Context, bearer, clientID, redirectURI, codeVerifier string, allowPlainPKCE bool) (*store.Token, error) {
	t, err := a.tokens.GetByHash(ctx, crypto.HashToken(bearer))
	if err != nil {
		return nil, errs.New(errs.InvalidGrant, "invalid authorization code")
	}
	if t.Type != store.TokenAuthCode || t.Status != store.TokenActive {
		return nil, errs.New(errs.InvalidGrant, "authorization code is not active")
	}
	if time.Now().UTC().After(t.ExpiresAt) {
		return nil, errs.New(errs.InvalidGrant, "authorization code expired")
	}
	if t.ClientID != clientID {
		return nil, errs.New(errs.InvalidGrant, "authorization code issued to a different client")
	}
	if t.RedirectURI != nil && *t.RedirectURI != redirectURI {
		return nil, errs.New(errs.InvalidGrant, "redirect_uri mismatch")
	}
	if t.CodeChallenge != nil && *t.CodeChallenge != "" {
		method := MethodS256
		if t.ChallengeMethod != nil {
			method = ChallengeMethod(*t.ChallengeMethod)
		}
		if err := VerifyPKCE(method, *t.CodeChallenge, codeVerifier, allowPlainPKCE); err != nil {
			return nil, err
		}
	}
	if err := a.tokens.ConsumeSingleUse(ctx, t.ID); err != nil {
		return nil, err
	}
	return t, nil
}
