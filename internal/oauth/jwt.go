package oauth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	cryptoeid "github.com/entativa/eid/internal/crypto"
	"github.com/entativa/eid/internal/errs"
)

// AccessClaims mirrors the teacher's domain/auth.TokenClaimsV2 (device-aware
// payload embedded in RegisteredClaims), generalized to carry scopes and a
// session id instead of a bare device id.
type AccessClaims struct {
	IdentityID string   `json:"sub_identity"`
	SessionID  string   `json:"sid"`
	ClientID   string   `json:"client_id"`
	Scopes     []string `json:"scope"`
	jwt.RegisteredClaims
}

// IDTokenClaims is the OIDC ID token shape (spec §6).
type IDTokenClaims struct {
	Nonce string `json:"nonce,omitempty"`
	ATHash string `json:"at_hash,omitempty"`
	jwt.RegisteredClaims
}

// IssuerConfig configures JWT issuance, grounded on teacher's authManager{config}.
type IssuerConfig struct {
	Issuer   string
	Keys     *cryptoeid.SigningKeySet
	TokenTTL time.Duration
}

// JWTIssuer issues and verifies RS256 JWTs with a kid header, extending the
// teacher's HS256-only GenerateAccessTokenV2/ParseTokenV2 pair.
type JWTIssuer struct {
	cfg IssuerConfig
}

func NewJWTIssuer(cfg IssuerConfig) *JWTIssuer {
	return &JWTIssuer{cfg: cfg}
}

// IssueAccessToken mirrors GenerateAccessTokenV2, RS256-signed with a kid
// header so internal/crypto.SigningKeySet can rotate keys without
// invalidating tokens mid-flight.
func (j *JWTIssuer) IssueAccessToken(identityID, sessionID, clientID uuid.UUID, scopes []string) (string, error) {
	now := time.Now().UTC()
	claims := AccessClaims{
		IdentityID: identityID.String(),
		SessionID:  sessionID.String(),
		ClientID:   clientID.String(),
		Scopes:     scopes,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.cfg.TokenTTL)),
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = j.cfg.Keys.ActiveKeyID
	signed, err := token.SignedString(j.cfg.Keys.ActivePrivateKey())
	if err != nil {
		return "", errs.Newf(errs.Internal, "sign access token: %v", err)
	}
	return signed, nil
}

// ParseAccessToken mirrors the teacher's ParseTokenV2: it reads the kid
// header to select the right verification key, supporting rotation.
func (j *JWTIssuer) ParseAccessToken(raw string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, errs.Newf(errs.InvalidToken, "unexpected signing method %v", t.Header["alg"])
		}
		kid, _ := t.Header["kid"].(string)
		pub, ok := j.cfg.Keys.PublicKeyByID(kid)
		if !ok {
			return nil, errs.Newf(errs.InvalidToken, "unknown signing key %q", kid)
		}
		return pub, nil
	})
	if err != nil {
		return nil, errs.Newf(errs.InvalidToken, "parse access token: %v", err)
	}
	return claims, nil
}

// IssueIDToken mints an OIDC ID token for the token/authorize response.
func (j *JWTIssuer) IssueIDToken(identityID, clientID, nonce string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := IDTokenClaims{
		Nonce: nonce,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.cfg.Issuer,
			Subject:   identityID,
			Audience:  jwt.ClaimStrings{clientID},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = j.cfg.Keys.ActiveKeyID
	signed, err := token.SignedString(j.cfg.Keys.ActivePrivateKey())
	if err != nil {
		return "", errs.Newf(errs.Internal, "sign id token: %v", err)
	}
	return signed, nil
}
