// Package oauth is the OAuth2/OIDC token lifecycle component (C6):
// authorization-code + PKCE flow, refresh rotation with reuse detection,
// JWT access/ID tokens, session lifecycle, and token-endpoint rate
// limiting. Grounded on the teacher's domain/auth package, generalized
// from its HS256-only, device-aware design into the full spec §4.6 surface.
package oauth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"

	"github.com/entativa/eid/internal/errs"
)

// ChallengeMethod enumerates the two PKCE methods spec §4.6 supports.
type ChallengeMethod string

const (
	MethodS256  ChallengeMethod = "S256"
	MethodPlain ChallengeMethod = "plain"
)

// VerifyPKCE checks a code_verifier against the code_challenge stored with
// the authorization code, per RFC 7636. Plain is accepted only when the
// client config allows it (public clients should always use S256).
func VerifyPKCE(method ChallengeMethod, challenge, verifier string, allowPlain bool) error {
	if verifier == "" {
		return errs.New(errs.InvalidGrant, "missing code_verifier")
	}
	switch method {
	case MethodS256:
		sum := sha256.Sum256([]byte(verifier))
		computed := base64.RawURLEncoding.EncodeToString(sum[:])
		if subtle.ConstantTimeCompare([]byte(computed), []byte(challenge)) != 1 {
			return errs.New(errs.InvalidGrant, "code_verifier does not match code_challenge")
		}
		return nil
	case MethodPlain:
		if !allowPlain {
			return errs.New(errs.InvalidGrant, "plain PKCE method not permitted")
		}
		if subtle.ConstantTimeCompare([]byte(verifier), []byte(challenge)) != 1 {
			return errs.New(errs.InvalidGrant, "code_verifier does not match code_challenge")
		}
		return nil
	default:
		return errs.Newf(errs.InvalidGrant, "unsupported code_challenge_method %q", method)
	}
}
