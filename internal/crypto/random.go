package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"

	"github.com/entativa/eid/internal/errs"
)

// RandomToken generates an n-byte random value, base64url-encoded,
// mirroring the teacher's auth.GenerateRefreshToken/GenerateResetToken
// (32 random bytes, base64 URL encode without padding).
func RandomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", errs.Newf(errs.Internal, "generate random token: %v", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// HashToken returns the hex-encoded SHA-256 digest of a bearer token, the
// form every token/code hash column stores instead of the raw secret.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
