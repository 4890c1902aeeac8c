// Package crypto is the crypto primitives component (C1): password hashing,
// envelope encryption for at-rest secrets, and signing. Grounded on the
// teacher's domain/auth.HashPassword/CheckPassword (bcrypt), upgraded to
// Argon2id per spec §4.1 with bcrypt kept only for verifying legacy hashes.
package crypto

import (
	"crypto/subtle"
	"strings"

	"github.com/alexedwards/argon2id"
	"golang.org/x/crypto/bcrypt"

	"github.com/entativa/eid/internal/errs"
)

// PasswordParams are the current Argon2id cost parameters. Bumping these
// and re-hashing existing credentials on next login is the rotation
// counter's purpose (spec §3: Password credential "rotation counter").
var PasswordParams = &argon2id.Params{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 2,
	SaltLength:  16,
	KeyLength:   32,
}

// RehashOutcome is the tri-state result of VerifyPassword: the caller needs
// to know not just whether a password matched, but whether the stored hash
// should be upgraded, since the current algorithm or parameters may have
// moved on (spec §3: "re-hashed opportunistically on login when parameters
// are outdated").
type RehashOutcome int

const (
	Mismatch RehashOutcome = iota
	OK
	OKNeedsRehash
)

// HashPassword produces a new Argon2id hash string using PasswordParams.
func HashPassword(password string) (string, error) {
	hash, err := argon2id.CreateHash(password, PasswordParams)
	if err != nil {
		return "", errs.Newf(errs.Internal, "hash password: %v", err)
	}
	return hash, nil
}

// VerifyPassword checks password against a stored hash produced by either
// HashPassword (argon2id) or the teacher's legacy bcrypt scheme, reporting
// whether the caller should transparently re-hash on success.
func VerifyPassword(password, algo, storedHash string) (RehashOutcome, error) {
	switch algo {
	case "argon2id", "":
		match, params, err := argon2id.CheckHash(password, storedHash)
		if err != nil {
			if strings.Contains(err.Error(), "hash format") {
				return Mismatch, errs.New(errs.InvalidFormat, "unrecognized password hash format")
			}
			return Mismatch, errs.Newf(errs.Internal, "verify password: %v", err)
		}
		if !match {
			return Mismatch, nil
		}
		if paramsOutdated(params) {
			return OKNeedsRehash, nil
		}
		return OK, nil
	case "bcrypt":
		err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(password))
		if err != nil {
			return Mismatch, nil
		}
		return OKNeedsRehash, nil
	default:
		return Mismatch, errs.Newf(errs.InvalidFormat, "unknown password algorithm %q", algo)
	}
}

func paramsOutdated(p *argon2id.Params) bool {
	return p.Memory < PasswordParams.Memory ||
		p.Iterations < PasswordParams.Iterations ||
		p.Parallelism < PasswordParams.Parallelism
}

// ConstantTimeEqual compares two secrets without leaking timing
// information, used for comparing code hashes and HMAC digests elsewhere.
func ConstantTimeEqual(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}
