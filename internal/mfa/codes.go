package mfa

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/entativa/eid/internal/crypto"
	"github.com/entativa/eid/internal/errs"
)

// GenerateNumericCode produces an n-digit numeric code for SMS/email
// delivery, grounded on the teacher's crypto/rand usage in
// GenerateRefreshToken (here drawing digits instead of raw bytes, since the
// code must be short enough to type).
func GenerateNumericCode(digits int) (string, error) {
	max := big.NewInt(1)
	for i := 0; i < digits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", errs.Newf(errs.Internal, "generate code: %v", err)
	}
	return fmt.Sprintf("%0*d", digits, n.Int64()), nil
}

// HashCode stores SMS/email/backup codes as a SHA-256 digest (codes are
// short-lived and single-use, so a fast hash is appropriate, unlike
// passwords which get Argon2id in internal/crypto).
func HashCode(code string) string {
	return crypto.HashToken(code)
}

// GenerateBackupCodes returns n human-typable backup codes plus their
// SHA-256 hashes for storage. Unlike passwords and client secrets, backup
// codes are looked up by exact hash match in a single-use table (spec §3:
// "stored one-way hashed, one row per code"), so a deterministic digest is
// required rather than bcrypt's salted-per-call output.
func GenerateBackupCodes(n int) (codes []string, hashes []string, err error) {
	for i := 0; i < n; i++ {
		raw, genErr := GenerateNumericCode(8)
		if genErr != nil {
			return nil, nil, genErr
		}
		codes = append(codes, raw)
		hashes = append(hashes, HashCode(raw))
	}
	return codes, hashes, nil
}
