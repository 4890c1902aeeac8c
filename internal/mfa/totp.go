// Package mfa is the MFA engine (C5): TOTP/SMS/email/backup-code methods,
// challenge issue/verify state machine, and lockout policy. Grounded on
// manifests that depend on github.com/pquerna/otp for TOTP
// (Jeffreasy-LaventeCareAuthSystems, YaoApp-yao) — the teacher has no MFA
// of its own, so this package is new code in the teacher's terse style.
package mfa

import (
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"github.com/entativa/eid/internal/crypto"
	"github.com/entativa/eid/internal/errs"
)

// EnrollTOTP generates a new TOTP secret for identifier (the masked
// account label shown in authenticator apps), returning the provisioning
// URI for QR-code enrollment and the sealed secret to persist.
func EnrollTOTP(issuer, identifier string, keys *crypto.KeyRing) (uri string, sealed *crypto.Sealed, err error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: identifier,
	})
	if err != nil {
		return "", nil, errs.Newf(errs.Internal, "generate totp secret: %v", err)
	}
	sealed, err = keys.Seal([]byte(key.Secret()))
	if err != nil {
		return "", nil, err
	}
	return key.URL(), sealed, nil
}

// VerifyTOTP validates code against the sealed secret at the current time
// step, allowing a one-step skew window.
func VerifyTOTP(code string, sealed *crypto.Sealed, keys *crypto.KeyRing) (bool, error) {
	secret, err := keys.Open(sealed)
	if err != nil {
		return false, err
	}
	valid, err := totp.ValidateCustom(code, string(secret), time.Now().UTC(), totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return false, errs.Newf(errs.MFAFailed, "validate totp: %v", err)
	}
	return valid, nil
}
