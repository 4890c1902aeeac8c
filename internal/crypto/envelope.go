package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"

	"github.com/entativa/eid/internal/errs"
)

const aesKeySize = 32

// KeyRing holds the active data-encryption keys, keyed by version, so
// secrets encrypted under an older key still decrypt during rotation —
// every ciphertext is tagged with the key version that produced it.
type KeyRing struct {
	keys      map[string][]byte
	activeKey string
}

func NewKeyRing(activeKeyID string, keys map[string][]byte) (*KeyRing, error) {
	for id, k := range keys {
		if len(k) != aesKeySize {
			return nil, errs.Newf(errs.Internal, "encryption key %q must be %d bytes", id, aesKeySize)
		}
	}
	if _, ok := keys[activeKeyID]; !ok {
		return nil, errs.Newf(errs.Internal, "active key %q not present in key ring", activeKeyID)
	}
	return &KeyRing{keys: keys, activeKey: activeKeyID}, nil
}

// Sealed is an envelope-encrypted value: which key sealed it, plus the
// AES-GCM output in dex's pkg/crypto.Encrypt form (nonce|ciphertext|tag).
type Sealed struct {
	KeyID      string
	Ciphertext []byte
}

// Seal encrypts plaintext with the active key using 256-bit AES-GCM,
// grounded directly on dexidp-dex's pkg/crypto.Encrypt.
func (k *KeyRing) Seal(plaintext []byte) (*Sealed, error) {
	ct, err := aesGCMEncrypt(plaintext, k.keys[k.activeKey])
	if err != nil {
		return nil, errs.Newf(errs.Internal, "seal: %v", err)
	}
	return &Sealed{KeyID: k.activeKey, Ciphertext: ct}, nil
}

// Open decrypts s using the key it was sealed under, which may not be the
// currently active key during a rotation window.
func (k *KeyRing) Open(s *Sealed) ([]byte, error) {
	key, ok := k.keys[s.KeyID]
	if !ok {
		return nil, errs.Newf(errs.Internal, "unknown key id %q", s.KeyID)
	}
	pt, err := aesGCMDecrypt(s.Ciphertext, key)
	if err != nil {
		return nil, errs.Newf(errs.Internal, "open: %v", err)
	}
	return pt, nil
}

// EncodeSealed serializes a Sealed value into a single "keyid:base64" blob
// for storage in a bytea column.
func EncodeSealed(s *Sealed) []byte {
	return []byte(s.KeyID + ":" + base64.RawURLEncoding.EncodeToString(s.Ciphertext))
}

func DecodeSealed(raw []byte) (*Sealed, error) {
	s := string(raw)
	for i := 0; i < len(s); i++ {
		if s[i] == ':' {
			ct, err := base64.RawURLEncoding.DecodeString(s[i+1:])
			if err != nil {
				return nil, errs.New(errs.InvalidFormat, "malformed sealed value")
			}
			return &Sealed{KeyID: s[:i], Ciphertext: ct}, nil
		}
	}
	return nil, errs.New(errs.InvalidFormat, "malformed sealed value")
}

// aesGCMEncrypt mirrors dexidp-dex's pkg/crypto.Encrypt: output takes the
// form nonce|ciphertext|tag.
func aesGCMEncrypt(plaintext, key []byte) ([]byte, error) {
	if len(key) != aesKeySize {
		return nil, aes.KeySizeError(len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// aesGCMDecrypt mirrors dexidp-dex's pkg/crypto.Decrypt.
func aesGCMDecrypt(ciphertext, key []byte) ([]byte, error) {
	if len(key) != aesKeySize {
		return nil, aes.KeySizeError(len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, errs.New(errs.InvalidFormat, "ciphertext too short")
	}
	return gcm.Open(nil, ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():], nil)
}
