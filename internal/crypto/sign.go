package crypto

import (
	"crypto/rand"
	"crypto/rsa"

	jose "github.com/go-jose/go-jose/v3"

	"github.com/entativa/eid/internal/errs"
)

// SigningKeySet is the active RS256 signing key plus retired public keys
// still accepted for verification during rotation, grounded on
// dexidp-dex's internal/jwt.StorageKeySet (which verifies against the
// current signing key's public half plus a list of prior verification
// keys looked up by kid).
type SigningKeySet struct {
	ActiveKeyID string
	private     *rsa.PrivateKey
	public      map[string]*rsa.PublicKey
}

// GenerateSigningKey creates a fresh 2048-bit RSA key for RS256 token
// signing, registered under keyID.
func GenerateSigningKey(keyID string) (*SigningKeySet, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, errs.Newf(errs.Internal, "generate signing key: %v", err)
	}
	return &SigningKeySet{
		ActiveKeyID: keyID,
		private:     key,
		public:      map[string]*rsa.PublicKey{keyID: &key.PublicKey},
	}, nil
}

// AddVerificationKey registers a retired public key so tokens it signed
// still verify until they naturally expire.
func (s *SigningKeySet) AddVerificationKey(keyID string, pub *rsa.PublicKey) {
	s.public[keyID] = pub
}

func (s *SigningKeySet) ActivePrivateKey() *rsa.PrivateKey {
	return s.private
}

// PublicKeyByID looks up a verification key by kid, the way
// StorageKeySet.VerifySignature walks storage's VerificationKeys.
func (s *SigningKeySet) PublicKeyByID(keyID string) (*rsa.PublicKey, bool) {
	pub, ok := s.public[keyID]
	return pub, ok
}

// JWKS renders the public verification keys as a JSON Web Key Set, served
// from the discovery document's jwks_uri per spec §6.
func (s *SigningKeySet) JWKS() jose.JSONWebKeySet {
	set := jose.JSONWebKeySet{}
	for kid, pub := range s.public {
		set.Keys = append(set.Keys, jose.JSONWebKey{
			Key:       pub,
			KeyID:     kid,
			Algorithm: "RS256",
			Use:       "sig",
		})
	}
	return set
}
