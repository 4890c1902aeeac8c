package oauth

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/entativa/eid/internal/errs"
	"github.com/entativa/eid/internal/store"
)

// ClientRegistry manages OAuth application registration and secret
// verification, grounded on the teacher's bcrypt-hash-and-compare idiom in
// domain/auth/auth.go (HashPassword/CheckPassword), applied here to client
// secrets instead of user passwords.
type ClientRegistry struct {
	repo *store.OAuthClientRepo
}

func NewClientRegistry(repo *store.OAuthClientRepo) *ClientRegistry {
	return &ClientRegistry{repo: repo}
}

func (c *ClientRegistry) Register(ctx context.Context, client *store.OAuthClient, secret string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return errs.Newf(errs.Internal, "hash client secret: %v", err)
	}
	client.ClientSecretHash = string(hash)
	return c.repo.Create(ctx, client)
}

// Authenticate verifies client_id/client_secret for confidential clients.
// Public clients (no secret) skip the secret check entirely per RFC 6749
// §2.3 and are identified only by client_id + redirect_uri match.
func (c *ClientRegistry) Authenticate(ctx context.Context, clientID, secret string) (*store.OAuthClient, error) {
	client, err := c.repo.GetByID(ctx, clientID)
	if err != nil {
		return nil, errs.New(errs.InvalidClient, "unknown client")
	}
	if client.Public {
		return client, nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(client.ClientSecretHash), []byte(secret)); err != nil {
		return nil, errs.New(errs.InvalidClient, "client authentication failed")
	}
	return client, nil
}

// ValidateRedirectURI enforces spec §3's "exact match set" rule — no prefix
// or wildcard matching, a common open-redirect vector in OAuth servers.
func (c *ClientRegistry) ValidateRedirectURI(client *store.OAuthClient, redirectURI string) error {
	for _, u := range client.RedirectURIs {
		if u == redirectURI {
			return nil
		}
	}
	return errs.New(errs.InvalidGrant, "redirect_uri not registered for client")
}

// ValidateScopes ensures every requested scope is in the client's allowed set.
func (c *ClientRegistry) ValidateScopes(client *store.OAuthClient, requested []string) error {
	allowed := make(map[string]bool, len(client.AllowedScopes))
	for _, s := range client.AllowedScopes {
		allowed[s] = true
	}
	for _, s := range requested {
		if !allowed[s] {
			return errs.Newf(errs.InvalidScope, "scope %q not permitted for client", s)
		}
	}
	return nil
}
