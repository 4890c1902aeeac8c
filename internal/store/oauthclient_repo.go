package store

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// OAuthClientRepo persists the OAuth application entity (spec §3).
type OAuthClientRepo struct {
	*Base
}

func NewOAuthClientRepo(base *Base) *OAuthClientRepo {
	return &OAuthClientRepo{Base: base}
}

func (r *OAuthClientRepo) Create(ctx context.Context, c *OAuthClient) error {
	_, err := sqlx.NamedExecContext(ctx, r.DB, `
		INSERT INTO oauth_clients (client_id, client_secret_hash, redirect_uris,
			allowed_scopes, trusted, public, owner_identity_id, created_at)
		VALUES (:client_id, :client_secret_hash, :redirect_uris,
			:allowed_scopes, :trusted, :public, :owner_identity_id, :created_at)`, c)
	return wrapExec(err, "create oauth client")
}

func (r *OAuthClientRepo) GetByID(ctx context.Context, clientID string) (*OAuthClient, error) {
	var out OAuthClient
	err := r.DB.GetContext(ctx, &out, `
		SELECT client_id, client_secret_hash, redirect_uris, allowed_scopes,
			trusted, public, owner_identity_id, created_at
		FROM oauth_clients WHERE client_id = $1`, clientID)
	if err != nil {
		return nil, NotFoundOrErr("oauth client", err)
	}
	return &out, nil
}
