package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/entativa/eid/internal/errs"
)

const tokenColumns = `id, type, hash, identity_id, client_id, session_id,
	scopes, audience, issued_at, expires_at, not_before, use_count, max_uses,
	status, token_family, generation, parent_token_id, rotated_to_id,
	code_challenge, challenge_method, redirect_uri, algorithm, key_id,
	last_used_at`

// TokenRepo persists Token rows (spec §3's sum type, stored as one table).
// Construction and type-specific validation belong to internal/oauth;
// this repo only moves bytes.
type TokenRepo struct {
	*Base
}

func NewTokenRepo(base *Base) *TokenRepo {
	return &TokenRepo{Base: base}
}

func (r *TokenRepo) Create(ctx context.Context, t *Token) error {
	_, err := sqlx.NamedExecContext(ctx, r.DB, `
		INSERT INTO tokens (`+tokenColumns+`)
		VALUES (:id, :type, :hash, :identity_id, :client_id, :session_id,
			:scopes, :audience, :issued_at, :expires_at, :not_before,
			:use_count, :max_uses, :status, :token_family, :generation,
			:parent_token_id, :rotated_to_id, :code_challenge,
			:challenge_method, :redirect_uri, :algorithm, :key_id, :last_used_at)`, t)
	return wrapExec(err, "create token")
}

func (r *TokenRepo) GetByHash(ctx context.Context, hash string) (*Token, error) {
	var out Token
	err := r.DB.GetContext(ctx, &out, `SELECT `+tokenColumns+` FROM tokens WHERE hash = $1`, hash)
	if err != nil {
		return nil, NotFoundOrErr("token", err)
	}
	return &out, nil
}

func (r *TokenRepo) GetByID(ctx context.Context, id uuid.UUID) (*Token, error) {
	var out Token
	err := r.DB.GetContext(ctx, &out, `SELECT `+tokenColumns+` FROM tokens WHERE id = $1`, id)
	if err != nil {
		return nil, NotFoundOrErr("token", err)
	}
	return &out, nil
}

// ConsumeSingleUse atomically increments use_count and marks the token used,
// failing with errs.Conflict if it was already used — enforcing spec §3's
// "authorization codes are single-use (max_uses = 1)" invariant at the
// storage layer so a race can't double-redeem a code.
func (r *TokenRepo) ConsumeSingleUse(ctx context.Context, id uuid.UUID) error {
	result, err := r.DB.ExecContext(ctx, `
		UPDATE tokens SET use_count = use_count + 1, status = 'used'
		WHERE id = $1 AND status = 'active' AND use_count < max_uses`, id)
	if err != nil {
		return wrapExec(err, "consume token")
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return errs.New(errs.ReuseDetected, "token already used or inactive")
	}
	return nil
}

// Rotate marks old as rotated-to new, inserts new, and bumps generation —
// the refresh-token rotation step of spec §3's token_family invariant.
func (r *TokenRepo) Rotate(ctx context.Context, old *Token, next *Token) error {
	return r.Transaction(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE tokens SET status = 'used', rotated_to_id = $1
			WHERE id = $2 AND status = 'active'`, next.ID, old.ID)
		if err != nil {
			return wrapExec(err, "mark token rotated")
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return errs.New(errs.ReuseDetected, "refresh token already rotated or inactive")
		}
		_, err = sqlx.NamedExecContext(ctx, tx, `
			INSERT INTO tokens (`+tokenColumns+`)
			VALUES (:id, :type, :hash, :identity_id, :client_id, :session_id,
				:scopes, :audience, :issued_at, :expires_at, :not_before,
				:use_count, :max_uses, :status, :token_family, :generation,
				:parent_token_id, :rotated_to_id, :code_challenge,
				:challenge_method, :redirect_uri, :algorithm, :key_id, :last_used_at)`, next)
		return wrapExec(err, "insert rotated token")
	})
}

// RevokeFamily revokes every active token in a token_family — the response
// to detected refresh-token reuse (spec §3: "reuse of a prior generation
// revokes the entire family").
func (r *TokenRepo) RevokeFamily(ctx context.Context, family uuid.UUID) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE tokens SET status = 'revoked'
		WHERE token_family = $1 AND status IN ('active', 'used')`, family)
	return wrapExec(err, "revoke token family")
}

func (r *TokenRepo) Revoke(ctx context.Context, id uuid.UUID) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE tokens SET status = 'revoked' WHERE id = $1`, id)
	return wrapExec(err, "revoke token")
}
