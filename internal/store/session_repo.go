package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// SessionRepo persists Session rows (spec §3).
type SessionRepo struct {
	*Base
}

func NewSessionRepo(base *Base) *SessionRepo {
	return &SessionRepo{Base: base}
}

func (r *SessionRepo) Create(ctx context.Context, s *Session) error {
	_, err := sqlx.NamedExecContext(ctx, r.DB, `
		INSERT INTO sessions (id, identity_id, client_id, device, created_at,
			last_active_at, expires_at, is_active, mfa_asserted,
			mfa_asserted_at, mfa_method_id)
		VALUES (:id, :identity_id, :client_id, :device, :created_at,
			:last_active_at, :expires_at, :is_active, :mfa_asserted,
			:mfa_asserted_at, :mfa_method_id)`, s)
	return wrapExec(err, "create session")
}

func (r *SessionRepo) GetByID(ctx context.Context, id uuid.UUID) (*Session, error) {
	var out Session
	err := r.DB.GetContext(ctx, &out, `
		SELECT id, identity_id, client_id, device, created_at, last_active_at,
			expires_at, is_active, mfa_asserted, mfa_asserted_at, mfa_method_id
		FROM sessions WHERE id = $1`, id)
	if err != nil {
		return nil, NotFoundOrErr("session", err)
	}
	return &out, nil
}

func (r *SessionRepo) Touch(ctx context.Context, id uuid.UUID, lastActiveAt any) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE sessions SET last_active_at = $1 WHERE id = $2 AND is_active`,
		lastActiveAt, id)
	return wrapExec(err, "touch session")
}

func (r *SessionRepo) MarkMFAAsserted(ctx context.Context, id, methodID uuid.UUID, at any) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE sessions SET mfa_asserted = true, mfa_asserted_at = $1,
			mfa_method_id = $2 WHERE id = $3`, at, methodID, id)
	return wrapExec(err, "mark session mfa asserted")
}

func (r *SessionRepo) Revoke(ctx context.Context, id uuid.UUID) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE sessions SET is_active = false WHERE id = $1`, id)
	return wrapExec(err, "revoke session")
}

func (r *SessionRepo) ListActiveByIdentity(ctx context.Context, identityID uuid.UUID) ([]Session, error) {
	var out []Session
	err := r.DB.SelectContext(ctx, &out, `
		SELECT id, identity_id, client_id, device, created_at, last_active_at,
			expires_at, is_active, mfa_asserted, mfa_asserted_at, mfa_method_id
		FROM sessions WHERE identity_id = $1 AND is_active ORDER BY last_active_at DESC`, identityID)
	return out, wrapExec(err, "list sessions")
}
