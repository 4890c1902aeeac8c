package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// RecoveryRepo persists Recovery method rows, "modelled similarly" to MFA
// methods per spec §3.
type RecoveryRepo struct {
	*Base
}

func NewRecoveryRepo(base *Base) *RecoveryRepo {
	return &RecoveryRepo{Base: base}
}

func (r *RecoveryRepo) Create(ctx context.Context, m *RecoveryMethod) error {
	_, err := sqlx.NamedExecContext(ctx, r.DB, `
		INSERT INTO recovery_methods (id, identity_id, type, value_hash, status, created_at)
		VALUES (:id, :identity_id, :type, :value_hash, :status, :created_at)`, m)
	return wrapExec(err, "create recovery method")
}

func (r *RecoveryRepo) ListByIdentity(ctx context.Context, identityID uuid.UUID) ([]RecoveryMethod, error) {
	var out []RecoveryMethod
	err := r.DB.SelectContext(ctx, &out, `
		SELECT id, identity_id, type, value_hash, status, created_at
		FROM recovery_methods WHERE identity_id = $1`, identityID)
	return out, wrapExec(err, "list recovery methods")
}

// ConnectedAppRepo persists Connected app rows, "modelled similarly" to
// OAuth sessions per spec §3.
type ConnectedAppRepo struct {
	*Base
}

func NewConnectedAppRepo(base *Base) *ConnectedAppRepo {
	return &ConnectedAppRepo{Base: base}
}

func (r *ConnectedAppRepo) Create(ctx context.Context, a *ConnectedApp) error {
	_, err := sqlx.NamedExecContext(ctx, r.DB, `
		INSERT INTO connected_apps (id, identity_id, client_id, scopes, status, created_at)
		VALUES (:id, :identity_id, :client_id, :scopes, :status, :created_at)`, a)
	return wrapExec(err, "create connected app")
}

func (r *ConnectedAppRepo) ListByIdentity(ctx context.Context, identityID uuid.UUID) ([]ConnectedApp, error) {
	var out []ConnectedApp
	err := r.DB.SelectContext(ctx, &out, `
		SELECT id, identity_id, client_id, scopes, status, created_at
		FROM connected_apps WHERE identity_id = $1`, identityID)
	return out, wrapExec(err, "list connected apps")
}

func (r *ConnectedAppRepo) Revoke(ctx context.Context, id uuid.UUID) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE connected_apps SET status = 'revoked' WHERE id = $1`, id)
	return wrapExec(err, "revoke connected app")
}
