package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/entativa/eid/internal/errs"
)

const (
	insertIdentityQuery = `
		INSERT INTO identities (id, email, phone, handle_id, display_name,
			status, verification_status, verification_badge, reputation_score,
			failed_login_attempts, locked_until, mfa_enabled, version,
			created_at, updated_at)
		VALUES (:id, :email, :phone, :handle_id, :display_name, :status,
			:verification_status, :verification_badge, :reputation_score,
			:failed_login_attempts, :locked_until, :mfa_enabled, :version,
			:created_at, :updated_at)`

	selectIdentityByIDQuery = `
		SELECT id, email, phone, handle_id, display_name, status,
			verification_status, verification_badge, reputation_score,
			failed_login_attempts, locked_until, mfa_enabled, deleted_at,
			version, created_at, updated_at
		FROM identities WHERE id = $1 AND deleted_at IS NULL`

	selectIdentityByEmailQuery = `
		SELECT id, email, phone, handle_id, display_name, status,
			verification_status, verification_badge, reputation_score,
			failed_login_attempts, locked_until, mfa_enabled, deleted_at,
			version, created_at, updated_at
		FROM identities WHERE email = $1 AND deleted_at IS NULL`

	updateIdentityVersionedQuery = `
		UPDATE identities SET status = :status,
			verification_status = :verification_status,
			verification_badge = :verification_badge,
			reputation_score = :reputation_score,
			failed_login_attempts = :failed_login_attempts,
			locked_until = :locked_until, mfa_enabled = :mfa_enabled,
			handle_id = :handle_id, display_name = :display_name,
			version = version + 1, updated_at = :updated_at
		WHERE id = :id AND version = :version`
)

// IdentityRepo persists the Identity aggregate (spec §3).
type IdentityRepo struct {
	*Base
}

func NewIdentityRepo(base *Base) *IdentityRepo {
	return &IdentityRepo{Base: base}
}

// Create inserts id on the repo's own connection. CreateTx is the
// transaction-scoped variant the façade uses to keep identity, credential,
// handle and outbox writes atomic (spec §4.9: "within one transaction").
func (r *IdentityRepo) Create(ctx context.Context, id *Identity) error {
	return r.CreateTx(ctx, r.DB, id)
}

func (r *IdentityRepo) CreateTx(ctx context.Context, ext sqlx.ExtContext, id *Identity) error {
	_, err := sqlx.NamedExecContext(ctx, ext, insertIdentityQuery, id)
	return wrapExec(err, "create identity")
}

func (r *IdentityRepo) GetByID(ctx context.Context, id uuid.UUID) (*Identity, error) {
	var out Identity
	err := r.DB.GetContext(ctx, &out, selectIdentityByIDQuery, id)
	if err != nil {
		return nil, NotFoundOrErr("identity", err)
	}
	return &out, nil
}

func (r *IdentityRepo) GetByEmail(ctx context.Context, email string) (*Identity, error) {
	var out Identity
	err := r.DB.GetContext(ctx, &out, selectIdentityByEmailQuery, email)
	if err != nil {
		return nil, NotFoundOrErr("identity", err)
	}
	return &out, nil
}

// Update persists id with optimistic concurrency: id.Version must match the
// stored row, and the call bumps it on success (spec §5).
func (r *IdentityRepo) Update(ctx context.Context, id *Identity) error {
	return r.UpdateTx(ctx, r.DB, id)
}

// UpdateTx is Update's transaction-scoped variant.
func (r *IdentityRepo) UpdateTx(ctx context.Context, ext sqlx.ExtContext, id *Identity) error {
	args := map[string]any{
		"status":                id.Status,
		"verification_status":   id.VerificationStatus,
		"verification_badge":    id.VerificationBadge,
		"reputation_score":      id.ReputationScore,
		"failed_login_attempts": id.FailedLoginAttempts,
		"locked_until":          id.LockedUntil,
		"mfa_enabled":           id.MFAEnabled,
		"handle_id":             id.HandleID,
		"display_name":          id.DisplayName,
		"updated_at":            id.UpdatedAt,
		"id":                    id.ID,
		"version":               id.Version,
	}
	return UpdateVersioned(ctx, ext, updateIdentityVersionedQuery, args)
}

// PasswordRepo persists the Password credential entity (spec §3) separately
// from Identity, one row per identity.
type PasswordRepo struct {
	*Base
}

func NewPasswordRepo(base *Base) *PasswordRepo {
	return &PasswordRepo{Base: base}
}

const (
	upsertPasswordQuery = `
		INSERT INTO password_credentials (identity_id, algorithm, salt, hash,
			params, rotation_count, changed_at)
		VALUES (:identity_id, :algorithm, :salt, :hash, :params,
			:rotation_count, :changed_at)
		ON CONFLICT (identity_id) DO UPDATE SET
			algorithm = EXCLUDED.algorithm, salt = EXCLUDED.salt,
			hash = EXCLUDED.hash, params = EXCLUDED.params,
			rotation_count = EXCLUDED.rotation_count,
			changed_at = EXCLUDED.changed_at`

	selectPasswordByIdentityQuery = `
		SELECT identity_id, algorithm, salt, hash, params, rotation_count,
			changed_at
		FROM password_credentials WHERE identity_id = $1`
)

func (r *PasswordRepo) Upsert(ctx context.Context, cred *PasswordCredential) error {
	return r.UpsertTx(ctx, r.DB, cred)
}

// UpsertTx is Upsert's transaction-scoped variant.
func (r *PasswordRepo) UpsertTx(ctx context.Context, ext sqlx.ExtContext, cred *PasswordCredential) error {
	_, err := sqlx.NamedExecContext(ctx, ext, upsertPasswordQuery, cred)
	return wrapExec(err, "upsert password credential")
}

func (r *PasswordRepo) GetByIdentity(ctx context.Context, identityID uuid.UUID) (*PasswordCredential, error) {
	var out PasswordCredential
	err := r.DB.GetContext(ctx, &out, selectPasswordByIdentityQuery, identityID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errs.New(errs.NotFound, "password credential not found")
		}
		return nil, errs.Newf(errs.TransientError, "password credential: %v", err)
	}
	return &out, nil
}
