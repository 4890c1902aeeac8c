package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// MFARepo persists MFA method, backup code, and challenge rows (spec §3/§4.5).
type MFARepo struct {
	*Base
}

func NewMFARepo(base *Base) *MFARepo {
	return &MFARepo{Base: base}
}

func (r *MFARepo) CreateMethod(ctx context.Context, m *MFAMethod) error {
	_, err := sqlx.NamedExecContext(ctx, r.DB, `
		INSERT INTO mfa_methods (id, identity_id, type, identifier_cipher,
			secret_cipher, is_primary, is_verified, priority, trust_level,
			use_count, failed_counter, locked_until, created_at, updated_at)
		VALUES (:id, :identity_id, :type, :identifier_cipher, :secret_cipher,
			:is_primary, :is_verified, :priority, :trust_level, :use_count,
			:failed_counter, :locked_until, :created_at, :updated_at)`, m)
	return wrapExec(err, "create mfa method")
}

func (r *MFARepo) GetMethod(ctx context.Context, id uuid.UUID) (*MFAMethod, error) {
	var out MFAMethod
	err := r.DB.GetContext(ctx, &out, `
		SELECT id, identity_id, type, identifier_cipher, secret_cipher,
			is_primary, is_verified, priority, trust_level, use_count,
			failed_counter, locked_until, created_at, updated_at
		FROM mfa_methods WHERE id = $1`, id)
	if err != nil {
		return nil, NotFoundOrErr("mfa method", err)
	}
	return &out, nil
}

func (r *MFARepo) ListMethods(ctx context.Context, identityID uuid.UUID) ([]MFAMethod, error) {
	var out []MFAMethod
	err := r.DB.SelectContext(ctx, &out, `
		SELECT id, identity_id, type, identifier_cipher, secret_cipher,
			is_primary, is_verified, priority, trust_level, use_count,
			failed_counter, locked_until, created_at, updated_at
		FROM mfa_methods WHERE identity_id = $1 ORDER BY priority ASC`, identityID)
	return out, wrapExec(err, "list mfa methods")
}

func (r *MFARepo) UpdateMethod(ctx context.Context, m *MFAMethod) error {
	_, err := sqlx.NamedExecContext(ctx, r.DB, `
		UPDATE mfa_methods SET is_primary = :is_primary,
			is_verified = :is_verified, use_count = :use_count,
			failed_counter = :failed_counter, locked_until = :locked_until,
			updated_at = :updated_at
		WHERE id = :id`, m)
	return wrapExec(err, "update mfa method")
}

func (r *MFARepo) CreateBackupCodes(ctx context.Context, codes []BackupCode) error {
	if len(codes) == 0 {
		return nil
	}
	return r.Transaction(ctx, func(tx *sqlx.Tx) error {
		for i := range codes {
			if _, err := sqlx.NamedExecContext(ctx, tx, `
				INSERT INTO backup_codes (id, method_id, code_hash, used_at, created_at)
				VALUES (:id, :method_id, :code_hash, :used_at, :created_at)`, &codes[i]); err != nil {
				return wrapExec(err, "create backup code")
			}
		}
		return nil
	})
}

func (r *MFARepo) ConsumeBackupCode(ctx context.Context, methodID uuid.UUID, codeHash string, consumedAt any) (bool, error) {
	result, err := r.DB.ExecContext(ctx, `
		UPDATE backup_codes SET used_at = $1
		WHERE method_id = $2 AND code_hash = $3 AND used_at IS NULL`,
		consumedAt, methodID, codeHash)
	if err != nil {
		return false, wrapExec(err, "consume backup code")
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

func (r *MFARepo) CreateChallenge(ctx context.Context, c *MFAChallenge) error {
	_, err := sqlx.NamedExecContext(ctx, r.DB, `
		INSERT INTO mfa_challenges (id, identity_id, method_id, purpose,
			code_hash, issued_at, expires_at, attempts, max_attempts, status)
		VALUES (:id, :identity_id, :method_id, :purpose, :code_hash,
			:issued_at, :expires_at, :attempts, :max_attempts, :status)`, c)
	return wrapExec(err, "create mfa challenge")
}

func (r *MFARepo) GetChallenge(ctx context.Context, id uuid.UUID) (*MFAChallenge, error) {
	var out MFAChallenge
	err := r.DB.GetContext(ctx, &out, `
		SELECT id, identity_id, method_id, purpose, code_hash, issued_at,
			expires_at, attempts, max_attempts, status
		FROM mfa_challenges WHERE id = $1`, id)
	if err != nil {
		return nil, NotFoundOrErr("mfa challenge", err)
	}
	return &out, nil
}

func (r *MFARepo) UpdateChallenge(ctx context.Context, c *MFAChallenge) error {
	_, err := sqlx.NamedExecContext(ctx, r.DB, `
		UPDATE mfa_challenges SET attempts = :attempts, status = :status
		WHERE id = :id`, c)
	return wrapExec(err, "update mfa challenge")
}
