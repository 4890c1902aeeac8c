package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/entativa/eid/internal/errs"
)

const (
	insertHandleQuery = `
		INSERT INTO handles (id, handle, handle_lower, owner_identity_id,
			status, reservation_class, is_protected, original_owner_id,
			version, created_at, updated_at)
		VALUES (:id, :handle, :handle_lower, :owner_identity_id, :status,
			:reservation_class, :is_protected, :original_owner_id,
			:version, :created_at, :updated_at)`

	selectHandleByLowerQuery = `
		SELECT id, handle, handle_lower, owner_identity_id, status,
			reservation_class, is_protected, original_owner_id,
			transfer_token_hash, transfer_expires_at, transfer_to_identity_id,
			version, created_at, updated_at
		FROM handles WHERE handle_lower = $1`

	selectHandleByIDQuery = `
		SELECT id, handle, handle_lower, owner_identity_id, status,
			reservation_class, is_protected, original_owner_id,
			transfer_token_hash, transfer_expires_at, transfer_to_identity_id,
			version, created_at, updated_at
		FROM handles WHERE id = $1`

	updateHandleVersionedQuery = `
		UPDATE handles SET status = :status, owner_identity_id = :owner_identity_id,
			transfer_token_hash = :transfer_token_hash,
			transfer_expires_at = :transfer_expires_at,
			transfer_to_identity_id = :transfer_to_identity_id,
			version = version + 1, updated_at = :updated_at
		WHERE id = :id AND version = :version`
)

// HandleRepo persists Handle rows (spec §3/§4.4).
type HandleRepo struct {
	*Base
}

func NewHandleRepo(base *Base) *HandleRepo {
	return &HandleRepo{Base: base}
}

func Normalize(handle string) string {
	return strings.ToLower(strings.TrimSpace(handle))
}

func (r *HandleRepo) Create(ctx context.Context, h *Handle) error {
	return r.CreateTx(ctx, r.DB, h)
}

// CreateTx is Create's transaction-scoped variant, used by the identity
// façade to allocate a handle in the same transaction as the identity and
// credential it belongs to.
func (r *HandleRepo) CreateTx(ctx context.Context, ext sqlx.ExtContext, h *Handle) error {
	h.HandleLower = Normalize(h.Handle)
	_, err := sqlx.NamedExecContext(ctx, ext, insertHandleQuery, h)
	if err != nil && isUniqueViolation(err) {
		return errs.Newf(errs.Taken, "handle %q is taken", h.Handle)
	}
	return wrapExec(err, "create handle")
}

func (r *HandleRepo) GetByHandle(ctx context.Context, handle string) (*Handle, error) {
	var out Handle
	err := r.DB.GetContext(ctx, &out, selectHandleByLowerQuery, Normalize(handle))
	if err != nil {
		return nil, NotFoundOrErr("handle", err)
	}
	return &out, nil
}

func (r *HandleRepo) GetByID(ctx context.Context, id uuid.UUID) (*Handle, error) {
	var out Handle
	err := r.DB.GetContext(ctx, &out, selectHandleByIDQuery, id)
	if err != nil {
		return nil, NotFoundOrErr("handle", err)
	}
	return &out, nil
}

func (r *HandleRepo) Update(ctx context.Context, h *Handle) error {
	args := map[string]any{
		"status":                  h.Status,
		"owner_identity_id":       h.OwnerIdentityID,
		"transfer_token_hash":     h.TransferTokenHash,
		"transfer_expires_at":     h.TransferExpiresAt,
		"transfer_to_identity_id": h.TransferToIdentityID,
		"updated_at":              h.UpdatedAt,
		"id":                      h.ID,
		"version":                 h.Version,
	}
	return UpdateVersioned(ctx, r.DB, updateHandleVersionedQuery, args)
}

// IsReserved reports whether handleLower matches a reserved_handles row
// (spec §4.4 reserved-name check).
func (r *HandleRepo) IsReserved(ctx context.Context, handleLower string) (*ReservedHandle, bool, error) {
	var out ReservedHandle
	err := r.DB.GetContext(ctx, &out,
		`SELECT id, handle_lower, reservation_class, created_at
		 FROM reserved_handles WHERE handle_lower = $1`, handleLower)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, errs.Newf(errs.TransientError, "reserved handle: %v", err)
	}
	return &out, true, nil
}

// ProtectedCandidates returns protected-entry rows worth similarity-scoring
// against handleLower. The teacher has no analogue for this; spec §4.4
// leaves the exact prefilter unspecified, so this loads the full table,
// expected to be small (thousands, not millions, of protected names).
func (r *HandleRepo) ProtectedCandidates(ctx context.Context) ([]ProtectedEntry, error) {
	var out []ProtectedEntry
	err := r.DB.SelectContext(ctx, &out,
		`SELECT id, name, handle_lower, aliases, tier, threshold, claimed_by,
			claimed_at, created_at FROM protected_entries`)
	if err != nil {
		return nil, errs.Newf(errs.TransientError, "protected entries: %v", err)
	}
	return out, nil
}

func (r *HandleRepo) ClaimProtected(ctx context.Context, entryID, identityID uuid.UUID) error {
	now := timeNow()
	result, err := r.DB.ExecContext(ctx,
		`UPDATE protected_entries SET claimed_by = $1, claimed_at = $2
		 WHERE id = $3 AND claimed_by IS NULL`, identityID, now, entryID)
	if err != nil {
		return errs.Newf(errs.TransientError, "claim protected entry: %v", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return errs.New(errs.Conflict, "protected entry already claimed")
	}
	return nil
}

func timeNow() time.Time { return time.Now().UTC() }
