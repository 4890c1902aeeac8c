package handleengine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/entativa/eid/internal/errs"
	"github.com/entativa/eid/internal/store"
)

// VerificationRequester is the slice of C7 this package depends on, kept
// as an interface so handleengine never imports internal/verification
// (which itself depends on handle state for badge assignment).
type VerificationRequester interface {
	Open(ctx context.Context, identityID uuid.UUID, kind store.VerificationType, priority int) (*store.VerificationRequest, error)
}

// ClaimManager runs spec §4.4's claim workflow for protected handles.
type ClaimManager struct {
	handles *store.HandleRepo
	verify  VerificationRequester
}

func NewClaimManager(handles *store.HandleRepo, verify VerificationRequester) *ClaimManager {
	return &ClaimManager{handles: handles, verify: verify}
}

// RequestClaim opens a verification request for a protected handle match,
// with priority derived from the entry's tier (ultra_high -> 1, high -> 2,
// medium -> 3).
func (m *ClaimManager) RequestClaim(ctx context.Context, claimant uuid.UUID, match ProtectedMatch) (*store.VerificationRequest, error) {
	priority := match.Entry.Tier.ClaimPriority()
	return m.verify.Open(ctx, claimant, store.VerifyCelebrity, priority)
}

// Approve finalizes a claim once its verification request has been
// approved (called from C7's approval path): it writes the handle row
// with owner_identity_id = claimant, status = active, and marks the
// protected entry claimed, all inside one transaction (spec §4.4).
func (m *ClaimManager) Approve(ctx context.Context, entryID uuid.UUID, claimant uuid.UUID, handle string) error {
	now := time.Now().UTC()
	return m.handles.Transaction(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE protected_entries SET claimed_by = $1, claimed_at = $2
			 WHERE id = $3 AND claimed_by IS NULL`, claimant, now, entryID)
		if err != nil {
			return errs.Newf(errs.TransientError, "claim protected entry: %v", err)
		}
		if rows, _ := result.RowsAffected(); rows == 0 {
			return errs.New(errs.Conflict, "protected entry already claimed")
		}

		lower := Normalize(handle)
		res, err := tx.ExecContext(ctx,
			`UPDATE handles SET owner_identity_id = $1, status = $2, version = version + 1, updated_at = $3
			 WHERE handle_lower = $4`, claimant, store.HandleActive, now, lower)
		if err != nil {
			return errs.Newf(errs.TransientError, "update handle owner: %v", err)
		}
		if rows, _ := res.RowsAffected(); rows > 0 {
			return nil
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO handles (id, handle, handle_lower, owner_identity_id, status,
				is_protected, version, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, true, 0, $6, $6)`,
			uuid.New(), handle, lower, claimant, store.HandleActive, now)
		if err != nil {
			return errs.Newf(errs.TransientError, "create claimed handle: %v", err)
		}
		return nil
	})
}
