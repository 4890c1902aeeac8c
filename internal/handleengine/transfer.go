package handleengine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/entativa/eid/internal/crypto"
	"github.com/entativa/eid/internal/errs"
	"github.com/entativa/eid/internal/store"
)

// TransferWindow bounds how long a pending transfer stays claimable before
// it auto-reverts to the original owner (spec §4.4).
const TransferWindow = 24 * time.Hour

// SyncResubmitter lets TransferManager cancel and resubmit a handle's
// outstanding sync jobs under the new owner without this package importing
// internal/syncengine directly.
type SyncResubmitter interface {
	ReassignOwner(ctx context.Context, handleID uuid.UUID, newOwner uuid.UUID) error
}

// TransferManager runs the two-phase handle transfer workflow.
type TransferManager struct {
	handles *store.HandleRepo
	sync    SyncResubmitter
}

func NewTransferManager(handles *store.HandleRepo, sync SyncResubmitter) *TransferManager {
	return &TransferManager{handles: handles, sync: sync}
}

// Initiate moves a handle into status=transferring and issues a
// time-bounded transfer token, returned in the clear exactly once (only
// its hash is persisted).
func (m *TransferManager) Initiate(ctx context.Context, h *store.Handle, receiver uuid.UUID) (token string, err error) {
	if h.Status != store.HandleActive {
		return "", errs.New(errs.TransferConflict, "handle is not active")
	}
	token, err = crypto.RandomToken(32)
	if err != nil {
		return "", err
	}
	hash := crypto.HashToken(token)
	expires := time.Now().UTC().Add(TransferWindow)

	h.Status = store.HandleTransferring
	h.TransferTokenHash = &hash
	h.TransferExpiresAt = &expires
	h.TransferToIdentityID = &receiver
	h.UpdatedAt = time.Now().UTC()

	if err := m.handles.Update(ctx, h); err != nil {
		return "", err
	}
	return token, nil
}

// Confirm completes a pending transfer when the receiver presents the
// correct token within the window. An expired transfer auto-reverts to
// active under the original owner and returns errs.TransferExpired.
func (m *TransferManager) Confirm(ctx context.Context, handleLower, token string) error {
	h, err := m.handles.GetByHandle(ctx, handleLower)
	if err != nil {
		return err
	}
	if h.Status != store.HandleTransferring || h.TransferTokenHash == nil {
		return errs.New(errs.TransferConflict, "no pending transfer for this handle")
	}
	if h.TransferExpiresAt != nil && time.Now().UTC().After(*h.TransferExpiresAt) {
		if revertErr := m.revert(ctx, h); revertErr != nil {
			return revertErr
		}
		return errs.New(errs.TransferExpired, "transfer window has elapsed")
	}
	if crypto.HashToken(token) != *h.TransferTokenHash {
		return errs.New(errs.InvalidToken, "transfer token mismatch")
	}
	if h.TransferToIdentityID == nil {
		return errs.New(errs.TransferConflict, "transfer missing receiver")
	}

	newOwner := *h.TransferToIdentityID
	return m.handles.Transaction(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE handles SET owner_identity_id = $1, status = $2,
				transfer_token_hash = NULL, transfer_expires_at = NULL,
				transfer_to_identity_id = NULL, version = version + 1, updated_at = $3
			 WHERE id = $4 AND version = $5`,
			newOwner, store.HandleActive, time.Now().UTC(), h.ID, h.Version)
		if err != nil {
			return errs.Newf(errs.TransientError, "confirm transfer: %v", err)
		}
		if rows, _ := res.RowsAffected(); rows == 0 {
			return errs.New(errs.Conflict, "handle changed concurrently, retry")
		}
		if m.sync != nil {
			return m.sync.ReassignOwner(ctx, h.ID, newOwner)
		}
		return nil
	})
}

// revert restores h to status=active under its original owner, discarding
// the pending transfer (spec §4.4: "expired tokens auto-revert").
func (m *TransferManager) revert(ctx context.Context, h *store.Handle) error {
	h.Status = store.HandleActive
	h.TransferTokenHash = nil
	h.TransferExpiresAt = nil
	h.TransferToIdentityID = nil
	h.UpdatedAt = time.Now().UTC()
	return m.handles.Update(ctx, h)
}

// Cancel lets the current owner abort a pending transfer before the
// receiver confirms it.
func (m *TransferManager) Cancel(ctx context.Context, h *store.Handle) error {
	if h.Status != store.HandleTransferring {
		return errs.New(errs.TransferConflict, "no pending transfer to cancel")
	}
	return m.revert(ctx, h)
}
