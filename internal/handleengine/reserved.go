package handleengine

import (
	"context"

	"github.com/entativa/eid/internal/errs"
	"github.com/entativa/eid/internal/store"
)

// CheckReserved rejects a handle that matches a reserved_handles row (spec
// §4.4 step 3), attaching the reservation class to the error detail.
func CheckReserved(ctx context.Context, repo *store.HandleRepo, handleLower string) error {
	reserved, ok, err := repo.IsReserved(ctx, handleLower)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	return errs.Newf(errs.Reserved, "handle %q is reserved", handleLower).
		WithDetail("reservation_class", reserved.ReservationClass)
}

// CheckAvailable rejects a handle already in use by an active identity or
// handle row (spec §4.4 step 2).
func CheckAvailable(ctx context.Context, repo *store.HandleRepo, handle string) error {
	_, err := repo.GetByHandle(ctx, handle)
	if err == nil {
		return errs.Newf(errs.Taken, "handle %q is taken", handle)
	}
	if errs.Is(err, errs.NotFound) {
		return nil
	}
	return err
}
