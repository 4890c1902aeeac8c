package verification

import (
	"context"

	"github.com/entativa/eid/internal/errs"
	"github.com/entativa/eid/internal/store"
)

// AssignBadge maps a request's verification type to the badge granted on
// approval: celebrity -> gold, business -> business, government ->
// government, else -> blue.
func AssignBadge(reqType store.VerificationType) store.Badge {
	switch reqType {
	case store.VerifyCelebrity:
		return store.BadgeGold
	case store.VerifyBusiness:
		return store.BadgeBusiness
	case store.VerifyGovernment:
		return store.BadgeGovernment
	default:
		return store.BadgeBlue
	}
}

// IdentityBadger lets ApproveAndBadge set the badge on the identity being
// verified without this package importing internal/identity (C9 composes
// C7, not the other way around).
type IdentityBadger interface {
	SetBadge(ctx context.Context, identityID store.Identity, badge string) error
}

// ApproveAndBadge approves req and assigns the resulting badge in one
// transactional step from the caller's point of view: the badge write only
// happens once Approve has succeeded.
func ApproveAndBadge(ctx context.Context, pipeline *Pipeline, badger IdentityBadger, req *store.VerificationRequest, identity store.Identity) (store.Badge, error) {
	if err := pipeline.Approve(ctx, req); err != nil {
		return "", err
	}
	badge := AssignBadge(req.Type)
	if badger == nil {
		return badge, nil
	}
	if err := badger.SetBadge(ctx, identity, string(badge)); err != nil {
		return "", errs.Newf(errs.Internal, "set badge after approval: %v", err)
	}
	return badge, nil
}
