package verification

import (
	"context"

	"github.com/google/uuid"

	"github.com/entativa/eid/internal/errs"
	"github.com/entativa/eid/internal/store"
	"github.com/entativa/eid/internal/svc"
	"github.com/entativa/eid/internal/types"
	"github.com/entativa/eid/internal/verification"

	"github.com/zeromicro/go-zero/core/logx"
)

type ApproveLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewApproveLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ApproveLogic {
	return &ApproveLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

// Approve assigns the request to the "system" reviewer if it hasn't been
// picked up yet, approves it, and applies the resulting badge.
func (l *ApproveLogic) Approve(req *types.VerificationApproveRequest) (*types.VerificationApproveResponse, error) {
	requestID, err := uuid.Parse(req.RequestID)
	if err != nil {
		return nil, errs.Newf(errs.InvalidArgument, "invalid request_id: %v", err)
	}
	identityID, err := uuid.Parse(req.IdentityID)
	if err != nil {
		return nil, errs.Newf(errs.InvalidArgument, "invalid identity_id: %v", err)
	}

	vr, err := l.svcCtx.Verifs.GetByID(l.ctx, requestID)
	if err != nil {
		return nil, err
	}
	if vr.Status == store.ReqSubmitted || vr.Status == store.ReqNeedsInfo {
		if err := l.svcCtx.Pipeline.Assign(l.ctx, vr, "system"); err != nil {
			return nil, err
		}
	}

	id, err := l.svcCtx.Identities.GetByID(l.ctx, identityID)
	if err != nil {
		return nil, err
	}

	badge, err := verification.ApproveAndBadge(l.ctx, l.svcCtx.Pipeline, l.svcCtx.Facade, vr, *id)
	if err != nil {
		return nil, err
	}
	return &types.VerificationApproveResponse{Badge: string(badge)}, nil
}
