package handles

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/entativa/eid/internal/errs"
	"github.com/entativa/eid/internal/svc"
	"github.com/entativa/eid/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type InitiateTransferLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewInitiateTransferLogic(ctx context.Context, svcCtx *svc.ServiceContext) *InitiateTransferLogic {
	return &InitiateTransferLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

func (l *InitiateTransferLogic) Initiate(req *types.HandleTransferInitiateRequest) (*types.HandleTransferInitiateResponse, error) {
	handleID, err := uuid.Parse(req.HandleID)
	if err != nil {
		return nil, errs.Newf(errs.InvalidArgument, "invalid handle_id: %v", err)
	}
	toIdentity, err := uuid.Parse(req.ToIdentity)
	if err != nil {
		return nil, errs.Newf(errs.InvalidArgument, "invalid to_identity: %v", err)
	}

	h, err := l.svcCtx.Handles.GetByID(l.ctx, handleID)
	if err != nil {
		return nil, err
	}
	if h.OwnerIdentityID.String() != req.FromOwner {
		return nil, errs.New(errs.Unauthenticated, "only the current owner may initiate a transfer")
	}

	token, err := l.svcCtx.TransferMgr.Initiate(l.ctx, h, toIdentity)
	if err != nil {
		return nil, err
	}
	return &types.HandleTransferInitiateResponse{
		TransferToken: token,
		ExpiresAt:     h.TransferExpiresAt.Format(time.RFC3339),
	}, nil
}

type ConfirmTransferLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewConfirmTransferLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ConfirmTransferLogic {
	return &ConfirmTransferLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

func (l *ConfirmTransferLogic) Confirm(req *types.HandleTransferConfirmRequest) error {
	handleID, err := uuid.Parse(req.HandleID)
	if err != nil {
		return errs.Newf(errs.InvalidArgument, "invalid handle_id: %v", err)
	}
	h, err := l.svcCtx.Handles.GetByID(l.ctx, handleID)
	if err != nil {
		return err
	}
	return l.svcCtx.TransferMgr.Confirm(l.ctx, h.HandleLower, req.TransferToken)
}
