package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/entativa/eid/internal/errs"
	"github.com/entativa/eid/internal/svc"
	"github.com/entativa/eid/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type CompleteMFALogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewCompleteMFALogic(ctx context.Context, svcCtx *svc.ServiceContext) *CompleteMFALogic {
	return &CompleteMFALogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *CompleteMFALogic) CompleteMFA(req *types.CompleteMFARequest) (*types.AuthResponse, error) {
	identityID, err := uuid.Parse(req.IdentityID)
	if err != nil {
		return nil, errs.Newf(errs.InvalidArgument, "invalid identity_id: %v", err)
	}
	methodID, err := uuid.Parse(req.MethodID)
	if err != nil {
		return nil, errs.Newf(errs.InvalidArgument, "invalid method_id: %v", err)
	}
	result, err := l.svcCtx.Facade.CompleteMFALogin(l.ctx, identityID, methodID, req.Device)
	if err != nil {
		return nil, err
	}
	return authResponse(result), nil
}
