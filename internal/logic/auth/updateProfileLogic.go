package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/entativa/eid/internal/errs"
	"github.com/entativa/eid/internal/svc"
	"github.com/entativa/eid/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type UpdateProfileLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewUpdateProfileLogic(ctx context.Context, svcCtx *svc.ServiceContext) *UpdateProfileLogic {
	return &UpdateProfileLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *UpdateProfileLogic) UpdateProfile(req *types.UpdateProfileRequest) error {
	identityID, err := uuid.Parse(req.IdentityID)
	if err != nil {
		return errs.Newf(errs.InvalidArgument, "invalid identity_id: %v", err)
	}
	return l.svcCtx.Facade.UpdateDisplayName(l.ctx, identityID, req.DisplayName)
}
