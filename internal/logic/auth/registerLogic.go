package auth

import (
	"context"

	"github.com/entativa/eid/internal/identity"
	"github.com/entativa/eid/internal/svc"
	"github.com/entativa/eid/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type RegisterLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewRegisterLogic(ctx context.Context, svcCtx *svc.ServiceContext) *RegisterLogic {
	return &RegisterLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *RegisterLogic) Register(req *types.RegisterRequest) (*types.AuthResponse, error) {
	result, err := l.svcCtx.Facade.Register(l.ctx, identity.RegisterRequest{
		Email:    req.Email,
		Password: req.Password,
		Handle:   req.Handle,
		Device:   req.Device,
	})
	if err != nil {
		return nil, err
	}
	return authResponse(result), nil
}

func authResponse(r *identity.AuthResult) *types.AuthResponse {
	resp := &types.AuthResponse{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		ExpiresIn:    r.ExpiresIn,
		IdentityID:   r.IdentityID.String(),
		MFARequired:  r.MFARequired,
	}
	if r.SessionID.String() != "00000000-0000-0000-0000-000000000000" {
		resp.SessionID = r.SessionID.String()
	}
	return resp
}
