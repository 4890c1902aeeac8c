package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/entativa/eid/internal/errs"
	"github.com/entativa/eid/internal/svc"
	"github.com/entativa/eid/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type RefreshLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewRefreshLogic(ctx context.Context, svcCtx *svc.ServiceContext) *RefreshLogic {
	return &RefreshLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// Refresh rotates a refresh token and mints a fresh access token, per
// spec §3's rotate-on-use + family-reuse-detection design.
func (l *RefreshLogic) Refresh(req *types.RefreshRequest) (*types.TokenResponse, error) {
	if err := l.svcCtx.RateLimiter.Allow(l.ctx, "token:"+req.RefreshToken[:min(len(req.RefreshToken), 16)], l.svcCtx.Config.OAuth.TokenEndpointRateMin); err != nil {
		return nil, err
	}

	bearer, next, err := l.svcCtx.Refresh.Rotate(l.ctx, req.RefreshToken)
	if err != nil {
		return nil, err
	}
	if next.IdentityID == nil || next.SessionID == nil {
		return nil, errs.New(errs.InvalidGrant, "refresh token missing identity or session binding")
	}

	clientID, err := uuid.Parse(next.ClientID)
	if err != nil {
		return nil, errs.Newf(errs.Internal, "refresh token client_id: %v", err)
	}
	access, err := l.svcCtx.JWTIssuer.IssueAccessToken(*next.IdentityID, *next.SessionID, clientID, []string(next.Scopes))
	if err != nil {
		return nil, err
	}

	return &types.TokenResponse{
		AccessToken:  access,
		RefreshToken: bearer,
		TokenType:    "Bearer",
		ExpiresIn:    int64(l.svcCtx.Config.OAuth.AccessTokenTTL.Seconds()),
	}, nil
}
