package handles

import (
	"context"

	"github.com/entativa/eid/internal/handleengine"
	"github.com/entativa/eid/internal/svc"
	"github.com/entativa/eid/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type ValidateHandleLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewValidateHandleLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ValidateHandleLogic {
	return &ValidateHandleLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *ValidateHandleLogic) ValidateHandle(req *types.HandleValidateRequest) (*types.HandleValidateResponse, error) {
	result := l.svcCtx.HandleEngine.Validate(l.ctx, req.Handle)
	resp := &types.HandleValidateResponse{
		Status:      string(result.Status),
		Suggestions: result.Suggestions,
	}
	if result.Status == handleengine.StatusRejected && result.Err != nil {
		resp.Reason = result.Err.Error()
	}
	return resp, nil
}
