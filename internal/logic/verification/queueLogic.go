package verification

import (
	"context"

	"github.com/entativa/eid/internal/svc"
	"github.com/entativa/eid/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type QueueLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewQueueLogic(ctx context.Context, svcCtx *svc.ServiceContext) *QueueLogic {
	return &QueueLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

func (l *QueueLogic) Queue() (*types.VerificationQueueResponse, error) {
	pending, err := l.svcCtx.VerifQueue.Pending(l.ctx, 0)
	if err != nil {
		return nil, err
	}
	resp := &types.VerificationQueueResponse{Requests: make([]types.VerificationRequestItem, 0, len(pending))}
	for _, r := range pending {
		resp.Requests = append(resp.Requests, types.VerificationRequestItem{
			ID:         r.ID.String(),
			IdentityID: r.IdentityID.String(),
			Type:       string(r.Type),
			Priority:   r.Priority,
			Status:     string(r.Status),
		})
	}
	return resp, nil
}
