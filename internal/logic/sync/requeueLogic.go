package sync

import (
	"context"

	"github.com/google/uuid"

	"github.com/entativa/eid/internal/errs"
	"github.com/entativa/eid/internal/svc"
	"github.com/entativa/eid/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type RequeueLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewRequeueLogic(ctx context.Context, svcCtx *svc.ServiceContext) *RequeueLogic {
	return &RequeueLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

func (l *RequeueLogic) Requeue(req *types.JobRequeueRequest) error {
	id, err := uuid.Parse(req.JobID)
	if err != nil {
		return errs.Newf(errs.InvalidArgument, "invalid job id: %v", err)
	}
	return l.svcCtx.SyncAdmin.Requeue(l.ctx, id)
}
