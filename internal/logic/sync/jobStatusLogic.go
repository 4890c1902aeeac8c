package sync

import (
	"context"

	"github.com/google/uuid"

	"github.com/entativa/eid/internal/errs"
	"github.com/entativa/eid/internal/svc"
	"github.com/entativa/eid/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type JobStatusLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewJobStatusLogic(ctx context.Context, svcCtx *svc.ServiceContext) *JobStatusLogic {
	return &JobStatusLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

func (l *JobStatusLogic) JobStatus(jobID string) (*types.JobStatusResponse, error) {
	id, err := uuid.Parse(jobID)
	if err != nil {
		return nil, errs.Newf(errs.InvalidArgument, "invalid job id: %v", err)
	}
	job, err := l.svcCtx.SyncAdmin.JobStatus(l.ctx, id)
	if err != nil {
		return nil, err
	}
	return &types.JobStatusResponse{
		ID:           job.ID.String(),
		Status:       string(job.Status),
		Attempts:     job.Attempts,
		MaxAttempts:  job.MaxAttempts,
		HasConflicts: job.HasConflicts,
	}, nil
}
