package syncengine

import (
	"context"

	"github.com/google/uuid"

	"github.com/entativa/eid/internal/errs"
	"github.com/entativa/eid/internal/store"
)

// Admin exposes the operator controls spec §4.8 requires for stuck or
// manual-conflict jobs: force-requeue, cancel, and a status lookup. This
// is the logic layer the SyncAdmin gRPC service (syncadminpb) wraps, kept
// separate from the wire glue the way the teacher keeps its rpc logic
// structs separate from the generated service stubs.
type Admin struct {
	repo  *store.SyncJobRepo
	queue *Queue
}

func NewAdmin(repo *store.SyncJobRepo, queue *Queue) *Admin {
	return &Admin{repo: repo, queue: queue}
}

// JobStatus returns a job's current status, attempt count, and conflict
// flag for operator inspection.
func (a *Admin) JobStatus(ctx context.Context, jobID uuid.UUID) (*store.SyncJob, error) {
	return a.repo.GetByID(ctx, jobID)
}

// Requeue resets a failed or manually-conflicted job back to ready with a
// fresh attempt counter, for an operator who has resolved the underlying
// issue out of band.
func (a *Admin) Requeue(ctx context.Context, jobID uuid.UUID) error {
	job, err := a.repo.GetByID(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Status != store.JobFailed {
		return errs.Newf(errs.Conflict, "job %s is not failed (status=%s)", jobID, job.Status)
	}
	job.Status = store.JobReady
	job.Attempts = 0
	job.HasConflicts = false
	job.NextRetryAt = nil
	if err := a.repo.UpdateStatus(ctx, job); err != nil {
		return err
	}
	return a.repo.AppendEvent(ctx, job.ID, store.EventRetried, store.JSONMap{"requeued_by": "admin"})
}

// Cancel marks a non-terminal job cancelled, refusing to touch one that
// has already finished or failed.
func (a *Admin) Cancel(ctx context.Context, jobID uuid.UUID) error {
	job, err := a.repo.GetByID(ctx, jobID)
	if err != nil {
		return err
	}
	if isTerminal(job.Status) {
		return errs.Newf(errs.Conflict, "job %s already terminal (status=%s)", jobID, job.Status)
	}
	job.Status = store.JobCancelled
	if err := a.repo.UpdateStatus(ctx, job); err != nil {
		return err
	}
	return a.repo.AppendEvent(ctx, job.ID, store.EventCancelled, store.JSONMap{"cancelled_by": "admin"})
}
