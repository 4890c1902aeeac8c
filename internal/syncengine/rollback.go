package syncengine

import (
	"context"
	"time"

	"github.com/entativa/eid/internal/errs"
	"github.com/entativa/eid/internal/store"
)

// Rollback undoes a job that exhausted its retries or was explicitly
// cancelled mid-flight, by enqueuing a new job carrying RollbackData as
// its payload against the same entity (spec §4.8: "a failed job whose
// targets were partially applied rolls back the platforms it reached").
func Rollback(ctx context.Context, queue *Queue, repo *store.SyncJobRepo, job *store.SyncJob) (*store.SyncJob, error) {
	if job.RollbackData == nil {
		return nil, errs.New(errs.PermanentError, "job has no rollback data recorded")
	}
	rollback, err := queue.Enqueue(ctx, EnqueueRequest{
		EntityType:      job.EntityType,
		EntityID:        job.EntityID,
		SourcePlatform:  job.SourcePlatform,
		TargetPlatforms: job.TargetPlatforms,
		Payload:         job.RollbackData,
		Priority:        store.PriorityCritical,
		ParentJobID:     &job.ID,
		MaxAttempts:     job.MaxAttempts,
	})
	if err != nil {
		return nil, err
	}

	job.RollbackJobID = &rollback.ID
	job.UpdatedAt = time.Now().UTC()
	if err := repo.UpdateStatus(ctx, job); err != nil {
		return nil, err
	}
	if err := repo.AppendEvent(ctx, job.ID, store.EventRolledBack, store.JSONMap{"rollback_job_id": rollback.ID.String()}); err != nil {
		return nil, err
	}
	return rollback, nil
}
