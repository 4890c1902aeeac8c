package syncengine

import (
	"context"
	"time"

	"github.com/entativa/eid/internal/store"
)

// Resolve applies job's ConflictStrategy against a downstream conflict,
// returning the payload to retry with (spec §4.8): latest_wins keeps the
// local payload and simply retries, source_wins discards the local delta
// in favor of whatever the remote reported, manual marks the job
// has_conflicts and stops retrying until an operator intervenes.
func Resolve(job *store.SyncJob, conflict *ConflictInfo) (retryPayload store.JSONMap, needsManual bool) {
	switch job.ConflictStrategy {
	case store.ConflictSourceWins:
		return conflict.RemotePayload, false
	case store.ConflictManual:
		return nil, true
	default: // store.ConflictLatestWins
		return job.Payload, false
	}
}

// RecordConflict appends a conflict event and, for manual-strategy jobs,
// parks the job in failed status pending operator resolution.
func RecordConflict(ctx context.Context, repo *store.SyncJobRepo, job *store.SyncJob, conflict *ConflictInfo, needsManual bool) error {
	if err := repo.AppendEvent(ctx, job.ID, store.EventConflict, store.JSONMap{
		"remote_version": conflict.RemoteVersion,
		"strategy":        string(job.ConflictStrategy),
	}); err != nil {
		return err
	}
	job.HasConflicts = true
	if needsManual {
		job.Status = store.JobFailed
	}
	job.UpdatedAt = time.Now().UTC()
	return repo.UpdateStatus(ctx, job)
}
