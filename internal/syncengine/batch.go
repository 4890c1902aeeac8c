package syncengine

import (
	"context"

	"github.com/google/uuid"

	"github.com/entativa/eid/internal/store"
)

// EnqueueBatch splits entities into jobs of at most batchSize each, all
// tagged with a shared batch id so a sweep or admin query can track
// completion as a unit (spec §4.8's batch fields: is_batch_job, batch_id,
// batch_index, total_batches).
func (q *Queue) EnqueueBatch(ctx context.Context, entityType, sourcePlatform string, targets []string, entities []store.JSONMap, batchSize int, priority store.SyncPriority) ([]*store.SyncJob, error) {
	if batchSize <= 0 {
		batchSize = 32
	}
	batchID := uuid.New()
	var chunks [][]store.JSONMap
	for i := 0; i < len(entities); i += batchSize {
		end := i + batchSize
		if end > len(entities) {
			end = len(entities)
		}
		chunks = append(chunks, entities[i:end])
	}

	jobs := make([]*store.SyncJob, 0, len(chunks))
	for idx, chunk := range chunks {
		payload := store.JSONMap{"items": chunk}
		job, err := q.Enqueue(ctx, EnqueueRequest{
			EntityType:      entityType,
			EntityID:        batchID.String(),
			SourcePlatform:  sourcePlatform,
			TargetPlatforms: targets,
			Payload:         payload,
			Priority:        priority,
		})
		if err != nil {
			return jobs, err
		}
		job.IsBatchJob = true
		job.BatchID = &batchID
		job.BatchIndex = idx
		job.TotalBatches = len(chunks)
		if err := q.repo.UpdateBatchMeta(ctx, job); err != nil {
			return jobs, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}
