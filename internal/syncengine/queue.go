// Package syncengine is the cross-platform sync engine (C8): the outbox
// queue, worker pool, conflict/rollback handling, and lease sweeper that
// fan an identity mutation out to every connected downstream platform.
// Grounded on spec §4.8/§5/§9 and on internal/store's SyncJobRepo, which
// already carries the Postgres SELECT ... FOR UPDATE SKIP LOCKED lease
// query this package drives.
package syncengine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/entativa/eid/internal/store"
)

// EnqueueRequest describes one outbox entry to create.
type EnqueueRequest struct {
	EntityType       string
	EntityID         string
	SourcePlatform   string
	TargetPlatforms  []string
	Payload          store.JSONMap
	Delta            store.JSONMap
	Priority         store.SyncPriority
	ConflictStrategy store.ConflictStrategy
	DependsOn        []uuid.UUID
	ParentJobID      *uuid.UUID
	MaxAttempts      int
}

// Queue wraps SyncJobRepo with the enqueue-time invariants spec §4.8
// requires: a payload checksum, a default conflict strategy, and the
// waiting_deps/ready split based on whether DependsOn is empty.
type Queue struct {
	repo *store.SyncJobRepo
}

func NewQueue(repo *store.SyncJobRepo) *Queue {
	return &Queue{repo: repo}
}

func checksum(payload store.JSONMap) string {
	b, _ := json.Marshal(payload)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Enqueue writes a new SyncJob in the same transaction as its dependency
// edges (the outbox pattern: the job and its edges appear atomically with
// whatever domain write triggered them). Callers that already hold an open
// transaction for the triggering domain write should use EnqueueTx instead,
// so the outbox job lands in that same transaction (spec §4.9).
func (q *Queue) Enqueue(ctx context.Context, req EnqueueRequest) (*store.SyncJob, error) {
	var job *store.SyncJob
	err := q.repo.Transaction(ctx, func(tx *sqlx.Tx) error {
		j, err := q.EnqueueTx(ctx, tx, req)
		if err != nil {
			return err
		}
		job = j
		return nil
	})
	return job, err
}

// EnqueueTx builds and inserts a job on tx, the transaction-scoped variant
// of Enqueue. This is the outbox pattern's load-bearing call: it lets a
// domain write (identity registration, handle allocation, profile update)
// enqueue its sync job on the same transaction as the write itself, so the
// two commit or roll back together.
func (q *Queue) EnqueueTx(ctx context.Context, tx *sqlx.Tx, req EnqueueRequest) (*store.SyncJob, error) {
	if req.MaxAttempts <= 0 {
		req.MaxAttempts = 5
	}
	if req.ConflictStrategy == "" {
		req.ConflictStrategy = store.ConflictLatestWins
	}
	if req.Priority == 0 {
		req.Priority = store.PriorityNormal
	}
	status := store.JobReady
	if len(req.DependsOn) > 0 {
		status = store.JobWaitingDeps
	}
	now := time.Now().UTC()
	job := &store.SyncJob{
		ID:               uuid.New(),
		EntityType:       req.EntityType,
		EntityID:         req.EntityID,
		SourcePlatform:   req.SourcePlatform,
		TargetPlatforms:  req.TargetPlatforms,
		Payload:          req.Payload,
		Delta:            req.Delta,
		Status:           status,
		Priority:         req.Priority,
		MaxAttempts:      req.MaxAttempts,
		ScheduledAt:      now,
		DependsOn:        req.DependsOn,
		ParentJobID:      req.ParentJobID,
		PayloadChecksum:  checksum(req.Payload),
		ConflictStrategy: req.ConflictStrategy,
		Versioned:        store.Versioned{CreatedAt: now, UpdatedAt: now},
	}
	if err := q.repo.CreateTx(ctx, tx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// PromoteReady flips a waiting_deps job to ready once every dependency has
// completed (spec §4.8: dependency edges gate readiness, not the lease).
func (q *Queue) PromoteReady(ctx context.Context, jobID uuid.UUID) error {
	ok, err := q.repo.DependenciesSatisfied(ctx, jobID)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	job, err := q.repo.GetByID(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Status != store.JobWaitingDeps {
		return nil
	}
	job.Status = store.JobReady
	job.UpdatedAt = time.Now().UTC()
	return q.repo.UpdateStatus(ctx, job)
}

// EntityHandle is the entity_type tag used for every sync job whose
// entity_id is a Handle's id (spec §4.4's transfer-resubmit flow and
// §4.9's handle-allocation outbox writes).
const EntityHandle = "handle"

// EntityIdentity is the entity_type tag used for every sync job whose
// entity_id is an Identity's id (registration and profile-field outbox
// writes, spec §2/§4.9).
const EntityIdentity = "identity"

// ReassignOwner cancels-and-resubmits every outstanding (non-terminal) sync
// job for the handle identified by handleID, implementing
// handleengine.SyncResubmitter: spec §4.4 requires "outstanding sync jobs
// cancelled-and-resubmitted with new owner id." handleID is the Handle's
// id, not a sync_job id — jobs are looked up by (entity_type, entity_id).
func (q *Queue) ReassignOwner(ctx context.Context, handleID uuid.UUID, newOwner uuid.UUID) error {
	jobs, err := q.repo.ListOutstandingByEntity(ctx, EntityHandle, handleID.String())
	if err != nil {
		return err
	}
	for i := range jobs {
		job := &jobs[i]
		if isTerminal(job.Status) {
			continue
		}
		job.Status = store.JobCancelled
		job.UpdatedAt = time.Now().UTC()
		if err := q.repo.UpdateStatus(ctx, job); err != nil {
			return err
		}
		if job.Payload == nil {
			job.Payload = store.JSONMap{}
		}
		job.Payload["new_owner_identity_id"] = newOwner.String()
		if _, err := q.Enqueue(ctx, EnqueueRequest{
			EntityType:       job.EntityType,
			EntityID:         job.EntityID,
			SourcePlatform:   job.SourcePlatform,
			TargetPlatforms:  job.TargetPlatforms,
			Payload:          job.Payload,
			Priority:         job.Priority,
			ConflictStrategy: job.ConflictStrategy,
			MaxAttempts:      job.MaxAttempts,
		}); err != nil {
			return err
		}
	}
	return nil
}

func isTerminal(s store.SyncJobStatus) bool {
	switch s {
	case store.JobCompleted, store.JobFailed, store.JobCancelled:
		return true
	default:
		return false
	}
}
