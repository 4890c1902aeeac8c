package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/entativa/eid/internal/errs"
)

const syncJobColumns = `id, entity_type, entity_id, source_platform,
	target_platforms, payload, delta, status, priority, attempts,
	max_attempts, scheduled_at, next_retry_at, lease_owner, lease_expires_at,
	parent_job_id, rollback_data, rollback_job_id, payload_checksum,
	conflict_strategy, has_conflicts, is_batch_job, batch_id, batch_index,
	total_batches, started_at, version, created_at, updated_at`

// SyncJobRepo persists SyncJob rows and their dependency edges and append-
// only event log (spec §3/§4.8/§9).
type SyncJobRepo struct {
	*Base
}

func NewSyncJobRepo(base *Base) *SyncJobRepo {
	return &SyncJobRepo{Base: base}
}

func (r *SyncJobRepo) Create(ctx context.Context, j *SyncJob) error {
	return r.Transaction(ctx, func(tx *sqlx.Tx) error {
		return r.CreateTx(ctx, tx, j)
	})
}

// CreateTx is Create's transaction-scoped variant: the identity façade and
// other domain writers call this directly on their own transaction so the
// outbox job lands atomically with the mutation it represents (spec §4.9).
func (r *SyncJobRepo) CreateTx(ctx context.Context, tx *sqlx.Tx, j *SyncJob) error {
	_, err := sqlx.NamedExecContext(ctx, tx, `
		INSERT INTO sync_jobs (`+syncJobColumns+`)
		VALUES (:id, :entity_type, :entity_id, :source_platform,
			:target_platforms, :payload, :delta, :status, :priority,
			:attempts, :max_attempts, :scheduled_at, :next_retry_at,
			:lease_owner, :lease_expires_at, :parent_job_id,
			:rollback_data, :rollback_job_id, :payload_checksum,
			:conflict_strategy, :has_conflicts, :is_batch_job, :batch_id,
			:batch_index, :total_batches, :started_at, :version,
			:created_at, :updated_at)`, j)
	if err != nil {
		return wrapExec(err, "create sync job")
	}
	for _, dep := range j.DependsOn {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sync_job_deps (job_id, depends_on_job_id) VALUES ($1, $2)`,
			j.ID, dep); err != nil {
			return wrapExec(err, "create sync job dependency")
		}
	}
	return r.appendEventTx(ctx, tx, j.ID, EventEnqueued, nil)
}

func (r *SyncJobRepo) GetByID(ctx context.Context, id uuid.UUID) (*SyncJob, error) {
	var out SyncJob
	err := r.DB.GetContext(ctx, &out, `SELECT `+syncJobColumns+` FROM sync_jobs WHERE id = $1`, id)
	if err != nil {
		return nil, NotFoundOrErr("sync job", err)
	}
	if err := r.loadDeps(ctx, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *SyncJobRepo) loadDeps(ctx context.Context, j *SyncJob) error {
	var deps []uuid.UUID
	if err := r.DB.SelectContext(ctx, &deps,
		`SELECT depends_on_job_id FROM sync_job_deps WHERE job_id = $1`, j.ID); err != nil {
		return wrapExec(err, "load sync job deps")
	}
	j.DependsOn = deps
	var blocks []uuid.UUID
	if err := r.DB.SelectContext(ctx, &blocks,
		`SELECT job_id FROM sync_job_deps WHERE depends_on_job_id = $1`, j.ID); err != nil {
		return wrapExec(err, "load sync job blocks")
	}
	j.Blocks = blocks
	return nil
}

// DependenciesSatisfied reports whether every job in DependsOn has reached
// 'completed' — a job in waiting_deps becomes ready only once this is true.
func (r *SyncJobRepo) DependenciesSatisfied(ctx context.Context, jobID uuid.UUID) (bool, error) {
	var outstanding int
	err := r.DB.GetContext(ctx, &outstanding, `
		SELECT count(*) FROM sync_job_deps d
		JOIN sync_jobs j ON j.id = d.depends_on_job_id
		WHERE d.job_id = $1 AND j.status <> 'completed'`, jobID)
	if err != nil {
		return false, errs.Newf(errs.TransientError, "check sync job deps: %v", err)
	}
	return outstanding == 0, nil
}

// ListOutstandingByEntity returns every non-terminal job for
// (entityType, entityID), the lookup spec §4.4's handle-transfer flow needs
// to cancel-and-resubmit a handle's outstanding sync jobs by entity instead
// of by job id.
func (r *SyncJobRepo) ListOutstandingByEntity(ctx context.Context, entityType, entityID string) ([]SyncJob, error) {
	var out []SyncJob
	err := r.DB.SelectContext(ctx, &out, `
		SELECT `+syncJobColumns+` FROM sync_jobs
		WHERE entity_type = $1 AND entity_id = $2
		AND status NOT IN ('completed', 'failed', 'cancelled')`, entityType, entityID)
	if err != nil {
		return nil, errs.Newf(errs.TransientError, "list outstanding sync jobs: %v", err)
	}
	return out, nil
}

// LeaseNext atomically claims up to limit ready jobs for owner using
// SELECT ... FOR UPDATE SKIP LOCKED, the standard Postgres job-queue idiom —
// this module's equivalent of the teacher's absent queue-consumer code,
// grounded on spec §4.8's "lease" semantics and §5's concurrency model.
//
// The NOT EXISTS clause is §5's entity-ordering guarantee: a job never
// leases ahead of an older non-terminal job for the same
// (entity_type, entity_id), so two mutations of the same entity (e.g. a
// display-name update followed by another) always apply in commit order
// even when the later job's lease-eligibility window opens first.
func (r *SyncJobRepo) LeaseNext(ctx context.Context, owner string, leaseExpiresAt any, limit int) ([]SyncJob, error) {
	var jobs []SyncJob
	err := r.Transaction(ctx, func(tx *sqlx.Tx) error {
		rows, err := tx.QueryxContext(ctx, `
			SELECT `+syncJobColumns+` FROM sync_jobs j
			WHERE status = 'ready' AND scheduled_at <= now()
			AND NOT EXISTS (
				SELECT 1 FROM sync_jobs older
				WHERE older.entity_type = j.entity_type
				AND older.entity_id = j.entity_id
				AND older.id <> j.id
				AND older.created_at < j.created_at
				AND older.status NOT IN ('completed', 'cancelled', 'failed')
			)
			ORDER BY priority ASC, scheduled_at ASC
			LIMIT $1 FOR UPDATE SKIP LOCKED`, limit)
		if err != nil {
			return wrapExec(err, "select ready sync jobs")
		}
		defer rows.Close()
		var ids []uuid.UUID
		for rows.Next() {
			var j SyncJob
			if err := rows.StructScan(&j); err != nil {
				return wrapExec(err, "scan sync job")
			}
			jobs = append(jobs, j)
			ids = append(ids, j.ID)
		}
		if err := rows.Err(); err != nil {
			return wrapExec(err, "iterate sync jobs")
		}
		for i := range jobs {
			if _, err := tx.ExecContext(ctx, `
				UPDATE sync_jobs SET status = 'leased', lease_owner = $1,
					lease_expires_at = $2, version = version + 1
				WHERE id = $3`, owner, leaseExpiresAt, jobs[i].ID); err != nil {
				return wrapExec(err, "lease sync job")
			}
			jobs[i].Status = JobLeased
			jobs[i].LeaseOwner = &owner
			if err := r.appendEventTx(ctx, tx, jobs[i].ID, EventLeased, JSONMap{"owner": owner}); err != nil {
				return err
			}
		}
		return nil
	})
	return jobs, err
}

// ReclaimExpiredLeases resets jobs whose lease has expired back to ready —
// the sweeper's core query (spec §5: "the lease must be renewed or the job
// is reclaimed").
func (r *SyncJobRepo) ReclaimExpiredLeases(ctx context.Context) (int64, error) {
	result, err := r.DB.ExecContext(ctx, `
		UPDATE sync_jobs SET status = 'ready', lease_owner = NULL,
			lease_expires_at = NULL, version = version + 1
		WHERE status IN ('leased', 'processing') AND lease_expires_at < now()`)
	if err != nil {
		return 0, errs.Newf(errs.TransientError, "reclaim expired leases: %v", err)
	}
	rows, _ := result.RowsAffected()
	return rows, nil
}

// PromoteDueRetries flips retrying jobs whose backoff window has elapsed
// back to ready, the sweeper's counterpart to ReclaimExpiredLeases.
func (r *SyncJobRepo) PromoteDueRetries(ctx context.Context) (int64, error) {
	result, err := r.DB.ExecContext(ctx, `
		UPDATE sync_jobs SET status = 'ready', version = version + 1
		WHERE status = 'retrying' AND next_retry_at <= now()`)
	if err != nil {
		return 0, errs.Newf(errs.TransientError, "promote due retries: %v", err)
	}
	rows, _ := result.RowsAffected()
	return rows, nil
}

func (r *SyncJobRepo) UpdateStatus(ctx context.Context, j *SyncJob) error {
	args := map[string]any{
		"status":           j.Status,
		"attempts":         j.Attempts,
		"next_retry_at":    j.NextRetryAt,
		"lease_owner":      j.LeaseOwner,
		"lease_expires_at": j.LeaseExpiresAt,
		"has_conflicts":    j.HasConflicts,
		"started_at":       j.StartedAt,
		"updated_at":       j.UpdatedAt,
		"id":               j.ID,
		"version":          j.Version,
	}
	return UpdateVersioned(ctx, r.DB, `
		UPDATE sync_jobs SET status = :status, attempts = :attempts,
			next_retry_at = :next_retry_at, lease_owner = :lease_owner,
			lease_expires_at = :lease_expires_at, has_conflicts = :has_conflicts,
			started_at = :started_at, version = version + 1, updated_at = :updated_at
		WHERE id = :id AND version = :version`, args)
}

// UpdateBatchMeta persists the batch tagging fields set after a batch
// job is created (spec §4.8: is_batch_job/batch_id/batch_index/total_batches).
func (r *SyncJobRepo) UpdateBatchMeta(ctx context.Context, j *SyncJob) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE sync_jobs SET is_batch_job = $1, batch_id = $2, batch_index = $3,
			total_batches = $4
		WHERE id = $5`, j.IsBatchJob, j.BatchID, j.BatchIndex, j.TotalBatches, j.ID)
	return wrapExec(err, "update sync job batch metadata")
}

func (r *SyncJobRepo) AppendEvent(ctx context.Context, jobID uuid.UUID, typ JobEventType, detail JSONMap) error {
	return r.appendEventTx(ctx, r.DB, jobID, typ, detail)
}

func (r *SyncJobRepo) appendEventTx(ctx context.Context, ext sqlx.ExtContext, jobID uuid.UUID, typ JobEventType, detail JSONMap) error {
	if detail == nil {
		detail = JSONMap{}
	}
	_, err := sqlx.NamedExecContext(ctx, ext, `
		INSERT INTO sync_job_events (id, job_id, type, detail, created_at)
		VALUES (:id, :job_id, :type, :detail, :created_at)`, &JobEvent{
		ID:        uuid.New(),
		JobID:     jobID,
		Type:      typ,
		Detail:    detail,
		CreatedAt: timeNow(),
	})
	return wrapExec(err, "append sync job event")
}

func (r *SyncJobRepo) ListEvents(ctx context.Context, jobID uuid.UUID) ([]JobEvent, error) {
	var out []JobEvent
	err := r.DB.SelectContext(ctx, &out, `
		SELECT id, job_id, type, detail, created_at
		FROM sync_job_events WHERE job_id = $1 ORDER BY created_at ASC`, jobID)
	return out, wrapExec(err, "list sync job events")
}
