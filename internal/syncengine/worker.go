package syncengine

import (
	"context"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/threading"

	"github.com/entativa/eid/internal/store"
)

// Worker leases ready jobs and drives each target platform through its
// Adapter, retrying with Backoff and handing off to Resolve/Rollback on
// conflict or exhaustion. Concurrency is a go-zero threading.TaskRunner
// pool, the same primitive the teacher's background jobs use for bounded
// fan-out.
type Worker struct {
	Name        string
	Repo        *store.SyncJobRepo
	Queue       *Queue
	Adapter     Adapter
	Backoff     Backoff
	LeaseFor    time.Duration
	Concurrency int
	BatchLimit  int
}

func NewWorker(name string, repo *store.SyncJobRepo, queue *Queue, adapter Adapter, backoff Backoff, concurrency, batchLimit int) *Worker {
	if concurrency <= 0 {
		concurrency = 8
	}
	if batchLimit <= 0 {
		batchLimit = concurrency * 2
	}
	return &Worker{
		Name:        name,
		Repo:        repo,
		Queue:       queue,
		Adapter:     adapter,
		Backoff:     backoff,
		LeaseFor:    5 * time.Minute,
		Concurrency: concurrency,
		BatchLimit:  batchLimit,
	}
}

// Tick leases one batch of ready jobs and processes them across a bounded
// worker pool, returning once every leased job has been handled.
func (w *Worker) Tick(ctx context.Context) error {
	leaseExpiry := time.Now().UTC().Add(w.LeaseFor)
	jobs, err := w.Repo.LeaseNext(ctx, w.Name, leaseExpiry, w.BatchLimit)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		return nil
	}

	runner := threading.NewTaskRunner(w.Concurrency)
	for i := range jobs {
		job := jobs[i]
		runner.Schedule(func() {
			if err := w.process(ctx, &job); err != nil {
				logx.WithContext(ctx).Errorf("syncengine: job %s failed: %v", job.ID, err)
			}
		})
	}
	runner.Wait()
	return nil
}

// Run loops Tick on interval until ctx is cancelled, the composition
// root's entry point for the worker binary.
func (w *Worker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.Tick(ctx); err != nil {
				logx.WithContext(ctx).Errorf("syncengine: tick failed: %v", err)
			}
		}
	}
}

func (w *Worker) process(ctx context.Context, job *store.SyncJob) error {
	job.Status = store.JobProcessing
	now := time.Now().UTC()
	job.StartedAt = &now
	job.UpdatedAt = now
	if err := w.Repo.UpdateStatus(ctx, job); err != nil {
		return err
	}
	if err := w.Repo.AppendEvent(ctx, job.ID, store.EventStarted, nil); err != nil {
		return err
	}

	for _, platform := range job.TargetPlatforms {
		conflict, err := w.Adapter.Apply(ctx, platform, job)
		if err != nil {
			return w.handleFailure(ctx, job, err)
		}
		if conflict != nil {
			payload, needsManual := Resolve(job, conflict)
			if err := RecordConflict(ctx, w.Repo, job, conflict, needsManual); err != nil {
				return err
			}
			if needsManual {
				return nil
			}
			job.Payload = payload
		}
		if err := w.Repo.AppendEvent(ctx, job.ID, store.EventTargetDone, store.JSONMap{"platform": platform}); err != nil {
			return err
		}
	}

	job.Status = store.JobCompleted
	job.UpdatedAt = time.Now().UTC()
	if err := w.Repo.UpdateStatus(ctx, job); err != nil {
		return err
	}
	return w.Repo.AppendEvent(ctx, job.ID, store.EventCompleted, nil)
}

func (w *Worker) handleFailure(ctx context.Context, job *store.SyncJob, cause error) error {
	job.Attempts++
	if job.Attempts >= job.MaxAttempts {
		job.Status = store.JobFailed
		job.UpdatedAt = time.Now().UTC()
		if err := w.Repo.UpdateStatus(ctx, job); err != nil {
			return err
		}
		if err := w.Repo.AppendEvent(ctx, job.ID, store.EventFailed, store.JSONMap{"error": cause.Error()}); err != nil {
			return err
		}
		if job.RollbackData != nil {
			_, err := Rollback(ctx, w.Queue, w.Repo, job)
			return err
		}
		return nil
	}

	delay := w.Backoff.Next(job.Attempts)
	next := time.Now().UTC().Add(delay)
	job.Status = store.JobRetrying
	job.NextRetryAt = &next
	job.UpdatedAt = time.Now().UTC()
	if err := w.Repo.UpdateStatus(ctx, job); err != nil {
		return err
	}
	return w.Repo.AppendEvent(ctx, job.ID, store.EventRetried, store.JSONMap{
		"attempt": job.Attempts,
		"delay_ms": delay.Milliseconds(),
		"error":    cause.Error(),
	})
}
