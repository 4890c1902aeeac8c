package syncengine

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/entativa/eid/internal/store"
)

// Sweeper reclaims expired leases and promotes due retries on a cron
// schedule, the maintenance half of the worker binary.
type Sweeper struct {
	repo *store.SyncJobRepo
	cron *cron.Cron
}

// NewSweeper schedules both jobs with cron's seconds-optional five-field
// parser (same default the teacher's zrpc services assume for periodic
// maintenance tasks); spec in cron form, e.g. "@every 30s".
func NewSweeper(repo *store.SyncJobRepo, spec string) (*Sweeper, error) {
	s := &Sweeper{repo: repo, cron: cron.New()}
	ctx := context.Background()
	_, err := s.cron.AddFunc(spec, func() {
		s.sweep(ctx)
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Sweeper) sweep(ctx context.Context) {
	reclaimed, err := s.repo.ReclaimExpiredLeases(ctx)
	if err != nil {
		logx.WithContext(ctx).Errorf("syncengine sweeper: reclaim leases: %v", err)
	} else if reclaimed > 0 {
		logx.WithContext(ctx).Infof("syncengine sweeper: reclaimed %d expired leases", reclaimed)
	}

	promoted, err := s.repo.PromoteDueRetries(ctx)
	if err != nil {
		logx.WithContext(ctx).Errorf("syncengine sweeper: promote retries: %v", err)
	} else if promoted > 0 {
		logx.WithContext(ctx).Infof("syncengine sweeper: promoted %d due retries", promoted)
	}
}

func (s *Sweeper) Start() { s.cron.Start() }
func (s *Sweeper) Stop()  { s.cron.Stop() }
