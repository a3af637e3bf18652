package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/savethebee/honeyweb/internal/metrics"
)

const (
	DefaultFortuneRetention = 30 * 24 * time.Hour
	pruneSchedule           = "@daily"
	jobTimeout              = time.Minute
)

// FortunePruner deletes fortune access rows older than a cutoff.
type FortunePruner interface {
	PruneFortuneAccesses(ctx context.Context, cutoff time.Time) (int64, error)
}

// Scheduler runs housekeeping jobs on a cron schedule in UTC.
type Scheduler struct {
	cron      *cron.Cron
	fortunes  FortunePruner
	retention time.Duration
	now       func() time.Time
}

func NewScheduler(fortunes FortunePruner, retention time.Duration) *Scheduler {
	if retention <= 0 {
		retention = DefaultFortuneRetention
	}
	return &Scheduler{
		cron:      cron.New(cron.WithLocation(time.UTC)),
		fortunes:  fortunes,
		retention: retention,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(pruneSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		s.PruneFortunes(ctx)
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	slog.Info("Scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// PruneFortunes removes fortune rows not touched within the retention window.
func (s *Scheduler) PruneFortunes(ctx context.Context) error {
	cutoff := s.now().Add(-s.retention)
	n, err := s.fortunes.PruneFortuneAccesses(ctx, cutoff)
	metrics.RecordJob("prune_fortunes", err == nil)
	if err != nil {
		slog.Error("Failed to prune fortune accesses", "error", err)
		return err
	}
	slog.Info("Pruned fortune accesses", "deleted", n, "cutoff", cutoff)
	return nil
}

// Stop waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}
