package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePruner struct {
	cutoff time.Time
	err    error
}

func (f *fakePruner) PruneFortuneAccesses(ctx context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return 3, f.err
}

func TestPruneFortunesUsesRetention(t *testing.T) {
	p := &fakePruner{}
	s := NewScheduler(p, 48*time.Hour)
	s.now = func() time.Time { return time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC) }

	require.NoError(t, s.PruneFortunes(context.Background()))
	assert.Equal(t, time.Date(2025, 6, 8, 12, 0, 0, 0, time.UTC), p.cutoff)
}

func TestPruneFortunesReportsError(t *testing.T) {
	s := NewScheduler(&fakePruner{err: errors.New("db gone")}, 0)
	assert.Equal(t, DefaultFortuneRetention, s.retention)
	assert.Error(t, s.PruneFortunes(context.Background()))
}

func TestStartAndStop(t *testing.T) {
	s := NewScheduler(&fakePruner{}, 0)
	require.NoError(t, s.Start())
	assert.Len(t, s.cron.Entries(), 1)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
