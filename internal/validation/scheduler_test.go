package validation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingSweeper struct {
	mu     sync.Mutex
	calls  int
	maxAge time.Duration
	batch  int
	n      int
	err    error
	block  chan struct{}
}

func (s *countingSweeper) SweepStale(ctx context.Context, maxAge time.Duration, batch int) (int, error) {
	s.mu.Lock()
	s.calls++
	s.maxAge, s.batch = maxAge, batch
	block := s.block
	s.mu.Unlock()
	if block != nil {
		<-block
	}
	return s.n, s.err
}

func TestSchedulerRunOncePassesConfig(t *testing.T) {
	sweeper := &countingSweeper{n: 3}
	s := NewScheduler(sweeper, SchedulerConfig{Schedule: "@every 1h", MaxAge: 6 * time.Hour, Batch: 25}, zap.NewNop())

	assert.Equal(t, 3, s.RunOnce(context.Background()))
	assert.Equal(t, 1, sweeper.calls)
	assert.Equal(t, 6*time.Hour, sweeper.maxAge)
	assert.Equal(t, 25, sweeper.batch)

	sweeper.err = errors.New("db down")
	sweeper.n = 1
	assert.Equal(t, 1, s.RunOnce(context.Background()))
}

func TestSchedulerSkipsWhenCancelledOrBusy(t *testing.T) {
	sweeper := &countingSweeper{block: make(chan struct{})}
	s := NewScheduler(sweeper, SchedulerConfig{Schedule: "@every 1h"}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, 0, s.RunOnce(ctx))
	assert.Equal(t, 0, sweeper.calls)

	done := make(chan struct{})
	go func() {
		s.RunOnce(context.Background())
		close(done)
	}()
	require.Eventually(t, func() bool {
		sweeper.mu.Lock()
		defer sweeper.mu.Unlock()
		return sweeper.calls == 1
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, 0, s.RunOnce(context.Background()))
	close(sweeper.block)
	<-done

	sweeper.mu.Lock()
	defer sweeper.mu.Unlock()
	assert.Equal(t, 1, sweeper.calls)
}

func TestSchedulerStartRejectsBadSchedule(t *testing.T) {
	s := NewScheduler(&countingSweeper{}, SchedulerConfig{Schedule: "not a schedule"}, zap.NewNop())
	assert.Error(t, s.Start(context.Background()))

	s = NewScheduler(&countingSweeper{}, SchedulerConfig{Schedule: "*/5 * * * *"}, zap.NewNop())
	require.NoError(t, s.Start(context.Background()))
	assert.Error(t, s.Start(context.Background()))
	s.Stop()
	s.Stop()
}
