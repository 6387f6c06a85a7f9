package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dhima/client-service/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingJob struct {
	name  string
	runs  atomic.Int32
	err   error
	ready chan struct{}
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Run(context.Context) error {
	if j.runs.Add(1) == 1 && j.ready != nil {
		close(j.ready)
	}
	return j.err
}

func fixedClock() clock.Clock {
	return clock.NewFixed(time.Date(2026, 1, 2, 3, 0, 0, 0, time.UTC))
}

func TestRunJob_RecordsSuccess(t *testing.T) {
	eng := NewEngineWithClock(zap.NewNop(), fixedClock())
	job := &countingJob{name: "pool-health"}

	require.NoError(t, eng.RunJob(context.Background(), job))

	run, ok := eng.LastRun("pool-health")
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 0, 0, 0, time.UTC), run.StartedAt)
	assert.Empty(t, run.Error)
}

func TestRunJob_RecordsDuration(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 0, 0, 0, time.UTC)
	eng := NewEngineWithClock(zap.NewNop(), clock.Ticking(start, 40*time.Millisecond))

	require.NoError(t, eng.RunJob(context.Background(), &countingJob{name: "slow"}))

	run, _ := eng.LastRun("slow")
	assert.Equal(t, start, run.StartedAt)
	assert.Equal(t, 40*time.Millisecond, run.Duration)
}

func TestRunJob_RecordsFailure(t *testing.T) {
	eng := NewEngineWithClock(zap.NewNop(), fixedClock())
	job := &countingJob{name: "broken", err: errors.New("ping failed")}

	err := eng.RunJob(context.Background(), job)
	assert.Error(t, err)

	run, ok := eng.LastRun("broken")
	require.True(t, ok)
	assert.Equal(t, "ping failed", run.Error)

	_, ok = eng.LastRun("unknown")
	assert.False(t, ok)
}

func TestSchedule_InvalidSpec(t *testing.T) {
	eng := NewEngine(zap.NewNop())
	err := eng.Schedule("not a cron", &countingJob{name: "x"})
	assert.Error(t, err)
}

func TestRun_FiresScheduledJobsUntilCanceled(t *testing.T) {
	eng := NewEngine(zap.NewNop())
	job := &countingJob{name: "tick", ready: make(chan struct{})}
	require.NoError(t, eng.Schedule("@every 1s", job))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- eng.Run(ctx) }()

	select {
	case <-job.ready:
	case <-time.After(5 * time.Second):
		t.Fatal("job never ran")
	}
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("engine did not stop")
	}
	assert.GreaterOrEqual(t, job.runs.Load(), int32(1))
}
