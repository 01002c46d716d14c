package recurrence

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleDaily_KeepsExistingSchedule(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewScheduler()
	defer s.Stop()

	noop := func(context.Context) error { return nil }
	assert.True(t, s.ScheduleDaily(ctx, TaskRecurringTransactions, time.Hour, noop))
	assert.False(t, s.ScheduleDaily(ctx, TaskRecurringTransactions, time.Hour, noop),
		"a task id already scheduled must keep its existing schedule")
}

func TestScheduleDaily_RunsRepeatedly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewScheduler()
	s.interval = 5 * time.Millisecond
	defer s.Stop()

	var runs atomic.Int32
	s.ScheduleDaily(ctx, "test_task", 0, func(context.Context) error {
		runs.Add(1)
		return nil
	})

	require.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, time.Millisecond)
}

func TestScheduleDaily_FailureDoesNotStopSchedule(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewScheduler()
	s.interval = 5 * time.Millisecond
	defer s.Stop()

	var runs atomic.Int32
	s.ScheduleDaily(ctx, "failing_task", 0, func(context.Context) error {
		runs.Add(1)
		return assert.AnError
	})

	require.Eventually(t, func() bool { return runs.Load() >= 2 }, time.Second, time.Millisecond,
		"a failed run is retried on the next tick")
}

func TestCancel_StopsTask(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewScheduler()
	s.interval = 5 * time.Millisecond
	defer s.Stop()

	var runs atomic.Int32
	s.ScheduleDaily(ctx, "cancelled_task", 0, func(context.Context) error {
		runs.Add(1)
		return nil
	})

	require.Eventually(t, func() bool { return runs.Load() >= 1 }, time.Second, time.Millisecond)
	s.Cancel("cancelled_task")

	settled := runs.Load()
	time.Sleep(50 * time.Millisecond)
	assert.LessOrEqual(t, runs.Load(), settled+1, "at most one in-flight run may finish after cancel")

	// The id is free again after cancellation.
	assert.True(t, s.ScheduleDaily(ctx, "cancelled_task", time.Hour, func(context.Context) error { return nil }))
}
