package inmemory

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerly/ledgerly/internal/jobs"
)

func TestQueue_PublishAndProcess(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	q := NewQueue(10, store)

	var processed atomic.Int32
	require.NoError(t, q.Start(ctx, func(_ context.Context, job *jobs.Job) error {
		processed.Add(1)
		return nil
	}))

	job := &jobs.Job{Type: jobs.JobTypeFullSync, TriggeredBy: "api"}
	require.NoError(t, q.Publish(ctx, job))
	assert.NotEmpty(t, job.JobID, "publish assigns an id")

	require.Eventually(t, func() bool { return processed.Load() == 1 }, time.Second, time.Millisecond)

	require.Eventually(t, func() bool {
		saved, err := store.GetJob(ctx, job.JobID)
		return err == nil && saved.Status == jobs.JobStatusCompleted
	}, time.Second, time.Millisecond)

	saved, err := store.GetJob(ctx, job.JobID)
	require.NoError(t, err)
	assert.NotNil(t, saved.StartedAt)
	assert.NotNil(t, saved.CompletedAt)

	require.NoError(t, q.Close())
}

func TestQueue_FailedJobWithoutRetriesIsFailed(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	q := NewQueue(10, store)

	require.NoError(t, q.Start(ctx, func(_ context.Context, job *jobs.Job) error {
		return assert.AnError
	}))

	job := &jobs.Job{Type: jobs.JobTypeFullSync}
	require.NoError(t, q.Publish(ctx, job))

	require.Eventually(t, func() bool {
		saved, err := store.GetJob(ctx, job.JobID)
		return err == nil && saved.Status == jobs.JobStatusFailed
	}, time.Second, time.Millisecond)

	saved, err := store.GetJob(ctx, job.JobID)
	require.NoError(t, err)
	assert.Equal(t, assert.AnError.Error(), saved.Error)

	require.NoError(t, q.Close())
}

func TestQueue_RetriesUpToMaxRetries(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	q := NewQueue(10, store)

	var attempts atomic.Int32
	require.NoError(t, q.Start(ctx, func(_ context.Context, job *jobs.Job) error {
		attempts.Add(1)
		return assert.AnError
	}))

	job := &jobs.Job{Type: jobs.JobTypeProcessRecurring, MaxRetries: 2}
	require.NoError(t, q.Publish(ctx, job))

	require.Eventually(t, func() bool { return attempts.Load() == 3 }, 10*time.Second, 10*time.Millisecond,
		"one initial attempt plus two retries")

	require.Eventually(t, func() bool {
		saved, err := store.GetJob(ctx, job.JobID)
		return err == nil && saved.Status == jobs.JobStatusFailed
	}, time.Second, time.Millisecond)

	require.NoError(t, q.Close())
}

func TestQueue_RetryDoesNotMutateFailedAttempt(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	q := NewQueue(10, store)

	var attempts atomic.Int32
	require.NoError(t, q.Start(ctx, func(_ context.Context, job *jobs.Job) error {
		if attempts.Add(1) == 1 {
			return assert.AnError
		}
		return nil
	}))

	job := &jobs.Job{Type: jobs.JobTypeProcessRecurring, MaxRetries: 1}
	require.NoError(t, q.Publish(ctx, job))

	require.Eventually(t, func() bool {
		saved, err := store.GetJob(ctx, job.JobID)
		return err == nil && saved.Status == jobs.JobStatusCompleted
	}, 10*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(2), attempts.Load())

	// The retry runs on its own copy; the record of the failed first
	// attempt is left as it ended.
	assert.Equal(t, jobs.JobStatusRetrying, job.Status)
	assert.NotNil(t, job.StartedAt)
	assert.NotNil(t, job.CompletedAt)
	assert.Equal(t, assert.AnError.Error(), job.Error)

	require.NoError(t, q.Close())
}

func TestQueue_PublishAfterCloseFails(t *testing.T) {
	ctx := context.Background()
	q := NewQueue(1, NewStore())
	require.NoError(t, q.Close())

	err := q.Publish(ctx, &jobs.Job{Type: jobs.JobTypeFullSync})
	assert.Error(t, err)
}

func TestStore_ListJobs(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	base := time.Now()
	for i, typ := range []jobs.JobType{jobs.JobTypeFullSync, jobs.JobTypeProcessRecurring, jobs.JobTypeFullSync} {
		require.NoError(t, store.SaveJob(ctx, &jobs.Job{
			JobID:     string(rune('a' + i)),
			Type:      typ,
			Status:    jobs.JobStatusCompleted,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	all, err := store.ListJobs(ctx, jobs.JobFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].JobID, "newest first")

	syncs, err := store.ListJobs(ctx, jobs.JobFilter{Type: jobs.JobTypeFullSync})
	require.NoError(t, err)
	assert.Len(t, syncs, 2)

	limited, err := store.ListJobs(ctx, jobs.JobFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "b", limited[0].JobID)
}
