package recurrence

import (
	"context"
	"sync"
	"time"

	"github.com/ledgerly/ledgerly/internal/logger"
)

// TaskRecurringTransactions is the unique task id for the daily recurring
// transaction catch-up pass.
const TaskRecurringTransactions = "recurring_transactions_work"

// DefaultInitialDelay spaces the first run away from process start so the
// pass does not compete with startup work.
const DefaultInitialDelay = time.Hour

// Scheduler runs named tasks once per day on an in-process timer. A task id
// can be scheduled at most once; re-scheduling an existing id keeps the
// running schedule and drops the new request.
type Scheduler struct {
	mu       sync.Mutex
	cancels  map[string]context.CancelFunc
	wg       sync.WaitGroup
	interval time.Duration
}

// NewScheduler creates a scheduler with a daily run interval.
func NewScheduler() *Scheduler {
	return &Scheduler{
		cancels:  make(map[string]context.CancelFunc),
		interval: 24 * time.Hour,
	}
}

// ScheduleDaily registers fn to run after initialDelay and then once per
// interval until the context is cancelled or the task is cancelled. Returns
// false when the task id is already scheduled, leaving the existing schedule
// untouched.
func (s *Scheduler) ScheduleDaily(ctx context.Context, taskID string, initialDelay time.Duration, fn func(context.Context) error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.cancels[taskID]; exists {
		return false
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancels[taskID] = cancel

	s.wg.Add(1)
	go s.run(runCtx, taskID, initialDelay, fn)
	return true
}

func (s *Scheduler) run(ctx context.Context, taskID string, initialDelay time.Duration, fn func(context.Context) error) {
	defer s.wg.Done()
	log := logger.FromContext(ctx)

	timer := time.NewTimer(initialDelay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		if err := fn(ctx); err != nil {
			log.Error().Err(err).Str("task_id", taskID).Msg("Scheduled task failed, retrying on next run")
		}
		timer.Reset(s.interval)
	}
}

// Cancel stops a scheduled task. Unknown ids are a no-op.
func (s *Scheduler) Cancel(taskID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cancel, ok := s.cancels[taskID]; ok {
		cancel()
		delete(s.cancels, taskID)
	}
}

// Stop cancels every task and waits for running passes to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	for id, cancel := range s.cancels {
		cancel()
		delete(s.cancels, id)
	}
	s.mu.Unlock()

	s.wg.Wait()
}
