package core

import (
	"context"
	"sync"
	"sync/atomic"
)

// TaskSet is a counting completion barrier. It groups tasks posted
// under one priority tier and lets any goroutine wait for all of them.
//
// total and finished are monotonic counters; the set is complete iff
// they are equal. A set with no tasks is complete. Posting more tasks
// after completion makes the set incomplete again; the usual convention
// is to finish posting before waiting, but the structure does not
// forbid the interleaving.
//
// The back-reference to the dispatcher is non-owning. The set must
// outlive every task posted into it and every concurrent Wait/Run call;
// that is the submitter's responsibility.
type TaskSet struct {
	dispatcher *Dispatcher
	priority   Priority

	// Updated with atomic increments so the hot finish path stays off
	// the dispatcher lock; only the wake side takes locks.
	total    atomic.Int64
	finished atomic.Int64

	// Guards the plain Wait path. Run coordinates through the
	// dispatcher's lock instead because it must observe queue state.
	mu   sync.Mutex
	cond *sync.Cond
}

// NewTaskSet creates an empty (hence complete) set that submits through
// the given dispatcher.
func NewTaskSet(dispatcher *Dispatcher, priority Priority) *TaskSet {
	s := &TaskSet{
		dispatcher: dispatcher,
		priority:   priority,
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Priority returns the tier this set's tasks are queued under.
func (s *TaskSet) Priority() Priority {
	return s.priority
}

// TotalCount returns how many tasks were ever posted into the set.
func (s *TaskSet) TotalCount() int64 {
	return s.total.Load()
}

// FinishedCount returns how many of the set's tasks have finished.
func (s *TaskSet) FinishedCount() int64 {
	return s.finished.Load()
}

// IsComplete reports whether every task ever posted has finished.
func (s *TaskSet) IsComplete() bool {
	return s.finished.Load() == s.total.Load()
}

// Post submits one task into the set through the owning dispatcher.
// It fails with ErrPoolStopped once shutdown has begun.
func (s *TaskSet) Post(task Task) error {
	return s.dispatcher.Post(s, task)
}

// add records one pending task. Called by Dispatcher.Post under the
// dispatcher lock, before the task becomes visible to any worker.
func (s *TaskSet) add() {
	s.total.Add(1)
}

// finish records one completed task. On completion it wakes waiters
// parked in Wait and broadcasts the dispatcher cond so dispatch loops
// bound to this set re-check their exit condition.
func (s *TaskSet) finish() {
	done := s.finished.Add(1)
	if done == s.total.Load() {
		s.mu.Lock()
		s.cond.Broadcast()
		s.mu.Unlock()
		s.dispatcher.wakeAll()
	}
}

// Wait parks the calling goroutine until the set completes,
// contributing no work. Idempotent: once the set is complete, Wait
// returns immediately.
//
// Wait must not be called from inside a task running on the same pool:
// if every worker parks here, no goroutine is left to drain the
// queues and the pool deadlocks. Use Run for waiting inside tasks.
func (s *TaskSet) Wait() {
	s.mu.Lock()
	for !s.IsComplete() {
		s.cond.Wait()
	}
	s.mu.Unlock()
}

// Run is the recursion-safe wait. If the set is already complete it
// returns immediately. Otherwise the calling goroutine enters the
// pool's dispatch loop bound to this set: it claims and executes the
// highest-priority pending task from either tier, whichever set it
// belongs to, until the pool begins shutdown or this set completes.
//
// Because a goroutine blocked in Run is always a candidate executor
// for other pending work, nested submit-and-wait cannot exhaust the
// pool: even a single-worker pool makes forward progress as long as
// work remains queued.
func (s *TaskSet) Run(ctx context.Context) {
	if s.IsComplete() {
		return
	}
	s.dispatcher.runUntil(ctx, externalWorkerID, s)
}
