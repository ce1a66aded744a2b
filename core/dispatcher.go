package core

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

var (
	// ErrPoolStopped is returned by Post once shutdown has begun.
	// Posting to a stopped pool is a programmer error; callers should
	// not treat it as a retryable condition.
	ErrPoolStopped = errors.New("taskpool: post on stopped pool")

	// ErrNilTask is returned when a nil Task is posted.
	ErrNilTask = errors.New("taskpool: task is nil")
)

// externalWorkerID identifies dispatch loops entered through
// TaskSet.Run rather than by a pool worker goroutine.
const externalWorkerID = -1

// Dispatcher owns the shared scheduling state of a pool: the two tier
// queues, the shutdown flag, and the mutex/cond pair guarding them.
// Worker goroutines and goroutines parked in TaskSet.Run both execute
// the same dispatch loop; the only difference is the exit condition.
type Dispatcher struct {
	name string

	mu      sync.Mutex
	cond    *sync.Cond
	queues  tierQueues
	stopped bool

	metricQueued int32 // Waiting in a tier queue
	metricActive int32 // Executing in a dispatch loop

	// Handlers and Metrics
	panicHandler        PanicHandler
	metrics             Metrics
	rejectedTaskHandler RejectedTaskHandler
	logger              Logger

	history executionHistory
}

// NewDispatcher creates a dispatcher with the given config. A nil
// config (or nil fields) falls back to the defaults.
func NewDispatcher(name string, config *DispatcherConfig) *Dispatcher {
	d := &Dispatcher{
		name:   name,
		queues: newTierQueues(),
	}
	d.cond = sync.NewCond(&d.mu)

	if config != nil {
		d.panicHandler = config.PanicHandler
		d.metrics = config.Metrics
		d.rejectedTaskHandler = config.RejectedTaskHandler
		d.logger = config.Logger
		d.history = newExecutionHistory(config.HistoryCapacity)
	} else {
		d.history = newExecutionHistory(defaultTaskHistoryCapacity)
	}

	// Use defaults if not provided
	if d.panicHandler == nil {
		d.panicHandler = &DefaultPanicHandler{}
	}
	if d.metrics == nil {
		d.metrics = &NilMetrics{}
	}
	if d.rejectedTaskHandler == nil {
		d.rejectedTaskHandler = &DefaultRejectedTaskHandler{}
	}
	if d.logger == nil {
		d.logger = NewDefaultLogger()
	}
	return d
}

// Name returns the pool name used in logs and metric labels.
func (d *Dispatcher) Name() string {
	return d.name
}

// Post registers one task against its set and pushes it onto the queue
// matching the set's tier, waking one parked dispatch loop. The add
// happens under the dispatcher lock, before the task is visible to any
// worker, so finished can never pass total.
func (d *Dispatcher) Post(set *TaskSet, task Task) error {
	if task == nil {
		return ErrNilTask
	}

	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		d.rejectedTaskHandler.HandleRejectedTask(d.name, "shutdown")
		d.metrics.RecordTaskRejected(d.name, "shutdown")
		return ErrPoolStopped
	}
	set.add()
	d.queues.push(taskItem{task: task, set: set})
	depth := d.queues.len()
	atomic.AddInt32(&d.metricQueued, 1)
	d.cond.Signal()
	d.mu.Unlock()

	d.metrics.RecordQueueDepth(d.name, depth)
	return nil
}

// RunWorker runs the unbound dispatch loop until shutdown. Each pool
// worker goroutine calls it exactly once.
func (d *Dispatcher) RunWorker(ctx context.Context, workerID int) {
	d.runUntil(ctx, workerID, nil)
}

// runUntil is the generic dispatch loop, optionally bound to a target
// set. It parks on the dispatcher cond until shutdown is requested,
// some queue is non-empty, or the bound set (if any) has completed,
// re-checking the predicate after every wake.
func (d *Dispatcher) runUntil(ctx context.Context, workerID int, bound *TaskSet) {
	for {
		d.mu.Lock()
		for {
			if bound != nil && bound.IsComplete() {
				// This loop may have consumed a Post wakeup meant for a
				// loop that can still take work; pass it on.
				if !d.queues.empty() {
					d.cond.Signal()
				}
				d.mu.Unlock()
				return
			}
			if d.stopped {
				d.mu.Unlock()
				return
			}
			if !d.queues.empty() {
				break
			}
			d.cond.Wait()
		}
		it, _ := d.queues.pop()
		d.mu.Unlock()

		atomic.AddInt32(&d.metricQueued, -1)
		d.execute(ctx, workerID, it)
	}
}

// execute runs one claimed task outside the dispatcher lock, then
// finishes it against its owning set. finish is called even when the
// task panics, so a panicking task can never hang its set; the panic
// is reported through the configured PanicHandler and Metrics.
func (d *Dispatcher) execute(ctx context.Context, workerID int, it taskItem) {
	atomic.AddInt32(&d.metricActive, 1)
	startedAt := time.Now()
	panicked := false

	func() {
		defer func() {
			if rec := recover(); rec != nil {
				panicked = true
				d.panicHandler.HandlePanic(ctx, d.name, workerID, rec, debug.Stack())
				d.metrics.RecordTaskPanic(d.name, rec)
			}
		}()
		it.task(ctx)
	}()

	atomic.AddInt32(&d.metricActive, -1)
	finishedAt := time.Now()
	d.metrics.RecordTaskDuration(d.name, it.set.Priority(), finishedAt.Sub(startedAt))
	d.history.Add(TaskExecutionRecord{
		Pool:       d.name,
		WorkerID:   workerID,
		Priority:   it.set.Priority(),
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		Duration:   finishedAt.Sub(startedAt),
		Panicked:   panicked,
	})
	it.set.finish()
}

// Shutdown marks the dispatcher stopped, discards every queued task,
// and wakes all parked loops. Discarded tasks never execute, so their
// owning sets stay permanently incomplete; callers must not leave a
// Wait or Run outstanding on such a set. Safe to call more than once.
// Returns the number of discarded tasks.
func (d *Dispatcher) Shutdown() int {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return 0
	}
	d.stopped = true
	discarded := d.queues.clear()
	d.cond.Broadcast()
	d.mu.Unlock()

	atomic.AddInt32(&d.metricQueued, -int32(discarded))
	if discarded > 0 {
		d.logger.Warn("discarding queued tasks on shutdown",
			F("pool", d.name),
			F("discarded", discarded),
		)
	}
	d.metrics.RecordQueueDepth(d.name, 0)
	return discarded
}

// wakeAll broadcasts the dispatcher cond. Called by TaskSet.finish on
// completion so loops bound to that set re-check their exit condition.
func (d *Dispatcher) wakeAll() {
	d.mu.Lock()
	d.cond.Broadcast()
	d.mu.Unlock()
}

// IsStopped reports whether shutdown has begun.
func (d *Dispatcher) IsStopped() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stopped
}

// Metrics
func (d *Dispatcher) QueuedTaskCount() int { return int(atomic.LoadInt32(&d.metricQueued)) }
func (d *Dispatcher) ActiveTaskCount() int { return int(atomic.LoadInt32(&d.metricActive)) }

// QueuedTaskCountByTier returns the pending count of one tier queue.
func (d *Dispatcher) QueuedTaskCountByTier(p Priority) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.queues.lenTier(p)
}

// RecentTasks returns completed task execution records, newest first.
func (d *Dispatcher) RecentTasks(limit int) []TaskExecutionRecord {
	return d.history.Recent(limit)
}

// GetPanicHandler returns the panic handler for this dispatcher.
func (d *Dispatcher) GetPanicHandler() PanicHandler {
	return d.panicHandler
}

// GetMetrics returns the metrics collector for this dispatcher.
func (d *Dispatcher) GetMetrics() Metrics {
	return d.metrics
}

// GetLogger returns the logger for this dispatcher.
func (d *Dispatcher) GetLogger() Logger {
	return d.logger
}
