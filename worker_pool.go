package taskpool

import (
	"context"
	"sync"

	"github.com/Swind/go-task-pool/core"
)

// WorkerPool owns a fixed set of persistent worker goroutines pulling
// tasks from a shared two-tier dispatcher. Workers are spawned by Start
// and joined by Stop.
//
// Pools are plain values with no process-wide state: a program may run
// any number of independent pools.
type WorkerPool struct {
	id         string
	workers    int
	dispatcher *core.Dispatcher
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	running    bool
	runningMu  sync.RWMutex
}

// NewWorkerPool creates a pool with default handlers. workers below 1
// is clamped to 1.
func NewWorkerPool(id string, workers int) *WorkerPool {
	return NewWorkerPoolWithConfig(id, workers, core.DefaultDispatcherConfig())
}

// NewWorkerPoolWithConfig creates a pool with custom handlers, metrics
// and logging.
func NewWorkerPoolWithConfig(id string, workers int, config *core.DispatcherConfig) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	return &WorkerPool{
		id:         id,
		workers:    workers,
		dispatcher: core.NewDispatcher(id, config),
	}
}

// Start spawns the worker goroutines, each entering the unbound
// dispatch loop until shutdown. Calling Start on a running pool is a
// no-op. Tasks posted before Start stay queued and are picked up as
// soon as the workers come up.
func (p *WorkerPool) Start(ctx context.Context) {
	p.runningMu.Lock()
	defer p.runningMu.Unlock()

	if p.running {
		return // Already running
	}

	p.ctx, p.cancel = context.WithCancel(ctx)
	p.running = true

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.workerLoop(i, p.ctx)
	}
}

// workerLoop is the body of one worker goroutine.
func (p *WorkerPool) workerLoop(id int, ctx context.Context) {
	defer p.wg.Done()
	p.dispatcher.RunWorker(ctx, id)
}

// Stop begins shutdown: every still-queued task is discarded, all
// parked dispatch loops are woken, and Stop blocks until every worker
// goroutine has exited. In-flight tasks run to completion; their
// context is canceled so long-running actions can observe the shutdown.
//
// Sets whose tasks were discarded never complete. Callers must not
// leave a Wait or Run outstanding on such a set across Stop; that is a
// caller responsibility, not enforced here. Safe to call repeatedly.
func (p *WorkerPool) Stop() {
	// Always shut the dispatcher down, even if the pool was never
	// started, so queued tasks are released and posts start failing.
	p.dispatcher.Shutdown()

	p.runningMu.Lock()
	if !p.running {
		p.runningMu.Unlock()
		return
	}
	p.runningMu.Unlock()

	if p.cancel != nil {
		p.cancel()
	}
	p.Join()

	p.runningMu.Lock()
	p.running = false
	p.runningMu.Unlock()
}

// Join waits for all worker goroutines to finish.
func (p *WorkerPool) Join() {
	p.wg.Wait()
}

// NewTaskSet creates a completion barrier submitting through this pool
// under the given priority tier. The set must outlive all of its
// pending tasks and any concurrent Wait/Run calls.
func (p *WorkerPool) NewTaskSet(priority core.Priority) *core.TaskSet {
	return core.NewTaskSet(p.dispatcher, priority)
}

// Submit posts one task into set. Equivalent to set.Post(task).
// Fails with ErrPoolStopped once Stop has begun.
func (p *WorkerPool) Submit(set *core.TaskSet, task core.Task) error {
	return p.dispatcher.Post(set, task)
}

// ID returns the ID of the pool.
func (p *WorkerPool) ID() string {
	return p.id
}

// IsRunning returns whether the pool's workers are up.
func (p *WorkerPool) IsRunning() bool {
	p.runningMu.RLock()
	defer p.runningMu.RUnlock()
	return p.running
}

// WorkerCount returns the number of workers.
func (p *WorkerPool) WorkerCount() int {
	return p.workers
}

func (p *WorkerPool) QueuedTaskCount() int {
	return p.dispatcher.QueuedTaskCount()
}

func (p *WorkerPool) ActiveTaskCount() int {
	return p.dispatcher.ActiveTaskCount()
}

// GetDispatcher returns the underlying dispatcher, for advanced callers
// wiring sets or observability directly.
func (p *WorkerPool) GetDispatcher() *core.Dispatcher {
	return p.dispatcher
}

// Stats returns current observability data for this pool.
func (p *WorkerPool) Stats() core.PoolStats {
	return core.PoolStats{
		ID:         p.id,
		Workers:    p.workers,
		QueuedHigh: p.dispatcher.QueuedTaskCountByTier(core.PriorityHigh),
		QueuedLow:  p.dispatcher.QueuedTaskCountByTier(core.PriorityLow),
		Active:     p.dispatcher.ActiveTaskCount(),
		Running:    p.IsRunning(),
	}
}

// RecentTasks returns completed task execution records in newest-first order.
func (p *WorkerPool) RecentTasks(limit int) []core.TaskExecutionRecord {
	return p.dispatcher.RecentTasks(limit)
}
