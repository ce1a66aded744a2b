// Package taskpool provides a priority-aware, task-set-based worker
// pool with recursion-safe waiting.
//
// # Quick Start
//
// Create and start a pool, group work into a TaskSet, and wait on it:
//
//	pool := taskpool.NewWorkerPool("my-pool", 4)
//	pool.Start(context.Background())
//	defer pool.Stop()
//
//	set := pool.NewTaskSet(taskpool.PriorityHigh)
//	for i := 0; i < 100; i++ {
//		set.Post(func(ctx context.Context) {
//			// Your code here
//		})
//	}
//	set.Wait()
//
// # Key Concepts
//
// TaskSet: a counting completion barrier. Every Post increments the
// set's total; every finished task increments its finished count. The
// set is complete when the two are equal, and Wait/Run return.
//
// Recursion-safe waiting: a task that posts sub-tasks into a nested set
// must wait with set.Run(ctx), not set.Wait(). Run turns the calling
// goroutine into a temporary worker that drains queued work (from any
// set) until its own set completes, so nested submit-and-wait makes
// forward progress even on a single-worker pool. Wait parks without
// contributing work; called from inside a task on a saturated pool it
// deadlocks.
//
// Priority: two tiers, High and Low, one FIFO queue each. Dispatch is
// strict: High wins whenever both queues are non-empty, with no aging,
// so sustained High traffic can starve Low work. Within a tier, tasks
// dispatch in submission order.
//
// # Shutdown
//
// Stop discards every still-queued task, wakes all parked loops, and
// joins the workers. Discarded tasks never execute and their sets stay
// permanently incomplete; do not leave a Wait or Run outstanding on
// such a set. Posting after Stop fails with ErrPoolStopped.
//
// # Panic Policy
//
// A panic escaping a task is recovered by the dispatch loop, reported
// through the configured PanicHandler and Metrics, and the task is
// still counted as finished so its set cannot hang. Tasks are expected
// not to fail; the recovery is a containment measure, not a result
// channel.
//
// # Flat Parallel Loops
//
// For flat, non-nested loops over a fixed partition count, ParallelFor
// spawns one-shot goroutines claiming partition indices from a shared
// counter. It involves no pool, no queues and no priorities.
package taskpool
