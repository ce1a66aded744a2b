package core

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// ParallelFor runs fn over partitionCount partitions using exactly
// threadCount one-shot goroutines. Each goroutine repeatedly claims the
// next unclaimed partition index from a shared atomic counter and
// invokes fn with the partition index and its own thread index.
// ParallelFor returns after every goroutine has exited.
//
// This is the flat parallel-loop helper: no queues, no priorities, no
// persistent workers, and no nesting support. For nested submit-and-wait
// workloads use a WorkerPool with TaskSet.Run.
func ParallelFor(threadCount, partitionCount int, fn func(partition, thread int)) {
	if threadCount <= 0 || partitionCount <= 0 || fn == nil {
		return
	}

	var next atomic.Int64
	var wg sync.WaitGroup
	for t := 0; t < threadCount; t++ {
		wg.Add(1)
		go func(thread int) {
			defer wg.Done()
			for {
				p := next.Add(1) - 1
				if p >= int64(partitionCount) {
					return
				}
				fn(int(p), thread)
			}
		}(t)
	}
	wg.Wait()
}

// ParallelForErr is the error-propagating variant of ParallelFor. The
// first error cancels the derived context; goroutines stop claiming new
// partitions once the context is done, but already-started fn calls run
// to completion. Returns the first error observed.
func ParallelForErr(ctx context.Context, threadCount, partitionCount int, fn func(ctx context.Context, partition, thread int) error) error {
	if threadCount <= 0 || partitionCount <= 0 || fn == nil {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	var next atomic.Int64
	for t := 0; t < threadCount; t++ {
		thread := t
		g.Go(func() error {
			for {
				if err := gctx.Err(); err != nil {
					return err
				}
				p := next.Add(1) - 1
				if p >= int64(partitionCount) {
					return nil
				}
				if err := fn(gctx, int(p), thread); err != nil {
					return err
				}
			}
		})
	}
	return g.Wait()
}
