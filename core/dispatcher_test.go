package core

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type recordingMetrics struct {
	durations int32
	panics    int32
	rejected  int32
}

func (m *recordingMetrics) RecordTaskDuration(poolName string, priority Priority, duration time.Duration) {
	atomic.AddInt32(&m.durations, 1)
}
func (m *recordingMetrics) RecordTaskPanic(poolName string, panicInfo any) {
	atomic.AddInt32(&m.panics, 1)
}
func (m *recordingMetrics) RecordQueueDepth(poolName string, depth int) {}
func (m *recordingMetrics) RecordTaskRejected(poolName string, reason string) {
	atomic.AddInt32(&m.rejected, 1)
}

type recordingPanicHandler struct {
	mu    sync.Mutex
	calls []any
}

func (h *recordingPanicHandler) HandlePanic(ctx context.Context, poolName string, workerID int, panicInfo any, stackTrace []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, panicInfo)
}

type recordingRejectedHandler struct {
	count int32
}

func (h *recordingRejectedHandler) HandleRejectedTask(poolName string, reason string) {
	atomic.AddInt32(&h.count, 1)
}

// TestDispatcher_PostAfterShutdown tests post-shutdown submission
// Main test items:
// 1. Post fails with ErrPoolStopped after Shutdown
// 2. The rejected handler and metrics are notified
func TestDispatcher_PostAfterShutdown(t *testing.T) {
	metrics := &recordingMetrics{}
	rejected := &recordingRejectedHandler{}
	config := DefaultDispatcherConfig()
	config.Logger = NewNoOpLogger()
	config.Metrics = metrics
	config.RejectedTaskHandler = rejected

	d := NewDispatcher("test-pool", config)
	d.Shutdown()

	set := NewTaskSet(d, PriorityHigh)
	err := set.Post(func(ctx context.Context) {})
	if !errors.Is(err, ErrPoolStopped) {
		t.Fatalf("Expected ErrPoolStopped, got %v", err)
	}
	if atomic.LoadInt32(&rejected.count) != 1 {
		t.Errorf("Expected 1 rejection handled, got %d", rejected.count)
	}
	if atomic.LoadInt32(&metrics.rejected) != 1 {
		t.Errorf("Expected 1 rejection recorded, got %d", metrics.rejected)
	}
}

// TestDispatcher_PostNilTask tests the nil-task guard
func TestDispatcher_PostNilTask(t *testing.T) {
	d := newTestDispatcher()
	defer d.Shutdown()

	set := NewTaskSet(d, PriorityLow)
	if err := set.Post(nil); !errors.Is(err, ErrNilTask) {
		t.Fatalf("Expected ErrNilTask, got %v", err)
	}
	if set.TotalCount() != 0 {
		t.Errorf("Nil post must not count into the set, total=%d", set.TotalCount())
	}
}

// TestDispatcher_ShutdownDiscardsQueued tests bounded-time shutdown
// Main test items:
// 1. Shutdown returns the number of discarded tasks
// 2. Discarded tasks never execute and their set stays incomplete
// 3. A second Shutdown is a no-op
func TestDispatcher_ShutdownDiscardsQueued(t *testing.T) {
	d := newTestDispatcher()

	set := NewTaskSet(d, PriorityHigh)
	var counter atomic.Int64
	for i := 0; i < 3; i++ {
		if err := set.Post(func(ctx context.Context) {
			counter.Add(1)
		}); err != nil {
			t.Fatalf("Post failed: %v", err)
		}
	}

	if discarded := d.Shutdown(); discarded != 3 {
		t.Errorf("Expected 3 discarded tasks, got %d", discarded)
	}
	if d.QueuedTaskCount() != 0 {
		t.Errorf("Expected empty queue after shutdown, got %d", d.QueuedTaskCount())
	}
	if counter.Load() != 0 {
		t.Errorf("Discarded tasks must not execute, counter=%d", counter.Load())
	}
	if set.IsComplete() {
		t.Error("Set with discarded tasks must stay incomplete")
	}
	if discarded := d.Shutdown(); discarded != 0 {
		t.Errorf("Second Shutdown should discard nothing, got %d", discarded)
	}
}

// TestDispatcher_StrictPriorityOrder tests the dispatch decision
// Main test items:
// 1. High-tier tasks dispatch before any still-pending Low-tier task
// 2. Within one tier, tasks dispatch in submission order
func TestDispatcher_StrictPriorityOrder(t *testing.T) {
	d := newTestDispatcher()
	defer d.Shutdown()

	high := NewTaskSet(d, PriorityHigh)
	low := NewTaskSet(d, PriorityLow)

	order := make([]string, 0, 5)
	record := func(name string) Task {
		return func(ctx context.Context) {
			order = append(order, name)
		}
	}

	// Deliberately interleaved submission sequence.
	mustPost(t, low, record("Low-1"))
	mustPost(t, high, record("High-1"))
	mustPost(t, low, record("Low-2"))
	mustPost(t, high, record("High-2"))
	mustPost(t, low, record("Low-3"))

	// Draining the low set necessarily drains the high set first, so a
	// single bound Run executes everything in dispatch order.
	low.Run(context.Background())

	expected := []string{"High-1", "High-2", "Low-1", "Low-2", "Low-3"}
	if len(order) != len(expected) {
		t.Fatalf("Expected %d executions, got %d (%v)", len(expected), len(order), order)
	}
	for i, exp := range expected {
		if order[i] != exp {
			t.Errorf("Step %d: Expected %s, got %s (full order %v)", i, exp, order[i], order)
		}
	}
	if !high.IsComplete() {
		t.Error("High set should be complete")
	}
}

// TestDispatcher_PanicStillFinishes tests the panic containment policy
// Main test items:
// 1. A panicking task is recovered and reported to the PanicHandler
// 2. finish still runs, so the set completes instead of hanging
// 3. Metrics record the panic
func TestDispatcher_PanicStillFinishes(t *testing.T) {
	metrics := &recordingMetrics{}
	handler := &recordingPanicHandler{}
	config := DefaultDispatcherConfig()
	config.Logger = NewNoOpLogger()
	config.Metrics = metrics
	config.PanicHandler = handler

	d := NewDispatcher("test-pool", config)
	defer d.Shutdown()

	set := NewTaskSet(d, PriorityHigh)
	var after atomic.Int64
	mustPost(t, set, func(ctx context.Context) {
		panic("boom")
	})
	mustPost(t, set, func(ctx context.Context) {
		after.Add(1)
	})

	waitOrFatal(t, 5*time.Second, "Run over panicking task", func() {
		set.Run(context.Background())
	})

	if !set.IsComplete() {
		t.Error("Set must complete even when a task panics")
	}
	if after.Load() != 1 {
		t.Error("Task after the panicking one must still execute")
	}
	handler.mu.Lock()
	defer handler.mu.Unlock()
	if len(handler.calls) != 1 || handler.calls[0] != "boom" {
		t.Errorf("Expected one recorded panic 'boom', got %v", handler.calls)
	}
	if atomic.LoadInt32(&metrics.panics) != 1 {
		t.Errorf("Expected 1 panic metric, got %d", metrics.panics)
	}
}

// TestDispatcher_RecentTasks tests the execution history
// Main test items:
// 1. Completed tasks leave records, newest first
// 2. Panicked tasks are flagged
func TestDispatcher_RecentTasks(t *testing.T) {
	config := DefaultDispatcherConfig()
	config.Logger = NewNoOpLogger()
	config.PanicHandler = &recordingPanicHandler{}

	d := NewDispatcher("history-pool", config)
	defer d.Shutdown()

	set := NewTaskSet(d, PriorityLow)
	mustPost(t, set, func(ctx context.Context) {})
	mustPost(t, set, func(ctx context.Context) { panic("late boom") })
	set.Run(context.Background())

	records := d.RecentTasks(0)
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	// Newest first: the panicking task ran second.
	if !records[0].Panicked || records[1].Panicked {
		t.Errorf("Expected newest record panicked, got %+v", records)
	}
	for _, r := range records {
		if r.Pool != "history-pool" || r.Priority != PriorityLow {
			t.Errorf("Unexpected record metadata: %+v", r)
		}
	}
}

// TestDispatcher_MetricsRecorded tests duration metric emission
func TestDispatcher_MetricsRecorded(t *testing.T) {
	metrics := &recordingMetrics{}
	config := DefaultDispatcherConfig()
	config.Logger = NewNoOpLogger()
	config.Metrics = metrics

	d := NewDispatcher("test-pool", config)
	defer d.Shutdown()

	set := NewTaskSet(d, PriorityHigh)
	for i := 0; i < 4; i++ {
		mustPost(t, set, func(ctx context.Context) {})
	}
	set.Run(context.Background())

	if got := atomic.LoadInt32(&metrics.durations); got != 4 {
		t.Errorf("Expected 4 duration records, got %d", got)
	}
}

// TestDispatcher_ConcurrentPostAndRun stresses concurrent submitters
// Main test items:
// 1. Multiple goroutines posting into one set while workers drain it
// 2. Every task executes exactly once
func TestDispatcher_ConcurrentPostAndRun(t *testing.T) {
	d := newTestDispatcher()

	for i := 0; i < 4; i++ {
		go d.RunWorker(context.Background(), i)
	}

	set := NewTaskSet(d, PriorityHigh)
	var counter atomic.Int64
	const producers = 8
	const perProducer = 50

	var posted sync.WaitGroup
	for p := 0; p < producers; p++ {
		posted.Add(1)
		go func() {
			defer posted.Done()
			for i := 0; i < perProducer; i++ {
				if err := set.Post(func(ctx context.Context) {
					counter.Add(1)
				}); err != nil {
					t.Errorf("Post failed: %v", err)
					return
				}
			}
		}()
	}
	posted.Wait()

	waitOrFatal(t, 10*time.Second, "Run", func() { set.Run(context.Background()) })

	if got := counter.Load(); got != producers*perProducer {
		t.Errorf("Expected counter %d, got %d", producers*perProducer, got)
	}
	d.Shutdown()
}

func mustPost(t *testing.T, set *TaskSet, task Task) {
	t.Helper()
	if err := set.Post(task); err != nil {
		t.Fatalf("Post failed: %v", err)
	}
}
