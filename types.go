package taskpool

import "github.com/Swind/go-task-pool/core"

// Re-export commonly used types from core package for convenience.
// This allows users to import only the taskpool package for most use cases.

// Task is the unit of work (Closure)
type Task = core.Task

// Priority is the two-tier dispatch priority
type Priority = core.Priority

// TaskSet is the counting completion barrier callers submit against
type TaskSet = core.TaskSet

// Dispatcher owns the shared queues and the dispatch loop
type Dispatcher = core.Dispatcher

// DispatcherConfig configures handlers, metrics and logging for a pool
type DispatcherConfig = core.DispatcherConfig

// Handler and observability interfaces
type (
	PanicHandler        = core.PanicHandler
	Metrics             = core.Metrics
	RejectedTaskHandler = core.RejectedTaskHandler
	Logger              = core.Logger
	Field               = core.Field
	PoolStats           = core.PoolStats
	TaskSetStats        = core.TaskSetStats
	TaskExecutionRecord = core.TaskExecutionRecord
)

// Priority constants
const (
	PriorityLow  Priority = core.PriorityLow
	PriorityHigh Priority = core.PriorityHigh
)

// Sentinel errors
var (
	ErrPoolStopped = core.ErrPoolStopped
	ErrNilTask     = core.ErrNilTask
)

// Convenience re-exports
var (
	DefaultDispatcherConfig = core.DefaultDispatcherConfig
	NewTaskSet              = core.NewTaskSet
	F                       = core.F
)

// ParallelFor is the one-shot partitioned parallel-for helper.
var ParallelFor = core.ParallelFor

// ParallelForErr is the error-propagating, context-aware variant.
var ParallelForErr = core.ParallelForErr
