package core

import "context"

// Task is the unit of work (Closure). A task captures all of its
// arguments at creation time; the context is supplied by the executing
// pool and is canceled when the pool stops.
type Task func(ctx context.Context)

// =============================================================================
// Priority: Two-tier dispatch priority
// =============================================================================

// Priority selects which tier queue a TaskSet's tasks go through.
//
// Dispatch is strict: whenever both tiers are non-empty at a dispatch
// decision, the High front is taken. There is no aging, so a sustained
// stream of High submissions can starve Low work indefinitely. That is
// a documented tradeoff of this scheduler, not a bug.
type Priority int

const (
	// PriorityLow: background work, dispatched only when no High task is pending
	PriorityLow Priority = iota

	// PriorityHigh: always preferred over Low at dispatch time
	PriorityHigh
)

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityLow:
		return "low"
	default:
		return "unknown"
	}
}
