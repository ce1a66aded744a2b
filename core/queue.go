package core

import (
	"github.com/eapache/queue"
)

// taskItem binds one queued task to the set that owns it. Items are
// created inside Dispatcher.Post and consumed exactly once by the
// dispatch loop, which is what makes finish-without-add and
// double-finish structurally impossible.
type taskItem struct {
	task Task
	set  *TaskSet
}

// =============================================================================
// fifoQueue: FIFO of taskItems over a growable ring buffer
// =============================================================================

// fifoQueue has no lock of its own: every access happens under the
// owning Dispatcher's mutex.
type fifoQueue struct {
	ring *queue.Queue
}

func newFIFOQueue() *fifoQueue {
	return &fifoQueue{ring: queue.New()}
}

func (q *fifoQueue) push(it taskItem) {
	q.ring.Add(it)
}

func (q *fifoQueue) pop() (taskItem, bool) {
	if q.ring.Length() == 0 {
		return taskItem{}, false
	}
	return q.ring.Remove().(taskItem), true
}

func (q *fifoQueue) len() int {
	return q.ring.Length()
}

// clear drops all queued items and returns how many were discarded.
func (q *fifoQueue) clear() int {
	n := q.ring.Length()
	q.ring = queue.New()
	return n
}

// =============================================================================
// tierQueues: one FIFO per priority tier, strict-priority pop
// =============================================================================

type tierQueues struct {
	high *fifoQueue
	low  *fifoQueue
}

func newTierQueues() tierQueues {
	return tierQueues{
		high: newFIFOQueue(),
		low:  newFIFOQueue(),
	}
}

func (t *tierQueues) push(it taskItem) {
	if it.set.Priority() == PriorityHigh {
		t.high.push(it)
		return
	}
	t.low.push(it)
}

// pop implements the dispatch decision: the High front whenever the
// High tier is non-empty, otherwise the Low front. Within one tier the
// order is submission order.
func (t *tierQueues) pop() (taskItem, bool) {
	if it, ok := t.high.pop(); ok {
		return it, true
	}
	return t.low.pop()
}

func (t *tierQueues) empty() bool {
	return t.high.len() == 0 && t.low.len() == 0
}

func (t *tierQueues) len() int {
	return t.high.len() + t.low.len()
}

func (t *tierQueues) lenTier(p Priority) int {
	if p == PriorityHigh {
		return t.high.len()
	}
	return t.low.len()
}

func (t *tierQueues) clear() int {
	return t.high.clear() + t.low.clear()
}
