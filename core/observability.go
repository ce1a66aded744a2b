package core

import "time"

// TaskExecutionRecord captures a completed task execution event.
type TaskExecutionRecord struct {
	Pool       string
	WorkerID   int
	Priority   Priority
	StartedAt  time.Time
	FinishedAt time.Time
	Duration   time.Duration
	Panicked   bool
}

// PoolStats represents runtime observability state for a worker pool.
type PoolStats struct {
	ID         string
	Workers    int
	QueuedHigh int
	QueuedLow  int
	Active     int
	Running    bool
}

// TaskSetStats represents a point-in-time view of one completion barrier.
type TaskSetStats struct {
	Priority Priority
	Total    int64
	Finished int64
	Complete bool
}

// Stats returns a point-in-time view of the set's counters. The two
// counters are read independently, so under concurrent finishes the
// snapshot may be slightly stale; Complete is derived from the same
// reads and therefore internally consistent.
func (s *TaskSet) Stats() TaskSetStats {
	total := s.total.Load()
	finished := s.finished.Load()
	return TaskSetStats{
		Priority: s.priority,
		Total:    total,
		Finished: finished,
		Complete: finished == total,
	}
}
