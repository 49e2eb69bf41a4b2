// Package index holds the planner's time-ordered view of upcoming job
// runs. Readers never block: rebuilds swap in a new sorted slice.
package index

import (
	"sort"
	"sync/atomic"
	"time"
)

// ScheduledRun is one upcoming occurrence of a job's schedule.
type ScheduledRun struct {
	JobID       string    `json:"job_id"`
	JobName     string    `json:"job_name"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

// ScheduledRunIndex is a time-ordered index of scheduled job runs.
// It uses an atomic pointer for lock-free concurrent reads.
type ScheduledRunIndex struct {
	runs atomic.Pointer[[]ScheduledRun]
}

// NewScheduledRunIndex creates a new index from the given runs.
// The input slice is copied and sorted, so the caller can safely reuse it.
func NewScheduledRunIndex(runs []ScheduledRun) *ScheduledRunIndex {
	idx := &ScheduledRunIndex{}
	idx.Swap(runs)
	return idx
}

// Query returns all runs in the time window [start, end), sorted by
// (ScheduledAt, JobID).
func (idx *ScheduledRunIndex) Query(start, end time.Time) []ScheduledRun {
	slice := idx.load()
	if len(slice) == 0 {
		return nil
	}

	startIdx := firstAtOrAfter(slice, start)

	results := []ScheduledRun{}
	for i := startIdx; i < len(slice) && slice[i].ScheduledAt.Before(end); i++ {
		results = append(results, slice[i])
	}

	return results
}

// Next returns the runs at the earliest scheduled time strictly after t.
// Several jobs may share that time. Returns nil when nothing is left.
func (idx *ScheduledRunIndex) Next(t time.Time) []ScheduledRun {
	slice := idx.load()

	i := sort.Search(len(slice), func(i int) bool {
		return slice[i].ScheduledAt.After(t)
	})
	if i == len(slice) {
		return nil
	}

	at := slice[i].ScheduledAt
	results := []ScheduledRun{}
	for ; i < len(slice) && slice[i].ScheduledAt.Equal(at); i++ {
		results = append(results, slice[i])
	}
	return results
}

// All returns a copy of every run in the index.
func (idx *ScheduledRunIndex) All() []ScheduledRun {
	slice := idx.load()
	out := make([]ScheduledRun, len(slice))
	copy(out, slice)
	return out
}

// Len returns the number of scheduled runs in the index.
func (idx *ScheduledRunIndex) Len() int {
	return len(idx.load())
}

// Swap atomically replaces the index with new runs.
// The input slice is copied and sorted, so the caller can safely reuse it.
func (idx *ScheduledRunIndex) Swap(newRuns []ScheduledRun) {
	sorted := make([]ScheduledRun, len(newRuns))
	copy(sorted, newRuns)
	sortRuns(sorted)

	idx.runs.Store(&sorted)
}

func (idx *ScheduledRunIndex) load() []ScheduledRun {
	runs := idx.runs.Load()
	if runs == nil {
		return nil
	}
	return *runs
}

// firstAtOrAfter binary searches for the first run at or after t.
func firstAtOrAfter(runs []ScheduledRun, t time.Time) int {
	return sort.Search(len(runs), func(i int) bool {
		return !runs[i].ScheduledAt.Before(t)
	})
}

// sortRuns sorts runs by (ScheduledAt, JobID).
// When times are equal, runs are ordered by JobID for deterministic iteration.
func sortRuns(runs []ScheduledRun) {
	sort.Slice(runs, func(i, j int) bool {
		if runs[i].ScheduledAt.Equal(runs[j].ScheduledAt) {
			return runs[i].JobID < runs[j].JobID
		}
		return runs[i].ScheduledAt.Before(runs[j].ScheduledAt)
	})
}
