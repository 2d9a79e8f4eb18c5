package resolve

import (
	"context"
	"sync/atomic"
	"time"
)

// workerCounters are one worker's progress counters. They are mutated
// only by the owning worker and read by the monitor; each is monotonically
// non-decreasing for the worker's lifetime.
type workerCounters struct {
	processed atomic.Int64
	matched   atomic.Int64
	total     atomic.Int64
}

// progressBoard holds all workers' counters plus the run start time.
type progressBoard struct {
	start   time.Time
	workers []workerCounters
}

func newProgressBoard(workers int) *progressBoard {
	return &progressBoard{start: time.Now(), workers: make([]workerCounters, workers)}
}

// WorkerProgress is one worker's progress at a point in time.
type WorkerProgress struct {
	Worker    int
	Processed int64
	Matched   int64
	Total     int64
	// Remaining extrapolates the worker's own pace over its unprocessed
	// rows; negative means no estimate yet.
	Remaining time.Duration
}

// Snapshot is a point-in-time view of the whole run, delivered on the
// progress event channel.
type Snapshot struct {
	Elapsed   time.Duration
	Processed int64
	Matched   int64
	Total     int64
	Workers   []WorkerProgress
}

func (b *progressBoard) snapshot() Snapshot {
	elapsed := time.Since(b.start)
	s := Snapshot{Elapsed: elapsed, Workers: make([]WorkerProgress, len(b.workers))}

	for i := range b.workers {
		w := &b.workers[i]
		wp := WorkerProgress{
			Worker:    i,
			Processed: w.processed.Load(),
			Matched:   w.matched.Load(),
			Total:     w.total.Load(),
			Remaining: -1,
		}
		if wp.Processed > 0 {
			perRow := elapsed / time.Duration(wp.Processed)
			wp.Remaining = perRow * time.Duration(wp.Total-wp.Processed)
		}

		s.Processed += wp.Processed
		s.Matched += wp.Matched
		s.Total += wp.Total
		s.Workers[i] = wp
	}

	return s
}

// monitor periodically snapshots the board onto the event channel. Events
// are dropped rather than blocking a slow consumer; the scoring core never
// waits on a display sink.
func monitor(ctx context.Context, board *progressBoard, every time.Duration, events chan<- Snapshot) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			select {
			case events <- board.snapshot():
			default:
			}
		}
	}
}
