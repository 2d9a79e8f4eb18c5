package resolve

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotAggregatesWorkers(t *testing.T) {
	board := newProgressBoard(2)
	board.workers[0].total.Store(10)
	board.workers[0].processed.Store(4)
	board.workers[0].matched.Store(1)
	board.workers[1].total.Store(6)
	board.workers[1].processed.Store(6)
	board.workers[1].matched.Store(3)

	s := board.snapshot()

	assert.EqualValues(t, 10, s.Processed)
	assert.EqualValues(t, 4, s.Matched)
	assert.EqualValues(t, 16, s.Total)
	require.Len(t, s.Workers, 2)
	assert.Equal(t, 0, s.Workers[0].Worker)
	assert.EqualValues(t, 4, s.Workers[0].Processed)
	assert.GreaterOrEqual(t, s.Workers[0].Remaining, time.Duration(0))
	assert.EqualValues(t, 0, s.Workers[1].Remaining)
}

func TestSnapshotNoEstimateBeforeFirstRow(t *testing.T) {
	board := newProgressBoard(1)
	board.workers[0].total.Store(100)

	s := board.snapshot()

	assert.Negative(t, s.Workers[0].Remaining)
}

func TestMonitorDeliversAndStops(t *testing.T) {
	board := newProgressBoard(1)
	board.workers[0].total.Store(5)
	board.workers[0].processed.Store(2)

	ctx, cancel := context.WithCancel(context.Background())
	events := make(chan Snapshot, 1)
	done := make(chan struct{})
	go func() {
		monitor(ctx, board, time.Millisecond, events)
		close(done)
	}()

	select {
	case s := <-events:
		assert.EqualValues(t, 2, s.Processed)
	case <-time.After(time.Second):
		t.Fatal("no progress event delivered")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop on cancellation")
	}
}

func TestMonitorNeverBlocksOnFullChannel(t *testing.T) {
	board := newProgressBoard(1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Unbuffered channel with no reader: events must be dropped, and the
	// monitor must still exit promptly when cancelled.
	events := make(chan Snapshot)
	done := make(chan struct{})
	go func() {
		monitor(ctx, board, time.Millisecond, events)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor blocked on a slow consumer")
	}
}
