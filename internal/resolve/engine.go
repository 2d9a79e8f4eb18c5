package resolve

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// run is the parallel coordinator: it blocks the comparison frame,
// partitions the eligible blocks across workers, and spawns the workers,
// the memory guard, and (when requested) the progress monitor. Worker
// outputs are write-once and merged only after every worker has finished.
// A memory-guard trip is a fatal error with no result, even when some
// workers completed their share.
func run(ctx context.Context, cf *compFrame, rs *resolvedSpec, events chan<- Snapshot) (map[string][]string, error) {
	log := zap.L().With(zap.String("component", "resolve"))

	bs := buildBlocks(cf)
	buckets := partitionBlocks(bs.eligible, rs.workers)

	log.Info("starting matching run",
		zap.Int("records", cf.len()),
		zap.Int("blocks", len(bs.members)),
		zap.Int("eligible_blocks", len(bs.eligible)),
		zap.Int("workers", rs.workers),
	)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var aborted atomic.Bool
	if rs.memoryPct > 0 {
		go memoryGuard(runCtx, rs.memoryPct, &aborted, cancel)
	}

	board := newProgressBoard(rs.workers)
	monitorDone := make(chan struct{})
	if rs.progressEvery > 0 && events != nil {
		go func() {
			defer close(monitorDone)
			monitor(runCtx, board, rs.progressEvery, events)
		}()
	} else {
		close(monitorDone)
	}

	// Each worker owns exactly one slot; no two workers ever share a key.
	outputs := make([]workerOutput, rs.workers)

	var wg sync.WaitGroup
	for w := 0; w < rs.workers; w++ {
		if aborted.Load() {
			break
		}

		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(w)))
			outputs[w] = runWorker(runCtx, cf, rs, bs, buckets[w], &board.workers[w], rng)
		}(w)

		log.Debug("started worker", zap.Int("worker", w), zap.Int("blocks", len(buckets[w])))
	}
	wg.Wait()
	cancel()
	// The caller may close the event channel once we return; make sure
	// the monitor can no longer send on it.
	<-monitorDone

	if aborted.Load() {
		return nil, ErrMemoryLimit
	}
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "resolve: run cancelled")
	}

	// Worker key spaces are disjoint by construction: each worker owns
	// non-overlapping blocks, and two records in different blocks are
	// never compared.
	merged := make(map[string][]string)
	for _, out := range outputs {
		for id, group := range out.groups {
			merged[id] = group
		}
		for id, matches := range out.matches {
			merged[id] = matches
		}
	}

	log.Info("matching run complete",
		zap.Int("matched_rows", len(merged)),
		zap.Duration("elapsed", time.Since(board.start)),
	)

	return merged, nil
}
