package resolve

import (
	"context"
	"math/rand"
)

// workerOutput is one worker's full result, published exactly once when
// the worker finishes. In single-set mode groups is populated; in two-set
// mode matches is.
type workerOutput struct {
	groups  map[string][]string
	matches map[string][]string
}

// runWorker sequentially processes the worker's assigned blocks. Blocks
// are visited in randomized order so wall-clock ETA extrapolation is
// representative instead of front-loaded with the largest blocks; results
// do not depend on the order. Returns early (partial output, discarded by
// the coordinator) when the run context is cancelled.
func runWorker(ctx context.Context, cf *compFrame, rs *resolvedSpec, bs *blockSet, assigned []int, counters *workerCounters, rng *rand.Rand) workerOutput {
	out := workerOutput{}
	twoSet := cf.anchor != nil
	if twoSet {
		out.matches = make(map[string][]string)
	} else {
		out.groups = make(map[string][]string)
	}

	total := int64(0)
	for _, id := range assigned {
		for _, rec := range bs.members[id] {
			if !twoSet || cf.anchor[rec] {
				total++
			}
		}
	}
	counters.total.Store(total)

	rng.Shuffle(len(assigned), func(a, b int) {
		assigned[a], assigned[b] = assigned[b], assigned[a]
	})

	for _, id := range assigned {
		if ctx.Err() != nil {
			return out
		}
		processBlock(cf, rs, bs.members[id], counters, &out)
	}

	return out
}

// processBlock scores all eligible ordered pairs inside one block, runs
// selection per anchor, and merges the block's result into the worker's
// running output.
func processBlock(cf *compFrame, rs *resolvedSpec, members []int, counters *workerCounters, out *workerOutput) {
	twoSet := cf.anchor != nil

	// pairs collects accepted (anchor, candidate) positions within
	// members for the cluster merge; only used in single-set mode.
	var pairs [][2]int
	var outs []outcome
	processed := int64(0)
	matched := int64(0)

	for ai, anchor := range members {
		if twoSet && !cf.anchor[anchor] {
			continue
		}
		processed++

		outs = outs[:0]
		for ci, cand := range members {
			if s := cf.score(rs, anchor, cand); s > 0 {
				outs = append(outs, outcome{cand: ci, score: s, ord: len(outs)})
			}
		}
		if len(outs) == 0 {
			continue
		}
		matched++

		kept := selectTop(outs, rs.topN)
		if twoSet {
			ids := make([]string, len(kept))
			for k, o := range kept {
				ids[k] = cf.ids[members[o.cand]]
			}
			out.matches[cf.ids[anchor]] = ids
		} else {
			for _, o := range kept {
				pairs = append(pairs, [2]int{ai, o.cand})
			}
		}
	}

	if !twoSet {
		for id, group := range mergeClusters(cf, members, pairs) {
			out.groups[id] = group
		}
	}

	counters.processed.Add(processed)
	counters.matched.Add(matched)
}
