package resolve

// partitionBlocks splits an ordered list of eligible block ids across
// workers. Blocks arrive ordered by descending expected cost, so a plain
// round-robin by position gives late buckets systematically smaller
// blocks; a single pairwise rebalance pass then moves one block from each
// early bucket's tail to its mirror-image late bucket when the late one
// holds fewer blocks. This only reduces the worst-case straggler, it does
// not minimize makespan.
func partitionBlocks(ordered []int, workers int) [][]int {
	if workers < 1 {
		workers = 1
	}

	buckets := make([][]int, workers)
	for pos, id := range ordered {
		w := pos % workers
		buckets[w] = append(buckets[w], id)
	}

	for k := 0; k < workers; k++ {
		if k+1 > workers/2 {
			break
		}
		early, late := buckets[k], buckets[workers-1-k]
		if len(late) >= len(early) {
			break
		}
		buckets[workers-1-k] = append(late, early[len(early)-1])
		buckets[k] = early[:len(early)-1]
	}

	return buckets
}
