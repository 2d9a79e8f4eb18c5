package resolve

import (
	"sort"
)

// blockSet is the output of blocking: record indices grouped by their
// exact-match key, with dense integer block ids. Ids are stable within one
// run only.
type blockSet struct {
	// members maps block id to the record indices sharing that key.
	members [][]int

	// eligible lists block ids that participate in scoring, ordered by
	// descending size so the partitioner sees expensive blocks first.
	eligible []int

	// blockOf maps record index to block id, -1 for records excluded
	// from blocking.
	blockOf []int
}

// buildBlocks groups records by exact key and decides eligibility. In
// single-set mode a block participates when it has two or more members; in
// two-set mode it needs at least one anchor and one pool record. Everything
// else passes straight to the unmatched output.
func buildBlocks(cf *compFrame) *blockSet {
	bs := &blockSet{blockOf: make([]int, cf.len())}

	byKey := make(map[string]int)
	for i := 0; i < cf.len(); i++ {
		key := cf.exactKey[i]
		if key == "" {
			bs.blockOf[i] = -1
			continue
		}

		id, ok := byKey[key]
		if !ok {
			id = len(bs.members)
			byKey[key] = id
			bs.members = append(bs.members, nil)
		}
		bs.members[id] = append(bs.members[id], i)
		bs.blockOf[i] = id
	}

	for id, members := range bs.members {
		if eligibleBlock(cf, members) {
			bs.eligible = append(bs.eligible, id)
		}
	}

	// Larger blocks cost quadratically more; order them first. Ties keep
	// block-id order for a deterministic partition.
	sort.SliceStable(bs.eligible, func(a, b int) bool {
		return len(bs.members[bs.eligible[a]]) > len(bs.members[bs.eligible[b]])
	})

	return bs
}

func eligibleBlock(cf *compFrame, members []int) bool {
	if len(members) < 2 {
		return false
	}
	if cf.anchor == nil {
		return true
	}

	anchors, pool := 0, 0
	for _, i := range members {
		if cf.anchor[i] {
			anchors++
		} else {
			pool++
		}
	}
	return anchors > 0 && pool > 0
}
