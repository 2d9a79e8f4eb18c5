package resolve

import (
	"sort"
)

// outcome is one accepted comparison for a fixed anchor: the candidate's
// record index, the positive score, and the order the pair was generated
// in (the deterministic tie-break).
type outcome struct {
	cand  int
	score float64
	ord   int
}

// selectTop picks the candidates to keep for one anchor. With no cap it
// returns the outcomes as-is, in pair order. With a cap it keeps the n
// highest-scoring outcomes, ordered by descending score with pair order
// breaking ties; when more than n candidates compete, an in-place
// quickselect partition isolates the survivors first rather than sorting
// everything, and which equal-scored outcome lands just inside versus
// just outside the cap boundary is unspecified.
func selectTop(outs []outcome, n int) []outcome {
	if n <= 0 {
		return outs
	}

	if len(outs) > n {
		quickselect(outs, n)
		outs = outs[:n]
	}
	sort.Slice(outs, func(a, b int) bool {
		if outs[a].score != outs[b].score {
			return outs[a].score > outs[b].score
		}
		return outs[a].ord < outs[b].ord
	})
	return outs
}

// quickselect partitions outs so the n largest scores occupy outs[:n].
// Average linear time; no ordering guarantee within either side.
func quickselect(outs []outcome, n int) {
	lo, hi := 0, len(outs)-1
	for lo < hi {
		p := partition(outs, lo, hi)
		switch {
		case p == n-1:
			return
		case p < n-1:
			lo = p + 1
		default:
			hi = p - 1
		}
	}
}

// partition moves elements scoring above the pivot left of it and returns
// the pivot's final position. Descending order, median-of-three pivot.
func partition(outs []outcome, lo, hi int) int {
	mid := lo + (hi-lo)/2
	if outs[mid].score > outs[lo].score {
		outs[mid], outs[lo] = outs[lo], outs[mid]
	}
	if outs[hi].score > outs[lo].score {
		outs[hi], outs[lo] = outs[lo], outs[hi]
	}
	if outs[mid].score > outs[hi].score {
		outs[mid], outs[hi] = outs[hi], outs[mid]
	}
	pivot := outs[hi].score

	i := lo
	for j := lo; j < hi; j++ {
		if outs[j].score > pivot {
			outs[i], outs[j] = outs[j], outs[i]
			i++
		}
	}
	outs[i], outs[hi] = outs[hi], outs[i]
	return i
}
