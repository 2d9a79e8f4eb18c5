package resolve

import (
	"math"

	"github.com/xrash/smetrics"
)

// Jaro-Winkler parameters matching the conventional defaults: prefix
// bonus applies above 0.7 base similarity, over at most 4 prefix runes.
const (
	jwBoostThreshold = 0.7
	jwPrefixSize     = 4
)

// score compares records i and j under the resolved spec and returns the
// accumulated similarity score, or 0 for a definitive non-match. A true
// positive can never be exactly 0: every accepted field comparison adds a
// positive contribution, and a pair that accepts no field at all scores 0
// and is treated as a non-match.
//
// Rejection short-circuits in a fixed order: self-comparison, anchor
// gating, no-mismatch fields, then fuzzy fields.
func (cf *compFrame) score(rs *resolvedSpec, i, j int) float64 {
	// A record never matches itself.
	if i == j {
		return 0
	}

	// Two-set gating: only anchor-against-pool comparisons run.
	if cf.anchor != nil && (!cf.anchor[i] || cf.anchor[j]) {
		return 0
	}

	total := 0.0

	// No-mismatch fields: both sides present and different is a
	// rejection; an empty side is a wildcard; agreement scores.
	for k := range cf.nm {
		a, b := cf.nm[k][i], cf.nm[k][j]
		if a == "" || b == "" {
			continue
		}
		if a != b {
			return 0
		}
		total += cf.nmWeights[k]
	}

	for k, ff := range rs.fuzzy {
		col := &cf.fuzzy[k]

		if ff.kind == Number {
			amiss, bmiss := col.miss[i], col.miss[j]
			switch {
			case rs.allowMissing && (amiss || bmiss):
				continue
			case amiss && bmiss:
				continue
			case amiss || bmiss:
				return 0
			}

			diff := math.Abs(col.num[i] - col.num[j])
			if diff > ff.threshold {
				return 0
			}
			total += (ff.threshold - diff) * ff.weight
			continue
		}

		a, b := col.str[i], col.str[j]
		amiss, bmiss := a == "", b == ""
		switch {
		case rs.allowMissing && (amiss || bmiss):
			continue
		case amiss && bmiss:
			continue
		case amiss || bmiss:
			return 0
		}

		sim := smetrics.JaroWinkler(a, b, jwBoostThreshold, jwPrefixSize)
		if sim < ff.threshold {
			return 0
		}
		total += sim * ff.weight
	}

	return total
}
