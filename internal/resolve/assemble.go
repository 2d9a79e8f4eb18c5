package resolve

// DedupRow is one row of single-set output: a record id and its duplicate
// group, which always includes the id itself.
type DedupRow struct {
	ID         string
	Duplicates []string
}

// MatchRow is one row of two-set output: an anchor id and its accepted
// candidate ids. Matches is ordered by descending score when a cap was
// requested, by pair order otherwise, and is empty when nothing matched.
type MatchRow struct {
	ID      string
	Matches []string
}

// assembleDedup shapes the merged worker groups into the final table.
// Records excluded from blocking or left in ineligible blocks come back
// as their own singleton group; every input record appears exactly once,
// in input order.
func assembleDedup(cf *compFrame, merged map[string][]string) []DedupRow {
	rows := make([]DedupRow, 0, cf.len())
	for i := 0; i < cf.len(); i++ {
		id := cf.ids[i]
		group, ok := merged[id]
		if !ok {
			group = []string{id}
		}
		rows = append(rows, DedupRow{ID: id, Duplicates: group})
	}
	return rows
}

// assembleMatch shapes the merged worker matches into the final crosswalk.
// Every anchor appears exactly once, in input order, with an empty match
// list when nothing was accepted; pool-only records never get a row.
func assembleMatch(cf *compFrame, merged map[string][]string) []MatchRow {
	rows := make([]MatchRow, 0, cf.len())
	for i := 0; i < cf.len(); i++ {
		if !cf.anchor[i] {
			continue
		}
		id := cf.ids[i]
		rows = append(rows, MatchRow{ID: id, Matches: merged[id]})
	}
	return rows
}
