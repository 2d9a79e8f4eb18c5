package resolve

import (
	"sort"
)

// unionFind is a classic disjoint-set over n elements with union by rank
// and path compression.
type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	u := &unionFind{parent: make([]int, n), rank: make([]int, n)}
	for i := range u.parent {
		u.parent[i] = i
	}
	return u
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	if u.rank[ra] < u.rank[rb] {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
	if u.rank[ra] == u.rank[rb] {
		u.rank[ra]++
	}
}

// mergeClusters resolves the accepted pairs of one block into transitive
// duplicate groups. members are the block's record indices; pairs hold
// positions into members. The result maps every member's record id to the
// sorted ids of its group, always including itself — a member with no
// accepted pair becomes its own singleton group. Transitivity holds even
// for members that only ever appeared as candidates.
func mergeClusters(cf *compFrame, members []int, pairs [][2]int) map[string][]string {
	u := newUnionFind(len(members))
	for _, p := range pairs {
		u.union(p[0], p[1])
	}

	byRoot := make(map[int][]string)
	for pos, rec := range members {
		root := u.find(pos)
		byRoot[root] = append(byRoot[root], cf.ids[rec])
	}
	for _, ids := range byRoot {
		sort.Strings(ids)
	}

	groups := make(map[string][]string, len(members))
	for pos, rec := range members {
		groups[cf.ids[rec]] = byRoot[u.find(pos)]
	}
	return groups
}
