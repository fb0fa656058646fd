package americano

import "slices"

const (
	// maxCandidates bounds the groups scored per court.
	maxCandidates = 50
	// maxEnumeratedGroups is the largest combination count enumerated in full. Larger pools
	// draw maxCandidates distinct groups directly instead.
	maxEnumeratedGroups = 20000
)

// split is one way to divide a group into two teams.
type split struct {
	team1 []int
	team2 []int
}

// placement is a split assigned to a court.
type placement struct {
	court int
	team1 []int
	team2 []int
}

func (p placement) players() []int {
	out := make([]int, 0, len(p.team1)+len(p.team2))
	out = append(out, p.team1...)
	return append(out, p.team2...)
}

// candidateGroups returns the groups of the given size to score for one court, in the order
// they are evaluated. Pools with more than maxCandidates groups are sampled with src.
func candidateGroups(pool []int, size int, src *Source) [][]int {
	if len(pool) < size {
		return nil
	}
	if binomial(len(pool), size, maxEnumeratedGroups+1) > maxEnumeratedGroups {
		return sampleGroups(pool, size, src)
	}

	groups := combinations(pool, size)
	if len(groups) > maxCandidates {
		src.Shuffle(len(groups), func(i, j int) {
			groups[i], groups[j] = groups[j], groups[i]
		})
		groups = groups[:maxCandidates]
	}
	return groups
}

// combinations enumerates size-k subsets of pool in lexicographic position order.
func combinations(pool []int, k int) [][]int {
	n := len(pool)
	if k <= 0 || k > n {
		return nil
	}

	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}

	var out [][]int
	for {
		group := make([]int, k)
		for i, p := range idx {
			group[i] = pool[p]
		}
		out = append(out, group)

		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			return out
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

// sampleGroups draws maxCandidates distinct groups with partial Fisher-Yates passes.
// Callers guarantee the pool has far more than maxCandidates groups.
func sampleGroups(pool []int, size int, src *Source) [][]int {
	scratch := append([]int(nil), pool...)
	seen := make(map[[4]int]struct{}, maxCandidates)
	out := make([][]int, 0, maxCandidates)

	for len(out) < maxCandidates {
		for i := 0; i < size; i++ {
			j := i + src.Intn(len(scratch)-i)
			scratch[i], scratch[j] = scratch[j], scratch[i]
		}

		group := append([]int(nil), scratch[:size]...)
		slices.Sort(group)

		key := [4]int{-1, -1, -1, -1}
		copy(key[:], group)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, group)
	}
	return out
}

// splits lists the distinct team divisions of a group: 3 for doubles, 1 for singles.
func splits(group []int) []split {
	switch len(group) {
	case 2:
		return []split{{team1: []int{group[0]}, team2: []int{group[1]}}}
	case 4:
		p0, p1, p2, p3 := group[0], group[1], group[2], group[3]
		return []split{
			{team1: []int{p0, p1}, team2: []int{p2, p3}},
			{team1: []int{p0, p2}, team2: []int{p1, p3}},
			{team1: []int{p0, p3}, team2: []int{p1, p2}},
		}
	default:
		return nil
	}
}

// binomial computes C(n,k), saturating at limit.
func binomial(n, k, limit int) int {
	if k < 0 || k > n {
		return 0
	}
	k = min(k, n-k)
	result := 1
	for i := 0; i < k; i++ {
		result = result * (n - i) / (i + 1)
		if result >= limit {
			return limit
		}
	}
	return result
}
