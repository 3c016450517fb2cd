package combination

import "fmt"

// Strategy names a traversal used to enumerate combinations. Both produce the
// same set of label sets; only the order of the output may differ.
type Strategy string

const (
	// StrategySubsets chooses k groups first, then takes the cross product of
	// their items.
	StrategySubsets Strategy = "subsets"
	// StrategyBacktrack walks the item list depth-first, skipping items whose
	// group is already on the current path.
	StrategyBacktrack Strategy = "backtrack"
)

// GenerateFunc enumerates every combination of length distinct groups.
type GenerateFunc func(items []Item, length int) [][]string

// ForStrategy resolves a strategy name to its generator.
func ForStrategy(s Strategy) (GenerateFunc, error) {
	switch s {
	case StrategySubsets, "":
		return Generate, nil
	case StrategyBacktrack:
		return GenerateBacktrack, nil
	default:
		return nil, fmt.Errorf("unknown generator strategy %q", s)
	}
}

// preallocLimit caps the capacity hint so a huge (or saturated) Count does
// not allocate up front.
const preallocLimit = 1 << 16

// Generate returns every combination that picks one item from each of
// length distinct groups. Groups are taken in order of first appearance in
// items, and each tuple lists its labels in that same group order.
//
// The result is empty (never nil) when length <= 0 or when fewer than length
// groups are present.
func Generate(items []Item, length int) [][]string {
	groups := groupLabels(items)
	if length <= 0 || len(groups) < length {
		return [][]string{}
	}

	sizes := make([]int, len(groups))
	for i, g := range groups {
		sizes[i] = len(g)
	}
	out := make([][]string, 0, capacityHint(Count(sizes, length)))

	// chosen walks the k-subsets of group indices in lexicographic order.
	chosen := make([]int, length)
	for i := range chosen {
		chosen[i] = i
	}
	for {
		out = appendProduct(out, groups, chosen)

		i := length - 1
		for i >= 0 && chosen[i] == len(groups)-length+i {
			i--
		}
		if i < 0 {
			return out
		}
		chosen[i]++
		for j := i + 1; j < length; j++ {
			chosen[j] = chosen[j-1] + 1
		}
	}
}

// appendProduct appends the cross product of the chosen groups to out. The
// last group varies fastest.
func appendProduct(out [][]string, groups [][]string, chosen []int) [][]string {
	pos := make([]int, len(chosen))
	for {
		combo := make([]string, len(chosen))
		for i, g := range chosen {
			combo[i] = groups[g][pos[i]]
		}
		out = append(out, combo)

		i := len(chosen) - 1
		for ; i >= 0; i-- {
			pos[i]++
			if pos[i] < len(groups[chosen[i]]) {
				break
			}
			pos[i] = 0
		}
		if i < 0 {
			return out
		}
	}
}

// GenerateBacktrack enumerates the same set as Generate by a depth-first walk
// over item indices. The walk keeps an explicit stack instead of recursing,
// and an item is only pushed when its group is not already on the path.
// Indices on the path are strictly increasing, so each label set is visited
// exactly once. Each tuple lists its labels in order of first group
// appearance, as Generate does, even when groups are interleaved in items.
func GenerateBacktrack(items []Item, length int) [][]string {
	rank, n := groupRanks(items)
	if length <= 0 || n < length {
		return [][]string{}
	}

	out := [][]string{}
	var used [256]bool
	path := make([]int, 0, length)
	ordered := make([]int, length)
	next := 0

	pop := func() {
		last := path[len(path)-1]
		path = path[:len(path)-1]
		used[items[last].Group] = false
		next = last + 1
	}

	for {
		if len(path) == length {
			copy(ordered, path)
			for i := 1; i < length; i++ {
				for j := i; j > 0 && rank[items[ordered[j]].Group] < rank[items[ordered[j-1]].Group]; j-- {
					ordered[j], ordered[j-1] = ordered[j-1], ordered[j]
				}
			}
			combo := make([]string, length)
			for i, idx := range ordered {
				combo[i] = items[idx].Label
			}
			out = append(out, combo)
			pop()
			continue
		}

		for next < len(items) && used[items[next].Group] {
			next++
		}
		if next < len(items) {
			path = append(path, next)
			used[items[next].Group] = true
			next++
			continue
		}

		if len(path) == 0 {
			return out
		}
		pop()
	}
}

// groupLabels partitions item labels by group, ordering groups by first
// appearance and keeping item order inside each group.
func groupLabels(items []Item) [][]string {
	var index [256]int
	var groups [][]string
	for _, it := range items {
		i := index[it.Group] - 1
		if i < 0 {
			groups = append(groups, nil)
			i = len(groups) - 1
			index[it.Group] = len(groups)
		}
		groups[i] = append(groups[i], it.Label)
	}
	return groups
}

// groupRanks numbers groups by first appearance in items and returns the
// number of distinct groups.
func groupRanks(items []Item) (rank [256]int, n int) {
	var seen [256]bool
	for _, it := range items {
		if !seen[it.Group] {
			seen[it.Group] = true
			rank[it.Group] = n
			n++
		}
	}
	return rank, n
}

func capacityHint(n uint64) int {
	if n > preallocLimit {
		return preallocLimit
	}
	return int(n)
}
