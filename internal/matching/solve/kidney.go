package solve

import "matchcore/internal/matching/types"

// SolveKidneyExchange enumerates simple 2- and 3-cycles over a fixed-size
// directed compatibility graph (spec.md §4.4 Variant B) by triple-nested
// indexed iteration bounded by types.MaxEdges, then greedily selects an
// edge-disjoint set of cycles, preferring length-3 cycles over length-2
// ones. Returns up to types.MaxCycles cycles.
func SolveKidneyExchange(input types.KidneyInput) []types.Cycle {
	edges := input.Edges
	n := input.NumEdges

	findEdge := func(from, to int) int {
		for e := 0; e < n; e++ {
			if edges[e].From == from && edges[e].To == to {
				return e
			}
		}
		return -1
	}

	var threeCycles, twoCycles []types.Cycle

	// Length-3 cycles: e1: i->j, e2: j->k, e3: k->i, i/j/k pairwise
	// distinct. Triple-nested over edge indices, fixed bound MaxEdges.
	for e1 := 0; e1 < n; e1++ {
		i, j := edges[e1].From, edges[e1].To
		for e2 := 0; e2 < n; e2++ {
			if edges[e2].From != j {
				continue
			}
			k := edges[e2].To
			if k == i || k == j {
				continue
			}
			for e3 := 0; e3 < n; e3++ {
				if edges[e3].From == k && edges[e3].To == i {
					threeCycles = append(threeCycles, types.Cycle{
						EdgeIdx: [3]int{e1, e2, e3},
						Length:  3,
					})
				}
			}
		}
	}

	// Length-2 cycles: i->j and j->i, i != j.
	for e1 := 0; e1 < n; e1++ {
		i, j := edges[e1].From, edges[e1].To
		if i == j {
			continue
		}
		if e2 := findEdge(j, i); e2 >= 0 && e2 > e1 {
			twoCycles = append(twoCycles, types.Cycle{
				EdgeIdx: [3]int{e1, e2, types.Unmatched},
				Length:  2,
			})
		}
	}

	used := make(map[int]bool, n)
	var selected []types.Cycle

	tryAccept := func(c types.Cycle) bool {
		for i := 0; i < c.Length; i++ {
			if used[c.EdgeIdx[i]] {
				return false
			}
		}
		for i := 0; i < c.Length; i++ {
			used[c.EdgeIdx[i]] = true
		}
		return true
	}

	for _, c := range threeCycles {
		if len(selected) >= types.MaxCycles {
			break
		}
		if tryAccept(c) {
			selected = append(selected, c)
		}
	}
	for _, c := range twoCycles {
		if len(selected) >= types.MaxCycles {
			break
		}
		if tryAccept(c) {
			selected = append(selected, c)
		}
	}
	return selected
}
