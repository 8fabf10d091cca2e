// Package solve implements C4: the matching solver state machine, in
// both its forms — Variant A (student/college deferred acceptance with
// capacities) and Variant B (kidney-exchange cycle finding).
package solve

import "matchcore/internal/matching/types"

// studentRank returns the index of college c within student s's real
// preference entries, or -1 if c does not appear (the student finds it
// unacceptable).
func studentRank(prefs types.StudentPrefs, s, c int) int {
	for j := 0; j < types.MaxPrefs; j++ {
		v := prefs[s][j]
		if v == types.Unmatched {
			return -1
		}
		if v == c {
			return j
		}
	}
	return -1
}

// SolveStudentCollege runs college-proposing deferred acceptance with
// capacities over permuted input. Inputs are assumed to already satisfy
// the data-model invariants of spec.md §3 (row prefixes of distinct real
// indices followed by Unmatched padding, capacities within bounds); they
// are not validated here. A college-row entry at or beyond actualStudents
// is skipped, duplicate entries are not detected, and the only panic is a
// capacity above MaxCapacity, which exhausts the college's slots in assign.
func SolveStudentCollege(prefsS types.StudentPrefs, prefsC types.CollegePrefs, capacities types.Capacities, actualStudents, actualColleges int) (types.StudentMatches, types.CollegeMatches) {
	var currentMatch types.StudentMatches
	for i := range currentMatch {
		currentMatch[i] = types.Unmatched
	}
	var assigned types.CollegeMatches
	for c := range assigned {
		for slot := range assigned[c] {
			assigned[c][slot] = types.Unmatched
		}
	}
	var nextOffer [types.NumColleges]int

	freeSlots := func(c int) int {
		n := capacities[c]
		for _, s := range assigned[c] {
			if s != types.Unmatched {
				n--
			}
		}
		return n
	}
	assign := func(c, s int) {
		for slot := range assigned[c] {
			if assigned[c][slot] == types.Unmatched {
				assigned[c][slot] = s
				return
			}
		}
		panic("solve: assign called with no free slot")
	}
	unassign := func(c, s int) {
		for slot := range assigned[c] {
			if assigned[c][slot] == s {
				assigned[c][slot] = types.Unmatched
				return
			}
		}
	}

	// Each (s, c) pair can be proposed at most once: next_offer_index[c]
	// only increases and is bounded by actualStudents, so the number of
	// passes needed to drain every college's offer queue is bounded by
	// actualStudents * NumColleges.
	maxPasses := types.NumStudents*types.NumColleges + 1
	for pass := 0; pass < maxPasses; pass++ {
		madeOffer := false
		for c := 0; c < actualColleges; c++ {
			if c >= types.NumColleges || capacities[c] == 0 {
				continue
			}
			if freeSlots(c) <= 0 || nextOffer[c] >= actualStudents {
				continue
			}
			s := prefsC[c][nextOffer[c]]
			nextOffer[c]++
			madeOffer = true
			if s == types.Unmatched || s >= actualStudents {
				continue
			}
			rank := studentRank(prefsS, s, c)
			if rank < 0 {
				continue // student finds c unacceptable
			}
			accept := false
			if currentMatch[s] == types.Unmatched {
				accept = true
			} else if rank < studentRank(prefsS, s, currentMatch[s]) {
				accept = true
			}
			if accept {
				if oldC := currentMatch[s]; oldC != types.Unmatched {
					unassign(oldC, s)
				}
				assign(c, s)
				currentMatch[s] = c
			}
		}
		if !madeOffer {
			break
		}
	}
	return currentMatch, assigned
}
