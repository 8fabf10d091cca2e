package solve

import (
	"testing"

	"github.com/stretchr/testify/require"

	"matchcore/internal/matching/types"
)

func sampleInstance() (types.StudentPrefs, types.CollegePrefs, types.Capacities) {
	u := types.Unmatched
	prefsS := types.StudentPrefs{
		{0, 1, 2, u, u},
		{1, 0, 2, u, u},
		{0, 2, 1, u, u},
		{2, 1, 0, u, u},
		{1, 2, 0, u, u},
	}
	prefsC := types.CollegePrefs{
		{2, 0, 4, 1, 3},
		{4, 1, 3, 0, 2},
		{0, 3, 1, 4, 2},
	}
	caps := types.Capacities{2, 2, 1}
	return prefsS, prefsC, caps
}

// checkConsistent verifies that matches and assigned are two views of the
// same assignment: s is in assigned[c] iff matches[s] == c.
func checkConsistent(t *testing.T, matches types.StudentMatches, assigned types.CollegeMatches) {
	t.Helper()
	for s, c := range matches {
		if c == types.Unmatched {
			continue
		}
		found := false
		for _, v := range assigned[c] {
			if v == s {
				found = true
			}
		}
		require.True(t, found, "student %d assigned to college %d but not present in its slots", s, c)
	}
	for c, seats := range assigned {
		for _, s := range seats {
			if s == types.Unmatched {
				continue
			}
			require.Equal(t, c, matches[s], "college %d holds student %d but student's match disagrees", c, s)
		}
	}
}

// checkCapacity verifies no college exceeds its declared capacity.
func checkCapacity(t *testing.T, assigned types.CollegeMatches, caps types.Capacities) {
	t.Helper()
	for c, seats := range assigned {
		filled := 0
		for _, s := range seats {
			if s != types.Unmatched {
				filled++
			}
		}
		require.LessOrEqual(t, filled, caps[c])
	}
}

// checkStability verifies no blocking pair exists: no (s, c) where s
// prefers c to its current match and c has either a free slot or prefers
// s to its least-preferred current occupant.
func checkStability(t *testing.T, prefsS types.StudentPrefs, prefsC types.CollegePrefs, caps types.Capacities, matches types.StudentMatches, assigned types.CollegeMatches) {
	t.Helper()
	for s := 0; s < types.NumStudents; s++ {
		sRank := func(c int) int { return studentRank(prefsS, s, c) }
		curRank := -1
		if matches[s] != types.Unmatched {
			curRank = sRank(matches[s])
		}
		for c := 0; c < types.NumColleges; c++ {
			cRank := sRank(c)
			if cRank < 0 {
				continue // s finds c unacceptable
			}
			if curRank >= 0 && cRank >= curRank {
				continue // s does not prefer c to its current match
			}
			// s prefers c. c must be fully subscribed with students it
			// prefers to s for this not to be a blocking pair.
			occupied := 0
			worstAccepted := -1
			for _, occ := range assigned[c] {
				if occ == types.Unmatched {
					continue
				}
				occupied++
				r := collegeRank(prefsC, c, occ)
				if r > worstAccepted {
					worstAccepted = r
				}
			}
			if occupied < caps[c] {
				t.Fatalf("blocking pair (student %d, college %d): college has a free slot", s, c)
			}
			sRankAtC := collegeRank(prefsC, c, s)
			if sRankAtC < 0 {
				continue // college finds s unacceptable, no blocking pair
			}
			require.Greater(t, sRankAtC, worstAccepted, "blocking pair (student %d, college %d)", s, c)
		}
	}
}

func collegeRank(prefsC types.CollegePrefs, c, s int) int {
	for j := 0; j < types.NumStudents; j++ {
		v := prefsC[c][j]
		if v == types.Unmatched {
			return -1
		}
		if v == s {
			return j
		}
	}
	return -1
}

func TestSolveStudentCollegeProducesStableCapacityRespectingMatching(t *testing.T) {
	prefsS, prefsC, caps := sampleInstance()
	matches, assigned := SolveStudentCollege(prefsS, prefsC, caps, types.NumStudents, types.NumColleges)

	checkConsistent(t, matches, assigned)
	checkCapacity(t, assigned, caps)
	checkStability(t, prefsS, prefsC, caps, matches, assigned)
}

func TestSolveStudentCollegeHonorsZeroCapacity(t *testing.T) {
	prefsS, prefsC, caps := sampleInstance()
	caps[2] = 0
	matches, assigned := SolveStudentCollege(prefsS, prefsC, caps, types.NumStudents, types.NumColleges)

	for _, s := range assigned[2] {
		require.Equal(t, types.Unmatched, s)
	}
	for _, c := range matches {
		require.NotEqual(t, 2, c)
	}
}

func TestSolveStudentCollegeUnacceptablePairNeverMatches(t *testing.T) {
	u := types.Unmatched
	prefsS := types.StudentPrefs{
		{1, u, u, u, u}, // student 0 only accepts college 1
		{0, u, u, u, u},
		{0, u, u, u, u},
		{0, u, u, u, u},
		{0, u, u, u, u},
	}
	prefsC := types.CollegePrefs{
		{1, 2, 3, 4, u}, // college 0 never lists student 0
		{0, u, u, u, u},
		{u, u, u, u, u},
	}
	caps := types.Capacities{3, 1, 0}

	matches, assigned := SolveStudentCollege(prefsS, prefsC, caps, types.NumStudents, types.NumColleges)
	// College 0 never lists student 0 as acceptable, so the pair must
	// never match regardless of how badly either side would otherwise
	// prefer it.
	require.NotEqual(t, 0, matches[0])
	checkConsistent(t, matches, assigned)
}

func TestSolveStudentCollegeHandlesPartialActualCounts(t *testing.T) {
	prefsS, prefsC, caps := sampleInstance()
	// Only 3 of the 5 student slots and 2 of the 3 college slots are
	// "real"; the rest are padding rows the solver must not touch.
	matches, assigned := SolveStudentCollege(prefsS, prefsC, caps, 3, 2)
	for s := 3; s < types.NumStudents; s++ {
		require.Equal(t, types.Unmatched, matches[s])
	}
	checkConsistent(t, matches, assigned)
	checkCapacity(t, assigned, caps)
}
