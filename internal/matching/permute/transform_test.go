package permute

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"matchcore/internal/matching/types"
)

func samplePrefs() (types.StudentPrefs, types.CollegePrefs, types.Capacities) {
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

func TestApplyStudentPrefsRelocatesEntries(t *testing.T) {
	prefsS, _, _ := samplePrefs()
	piS := Generate(big.NewInt(5), types.NumStudents)
	piC := Generate(big.NewInt(9), types.NumColleges)

	permuted := ApplyStudentPrefs(prefsS, piS, piC)

	// Any real entry in row i, column j should reappear, under the
	// permuted identities, at row piS(i), column j.
	for i := 0; i < types.NumStudents; i++ {
		for j := 0; j < types.MaxPrefs; j++ {
			v := prefsS[i][j]
			row := piS.Apply(i)
			if v == types.Unmatched {
				require.Equal(t, types.Unmatched, permuted[row][j])
				continue
			}
			require.Equal(t, piC.Apply(v), permuted[row][j])
		}
	}
}

func TestInvertStudentMatchesRoundTrip(t *testing.T) {
	piS := Generate(big.NewInt(3), types.NumStudents)
	piC := Generate(big.NewInt(4), types.NumColleges)

	var permutedMatches types.StudentMatches
	for i := range permutedMatches {
		permutedMatches[i] = types.Unmatched
	}
	permutedMatches[piS.Apply(0)] = piC.Apply(1)
	permutedMatches[piS.Apply(2)] = piC.Apply(2)

	restored := InvertStudentMatches(permutedMatches, piS, piC)
	require.Equal(t, 1, restored[0])
	require.Equal(t, 2, restored[2])
	require.Equal(t, types.Unmatched, restored[1])
}

func TestApplyCapacitiesRelocates(t *testing.T) {
	_, _, caps := samplePrefs()
	pi := Generate(big.NewInt(2), types.NumColleges)
	permuted := ApplyCapacities(caps, pi)
	for i := 0; i < types.NumColleges; i++ {
		require.Equal(t, caps[i], permuted[pi.Apply(i)])
	}
}

func TestInvertCollegeMatchesRoundTrip(t *testing.T) {
	piS := Generate(big.NewInt(13), types.NumStudents)
	piC := Generate(big.NewInt(21), types.NumColleges)

	var permutedMatches types.CollegeMatches
	for c := range permutedMatches {
		for slot := range permutedMatches[c] {
			permutedMatches[c][slot] = types.Unmatched
		}
	}
	permutedMatches[piC.Apply(1)][0] = piS.Apply(0)

	restored := InvertCollegeMatches(permutedMatches, piS, piC)
	require.Equal(t, 0, restored[1][0])
}
