package permute

import "matchcore/internal/matching/types"

// ApplyStudentPrefs relocates student_prefs under (piS, piC): permuted
// row piS[i] holds [piC[prefs[i][j]]] for each real entry, UNMATCHED
// left as-is.
func ApplyStudentPrefs(prefs types.StudentPrefs, piS, piC Permutation) types.StudentPrefs {
	var out types.StudentPrefs
	for i := 0; i < types.NumStudents; i++ {
		row := piS.Apply(i)
		for j := 0; j < types.MaxPrefs; j++ {
			v := prefs[i][j]
			if v == types.Unmatched {
				out[row][j] = types.Unmatched
				continue
			}
			out[row][j] = piC.Apply(v)
		}
	}
	return out
}

// ApplyCollegePrefs relocates college_prefs under (piC, piS), the mirror
// of ApplyStudentPrefs.
func ApplyCollegePrefs(prefs types.CollegePrefs, piC, piS Permutation) types.CollegePrefs {
	var out types.CollegePrefs
	for i := 0; i < types.NumColleges; i++ {
		row := piC.Apply(i)
		for j := 0; j < types.NumStudents; j++ {
			v := prefs[i][j]
			if v == types.Unmatched {
				out[row][j] = types.Unmatched
				continue
			}
			out[row][j] = piS.Apply(v)
		}
	}
	return out
}

// ApplyCapacities relocates capacities[i] to permuted index pi[i].
func ApplyCapacities(cap types.Capacities, pi Permutation) types.Capacities {
	var out types.Capacities
	for i := 0; i < types.NumColleges; i++ {
		out[pi.Apply(i)] = cap[i]
	}
	return out
}

// ApplyStudentKeys relocates keys[i] to permuted index pi[i].
func ApplyStudentKeys(keys [types.NumStudents]types.Point, pi Permutation) [types.NumStudents]types.Point {
	var out [types.NumStudents]types.Point
	for i := 0; i < types.NumStudents; i++ {
		out[pi.Apply(i)] = keys[i]
	}
	return out
}

// ApplyCollegeKeys relocates keys[i] to permuted index pi[i].
func ApplyCollegeKeys(keys [types.NumColleges]types.Point, pi Permutation) [types.NumColleges]types.Point {
	var out [types.NumColleges]types.Point
	for i := 0; i < types.NumColleges; i++ {
		out[pi.Apply(i)] = keys[i]
	}
	return out
}

// InvertStudentMatches maps permuted matches back to original student
// and college identities.
func InvertStudentMatches(matches types.StudentMatches, piS, piC Permutation) types.StudentMatches {
	invS := piS.Invert()
	invC := piC.Invert()
	var out types.StudentMatches
	for permutedS := 0; permutedS < types.NumStudents; permutedS++ {
		origS := invS[permutedS]
		c := matches[permutedS]
		if c == types.Unmatched {
			out[origS] = types.Unmatched
			continue
		}
		out[origS] = invC[c]
	}
	return out
}

// InvertCollegeMatches maps permuted college assignments back to
// original student and college identities.
func InvertCollegeMatches(matches types.CollegeMatches, piS, piC Permutation) types.CollegeMatches {
	invS := piS.Invert()
	invC := piC.Invert()
	var out types.CollegeMatches
	for permutedC := 0; permutedC < types.NumColleges; permutedC++ {
		origC := invC[permutedC]
		for slot, s := range matches[permutedC] {
			if s == types.Unmatched {
				out[origC][slot] = types.Unmatched
				continue
			}
			out[origC][slot] = invS[s]
		}
	}
	return out
}
