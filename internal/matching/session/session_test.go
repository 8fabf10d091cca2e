package session

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"matchcore/internal/matching/curve"
	"matchcore/internal/matching/types"
)

// buildInputWithKeys constructs a fixed 5-student/3-college instance
// (spec.md's E1 regression-vector size) with fresh per-participant
// ElGamal keys, returning the keys alongside the input so tests can
// later decrypt each participant's own ciphertext slot.
func buildInputWithKeys(t *testing.T) (types.Input, []curve.KeyPair, []curve.KeyPair) {
	t.Helper()
	u := types.Unmatched
	var in types.Input
	in.StudentPrefs = types.StudentPrefs{
		{0, 1, 2, u, u},
		{1, 0, 2, u, u},
		{0, 2, 1, u, u},
		{2, 1, 0, u, u},
		{1, 2, 0, u, u},
	}
	in.CollegePrefs = types.CollegePrefs{
		{2, 0, 4, 1, 3},
		{4, 1, 3, 0, 2},
		{0, 3, 1, 4, 2},
	}
	in.CollegeCapacities = types.Capacities{2, 2, 1}
	in.ActualStudentList = types.NumStudents
	in.ActualUniList = types.NumColleges
	in.NonceSeed = big.NewInt(42)
	in.PermutationSeed = big.NewInt(7)

	studentKeys := make([]curve.KeyPair, types.NumStudents)
	for i := range studentKeys {
		kp, err := curve.GenerateKeyPair()
		require.NoError(t, err)
		studentKeys[i] = kp
		in.StudentPubkeys[i] = curve.ToPoint(kp.Pk)
	}
	collegeKeys := make([]curve.KeyPair, types.NumColleges)
	for i := range collegeKeys {
		kp, err := curve.GenerateKeyPair()
		require.NoError(t, err)
		collegeKeys[i] = kp
		in.CollegePubkeys[i] = curve.ToPoint(kp.Pk)
	}
	return in, studentKeys, collegeKeys
}

func TestSolveIsDeterministicForFixedInput(t *testing.T) {
	in, _, _ := buildInputWithKeys(t)

	r1 := Solve(in)
	r2 := Solve(in)

	require.Equal(t, r1.StudentMatches, r2.StudentMatches)
	require.Equal(t, r1.CollegeMatches, r2.CollegeMatches)
	require.Equal(t, r1.MerkleRoot, r2.MerkleRoot)
	require.Equal(t, r1.InputCommitment, r2.InputCommitment)
	require.Equal(t, r1.Ciphertexts, r2.Ciphertexts)
}

func TestSolveProducesConsistentMatchViews(t *testing.T) {
	in, _, _ := buildInputWithKeys(t)
	result := Solve(in)

	for s, c := range result.StudentMatches {
		if c == types.Unmatched {
			continue
		}
		found := false
		for _, occ := range result.CollegeMatches[c] {
			if occ == s {
				found = true
			}
		}
		require.True(t, found)
	}
}

func TestSolveRespectsCapacities(t *testing.T) {
	in, _, _ := buildInputWithKeys(t)
	result := Solve(in)

	for c, seats := range result.CollegeMatches {
		filled := 0
		for _, s := range seats {
			if s != types.Unmatched {
				filled++
			}
		}
		require.LessOrEqual(t, filled, in.CollegeCapacities[c])
	}
}

func TestStudentClaimMatchesSolverOutput(t *testing.T) {
	in, studentKeys, collegeKeys := buildInputWithKeys(t)
	result := Solve(in)

	for s := 0; s < types.NumStudents; s++ {
		claimed, err := ClaimMatch(studentKeys[s].Sk.BigInt(new(big.Int)), result.Ciphertexts[s])
		require.NoError(t, err)
		require.Equal(t, result.StudentMatches[s], claimed)
	}

	for c := 0; c < types.NumColleges; c++ {
		for slot := 0; slot < types.MaxCapacity; slot++ {
			idx := types.NumStudents + c*types.MaxCapacity + slot
			claimed, err := ClaimMatch(collegeKeys[c].Sk.BigInt(new(big.Int)), result.Ciphertexts[idx])
			require.NoError(t, err)
			require.Equal(t, result.CollegeMatches[c][slot], claimed)
		}
	}
}

func TestWrongKeyDoesNotRecoverSameAssignment(t *testing.T) {
	in, _, _ := buildInputWithKeys(t)
	result := Solve(in)

	other, err := curve.GenerateKeyPair()
	require.NoError(t, err)

	// Decryption with an unrelated key either fails the DL search or
	// recovers a scalar no one should rely on; it must never silently
	// equal the real assignment.
	claimed, err := ClaimMatch(other.Sk.BigInt(new(big.Int)), result.Ciphertexts[0])
	if err == nil {
		require.NotEqual(t, result.StudentMatches[0], claimed)
	}
}

func TestGenerateAndVerifyPathRoundTrip(t *testing.T) {
	in, _, _ := buildInputWithKeys(t)
	result := Solve(in)

	for i := range result.Records {
		pr := GeneratePath(result.Records, i)
		require.True(t, VerifyPath(result.MerkleRoot, pr.Leaf, i, pr.Path))
	}
}

func TestVerifyPathRejectsForeignRoot(t *testing.T) {
	inA, _, _ := buildInputWithKeys(t)
	resultA := Solve(inA)

	inB, _, _ := buildInputWithKeys(t)
	inB.NonceSeed = big.NewInt(1000)
	resultB := Solve(inB)

	pr := GeneratePath(resultA.Records, 0)
	require.False(t, VerifyPath(resultB.MerkleRoot, pr.Leaf, 0, pr.Path))
}

func TestVerifyInputCommitmentAcceptsTheValueSolveProduced(t *testing.T) {
	in, _, _ := buildInputWithKeys(t)
	result := Solve(in)
	require.NoError(t, VerifyInputCommitment(in, result.InputCommitment))
}

func TestVerifyInputCommitmentRejectsAMismatch(t *testing.T) {
	in, _, _ := buildInputWithKeys(t)
	result := Solve(in)

	tampered := new(big.Int).Add(result.InputCommitment, big.NewInt(1))
	err := VerifyInputCommitment(in, tampered)
	require.ErrorIs(t, err, types.ErrCommitmentMismatch)
}

func TestSolveRejectsAnOverCapacityCollegeAssignment(t *testing.T) {
	in, _, _ := buildInputWithKeys(t)

	require.Panics(t, func() {
		studentMatches := types.StudentMatches{0, 0, 0, 0, types.Unmatched}
		collegeMatches := types.CollegeMatches{}
		collegeMatches[0] = types.CollegeAssignment{0, 1, 2}
		assertSolverInvariants(in, studentMatches, collegeMatches)
	})
}

func TestSolveRejectsAnOutOfRangeCollegeIndex(t *testing.T) {
	in, _, _ := buildInputWithKeys(t)

	require.Panics(t, func() {
		studentMatches := types.StudentMatches{types.NumColleges, types.Unmatched, types.Unmatched, types.Unmatched, types.Unmatched}
		var collegeMatches types.CollegeMatches
		for i := range collegeMatches {
			for j := range collegeMatches[i] {
				collegeMatches[i][j] = types.Unmatched
			}
		}
		assertSolverInvariants(in, studentMatches, collegeMatches)
	})
}
