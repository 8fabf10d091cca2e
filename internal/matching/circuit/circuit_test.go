package circuit

import (
	"math/big"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"matchcore/internal/matching/curve"
	"matchcore/internal/matching/session"
	"matchcore/internal/matching/types"
)

func buildTestInstance(t *testing.T) (types.Input, session.Result) {
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

	for i := range in.StudentPubkeys {
		kp, err := curve.GenerateKeyPair()
		require.NoError(t, err)
		in.StudentPubkeys[i] = curve.ToPoint(kp.Pk)
	}
	for i := range in.CollegePubkeys {
		kp, err := curve.GenerateKeyPair()
		require.NoError(t, err)
		in.CollegePubkeys[i] = curve.ToPoint(kp.Pk)
	}

	result := session.Solve(in)
	return in, result
}

func buildSolveAssignment(in types.Input, result session.Result) *MatchingCircuit {
	c := &MatchingCircuit{
		Operation:       OpSolve,
		InputCommitment: result.InputCommitment,
		MerkleRoot:      result.MerkleRoot,
		NonceSeed:       in.NonceSeed,
	}
	for i := 0; i < types.TotalCap; i++ {
		c.Ciphertexts[i] = AssignCiphertext(result.Ciphertexts[i])
	}
	for s := 0; s < types.NumStudents; s++ {
		c.StudentPubkeys[s] = AssignPoint(in.StudentPubkeys[s])
		for j := 0; j < types.MaxPrefs; j++ {
			c.StudentPrefs[s][j] = in.StudentPrefs[s][j]
		}
		c.StudentMatches[s] = result.StudentMatches[s]
	}
	for cID := 0; cID < types.NumColleges; cID++ {
		c.CollegePubkeys[cID] = AssignPoint(in.CollegePubkeys[cID])
		for j := 0; j < types.NumStudents; j++ {
			c.CollegePrefs[cID][j] = in.CollegePrefs[cID][j]
		}
		c.CollegeCapacities[cID] = in.CollegeCapacities[cID]
		for slot := 0; slot < types.MaxCapacity; slot++ {
			c.CollegeMatches[cID][slot] = result.CollegeMatches[cID][slot]
		}
	}
	return c
}

func TestCompileProduceConstraintSystem(t *testing.T) {
	ccs, err := Compile()
	require.NoError(t, err)
	require.NotNil(t, ccs)
	require.Greater(t, ccs.GetNbConstraints(), 0)
}

func TestProveVerifyRoundTripForSolvedRound(t *testing.T) {
	ccs, err := Compile()
	require.NoError(t, err)

	pkPath := "test_matching_pk.bin"
	vkPath := "test_matching_vk.bin"
	defer os.Remove(pkPath)
	defer os.Remove(vkPath)

	pk, vk, err := SetupOrLoadKeys(ccs, pkPath, vkPath)
	require.NoError(t, err)

	in, result := buildTestInstance(t)
	assignment := buildSolveAssignment(in, result)

	proof, err := Prove(ccs, pk, assignment)
	require.NoError(t, err)

	require.NoError(t, Verify(vk, assignment, proof))
}

// buildGeneratePathAssignment fills only what definePathGeneration reads:
// StudentMatches/NonceSeed (to rederive the leaf set) plus the claimed
// PathIndex/PathLeaf/Path/MerkleRoot outputs from session.GeneratePath.
func buildGeneratePathAssignment(in types.Input, result session.Result, index int, pr session.PathResult) *MatchingCircuit {
	c := &MatchingCircuit{
		Operation:       OpGeneratePath,
		InputCommitment: result.InputCommitment,
		MerkleRoot:      result.MerkleRoot,
		NonceSeed:       in.NonceSeed,
		PathIndex:       index,
		PathLeaf:        pr.Leaf,
	}
	for lvl := 0; lvl < types.MerkleHeight; lvl++ {
		c.Path[lvl] = pr.Path[lvl]
	}
	for s := 0; s < types.NumStudents; s++ {
		c.StudentMatches[s] = result.StudentMatches[s]
	}
	return c
}

func TestProveVerifyRoundTripForGeneratedPath(t *testing.T) {
	ccs, err := Compile()
	require.NoError(t, err)

	pkPath := "test_matching_genpath_pk.bin"
	vkPath := "test_matching_genpath_vk.bin"
	defer os.Remove(pkPath)
	defer os.Remove(vkPath)

	pk, vk, err := SetupOrLoadKeys(ccs, pkPath, vkPath)
	require.NoError(t, err)

	in, result := buildTestInstance(t)
	pr := session.GeneratePath(result.Records, 2)
	assignment := buildGeneratePathAssignment(in, result, 2, pr)

	proof, err := Prove(ccs, pk, assignment)
	require.NoError(t, err)
	require.NoError(t, Verify(vk, assignment, proof))
}

func TestProveRejectsAGeneratedPathForTheWrongIndex(t *testing.T) {
	ccs, err := Compile()
	require.NoError(t, err)

	pkPath := "test_matching_genpath_bad_pk.bin"
	vkPath := "test_matching_genpath_bad_vk.bin"
	defer os.Remove(pkPath)
	defer os.Remove(vkPath)

	pk, _, err := SetupOrLoadKeys(ccs, pkPath, vkPath)
	require.NoError(t, err)

	in, result := buildTestInstance(t)
	pr := session.GeneratePath(result.Records, 2)
	// Claim pr's leaf/path (derived for index 2) under index 3 instead.
	assignment := buildGeneratePathAssignment(in, result, 3, pr)

	_, err = Prove(ccs, pk, assignment)
	require.Error(t, err)
}

func TestVerifyRejectsTamperedCommitment(t *testing.T) {
	ccs, err := Compile()
	require.NoError(t, err)

	pkPath := "test_matching_tamper_pk.bin"
	vkPath := "test_matching_tamper_vk.bin"
	defer os.Remove(pkPath)
	defer os.Remove(vkPath)

	pk, vk, err := SetupOrLoadKeys(ccs, pkPath, vkPath)
	require.NoError(t, err)

	in, result := buildTestInstance(t)
	assignment := buildSolveAssignment(in, result)

	proof, err := Prove(ccs, pk, assignment)
	require.NoError(t, err)

	tampered := buildSolveAssignment(in, result)
	tampered.InputCommitment = new(big.Int).Add(result.InputCommitment, big.NewInt(1))

	require.Error(t, Verify(vk, tampered, proof))
}
