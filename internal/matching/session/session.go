// Package session threads C1-C5 through one matching round as a single
// value, per design notes §9 ("global mutable state -> explicit fields
// of a MatchingSession value threaded through operations") — the
// teacher's zerocash package instead keeps a long-lived Participant
// struct across rounds (api.go); here there is deliberately no
// cross-round state, since spec.md §3 rules persistence out of the core
// entirely.
package session

import (
	"fmt"
	"math/big"

	"matchcore/internal/matching/commit"
	"matchcore/internal/matching/curve"
	"matchcore/internal/matching/elgamal"
	"matchcore/internal/matching/permute"
	"matchcore/internal/matching/solve"
	"matchcore/internal/matching/types"
)

// Operation names the three multiplexed entry points (spec.md §6), served
// by Solve, VerifyPath and GeneratePath respectively.
type Operation int

const (
	OpSolve Operation = iota
	OpVerifyPath
	OpGeneratePath
)

// Result is the public output of a solve operation.
type Result struct {
	Ciphertexts     [types.TotalCap]types.Ciphertext
	MerkleRoot      *big.Int
	InputCommitment *big.Int
	StudentMatches  types.StudentMatches
	CollegeMatches  types.CollegeMatches
	Records         []types.MatchRecord
}

// PathResult is the public output of an OpGeneratePath call.
type PathResult struct {
	Path []*big.Int
	Leaf *big.Int
}

// Solve runs the full permute -> solve -> encrypt -> commit pipeline for
// one Variant A (student/college) round. input must already satisfy the
// data-model invariants of spec.md §3.
func Solve(input types.Input) Result {
	// C3: permute.
	piS := permute.Generate(input.PermutationSeed, types.NumStudents)
	piC := permute.Generate(input.PermutationSeed, types.NumColleges)

	permutedPrefsS := permute.ApplyStudentPrefs(input.StudentPrefs, piS, piC)
	permutedPrefsC := permute.ApplyCollegePrefs(input.CollegePrefs, piC, piS)
	permutedCap := permute.ApplyCapacities(input.CollegeCapacities, piC)

	// C4: solve on permuted indices so the solver never observes real
	// identities.
	permutedStudentMatches, permutedCollegeMatches := solve.SolveStudentCollege(
		permutedPrefsS, permutedPrefsC, permutedCap,
		input.ActualStudentList, input.ActualUniList,
	)

	// Reverse the permutation on the solver's output.
	studentMatches := permute.InvertStudentMatches(permutedStudentMatches, piS, piC)
	collegeMatches := permute.InvertCollegeMatches(permutedCollegeMatches, piS, piC)
	assertSolverInvariants(input, studentMatches, collegeMatches)

	// C5(a): input commitment binds every public output to this input set.
	inputCommitment := commit.InputCommitment(input)

	// C5(b): per-match ciphertexts, canonical order: N_S student slots,
	// then per college MaxCapacity slots.
	var ciphertexts [types.TotalCap]types.Ciphertext
	idx := 0
	for s := 0; s < types.NumStudents; s++ {
		plaintext := int64(types.Unmatched + 1)
		if studentMatches[s] != types.Unmatched {
			plaintext = int64(studentMatches[s] + 1)
		}
		ct, err := elgamal.EncryptDeterministic(
			curve.FromPoint(input.StudentPubkeys[s]), plaintext, s, idx, input.NonceSeed,
		)
		if err != nil {
			panic(err) // plaintext range is guaranteed by construction
		}
		ciphertexts[idx] = elgamal.ToWire(ct)
		idx++
	}
	for c := 0; c < types.NumColleges; c++ {
		for slot := 0; slot < types.MaxCapacity; slot++ {
			s := collegeMatches[c][slot]
			plaintext := int64(types.Unmatched + 1)
			if s != types.Unmatched {
				plaintext = int64(s + 1)
			}
			ct, err := elgamal.EncryptDeterministic(
				curve.FromPoint(input.CollegePubkeys[c]), plaintext, c, idx, input.NonceSeed,
			)
			if err != nil {
				panic(err)
			}
			ciphertexts[idx] = elgamal.ToWire(ct)
			idx++
		}
	}

	// C5(c): one match record + leaf per student slot (student s -> leaf s).
	records := make([]types.MatchRecord, 0, types.NumStudents)
	leaves := make([]*big.Int, types.NumStudents)
	for s := 0; s < types.NumStudents; s++ {
		rec := commit.BuildMatchRecord(s, studentMatches[s], input.NonceSeed)
		records = append(records, rec)
		leaves[s] = rec.Commitment
	}
	tree := commit.NewTree(leaves)

	return Result{
		Ciphertexts:     ciphertexts,
		MerkleRoot:      tree.Root(),
		InputCommitment: inputCommitment,
		StudentMatches:  studentMatches,
		CollegeMatches:  collegeMatches,
		Records:         records,
	}
}

// GeneratePath builds the Merkle tree over this round's match records and
// returns the authentication path for leaf index i (OpGeneratePath).
func GeneratePath(records []types.MatchRecord, i int) PathResult {
	leaves := make([]*big.Int, len(records))
	for idx, r := range records {
		leaves[idx] = r.Commitment
	}
	tree := commit.NewTree(leaves)
	return PathResult{Path: tree.Path(i), Leaf: tree.Leaf(i)}
}

// VerifyPath recomputes the root from a claimed leaf, index and
// authentication path (OpVerifyPath).
func VerifyPath(root, leaf *big.Int, index int, path []*big.Int) bool {
	return commit.VerifyPath(root, leaf, index, path)
}

// VerifyInputCommitment recomputes commit.InputCommitment(input) and
// compares it to a previously published value, surfacing any mismatch as
// types.ErrCommitmentMismatch (spec.md §7) instead of silently trusting
// the stored value. Intended for a caller (matchd's main loop, the REST
// handler) that holds both the round's original input and a commitment
// it received or stored earlier, and wants to catch the commitment ever
// drifting from the input it was supposed to bind.
func VerifyInputCommitment(input types.Input, claimed *big.Int) error {
	recomputed := commit.InputCommitment(input)
	if recomputed.Cmp(claimed) != 0 {
		return fmt.Errorf("%w: got %s want %s", types.ErrCommitmentMismatch, claimed.String(), recomputed.String())
	}
	return nil
}

// assertSolverInvariants panics with types.ErrSolverUnsatisfiable if the
// solver returned an assignment that cannot correspond to any stable
// matching: an out-of-range college, or a college holding more occupants
// than its own declared capacity. Deferred acceptance with capacities
// always terminates in a stable matching for well-formed input (Gale and
// Shapley, 1962), so tripping this indicates a bug in the solver or its
// permutation bookkeeping, not a malformed request — the same class of
// "should never happen" invariant the plaintext-range panic below it
// guards in Solve's ciphertext loop.
func assertSolverInvariants(input types.Input, studentMatches types.StudentMatches, collegeMatches types.CollegeMatches) {
	for s, c := range studentMatches {
		if c != types.Unmatched && (c < 0 || c >= types.NumColleges) {
			panic(fmt.Errorf("%w: student %d assigned out-of-range college %d", types.ErrSolverUnsatisfiable, s, c))
		}
	}
	for c, slots := range collegeMatches {
		occupied := 0
		for _, s := range slots {
			if s != types.Unmatched {
				occupied++
			}
		}
		if occupied > input.CollegeCapacities[c] {
			panic(fmt.Errorf("%w: college %d holds %d occupants, over its capacity of %d", types.ErrSolverUnsatisfiable, c, occupied, input.CollegeCapacities[c]))
		}
	}
}
