package session

import (
	"math/big"

	"matchcore/internal/matching/commit"
	"matchcore/internal/matching/curve"
	"matchcore/internal/matching/elgamal"
	"matchcore/internal/matching/permute"
	"matchcore/internal/matching/solve"
	"matchcore/internal/matching/types"
)

// KidneyResult is the public output of a Variant B (kidney exchange)
// solve operation, the counterpart of Result for the donor/recipient
// pair population.
type KidneyResult struct {
	Ciphertexts     [types.MaxPairs]types.Ciphertext
	MerkleRoot      *big.Int
	InputCommitment *big.Int
	Matches         [types.MaxPairs]int
	Records         []types.MatchRecord
}

// SolveKidney runs the same permute -> solve -> encrypt -> commit
// envelope as Solve, over a kidney-exchange instance instead of a
// student/college one (spec.md §4.4 Variant B). pubkeys holds one
// ElGamal public key per registered pair, indexed the same way as
// input.Pairs.
func SolveKidney(input types.KidneyInput, pubkeys [types.MaxPairs]types.Point, nonceSeed, permutationSeed *big.Int) KidneyResult {
	// C3: permute pair identities so the solver never observes real ones.
	pi := permute.Generate(permutationSeed, types.MaxPairs)

	var permuted types.KidneyInput
	permuted.NumPairs = input.NumPairs
	permuted.NumEdges = input.NumEdges
	for i := 0; i < input.NumPairs; i++ {
		permuted.Pairs[pi.Apply(i)] = input.Pairs[i]
	}
	for e := 0; e < input.NumEdges; e++ {
		permuted.Edges[e] = types.Edge{
			From: pi.Apply(input.Edges[e].From),
			To:   pi.Apply(input.Edges[e].To),
		}
	}

	// C4: cycle-cover over the permuted graph.
	cycles := solve.SolveKidneyExchange(permuted)

	// Reverse the permutation: matches[p] is the real pair ID p is
	// exchanging with, recorded once per cycle edge (From -> To), or
	// Unmatched if p belongs to no selected cycle.
	inv := pi.Invert()
	var matches [types.MaxPairs]int
	for i := range matches {
		matches[i] = types.Unmatched
	}
	for _, c := range cycles {
		for i := 0; i < c.Length; i++ {
			e := permuted.Edges[c.EdgeIdx[i]]
			matches[inv.Apply(e.From)] = inv.Apply(e.To)
		}
	}

	// C5(a): input commitment binds every public output to this input set.
	inputCommitment := commit.KidneyInputCommitment(input, pubkeys)

	// C5(b): one ciphertext per pair slot, Unmatched-padded past NumPairs.
	var ciphertexts [types.MaxPairs]types.Ciphertext
	for p := 0; p < types.MaxPairs; p++ {
		plaintext := int64(types.Unmatched + 1)
		if p < input.NumPairs && matches[p] != types.Unmatched {
			plaintext = int64(matches[p] + 1)
		}
		ct, err := elgamal.EncryptDeterministic(curve.FromPoint(pubkeys[p]), plaintext, p, p, nonceSeed)
		if err != nil {
			panic(err) // plaintext range is guaranteed by construction
		}
		ciphertexts[p] = elgamal.ToWire(ct)
	}

	// C5(c): one match record + leaf per registered pair.
	records := make([]types.MatchRecord, 0, input.NumPairs)
	leaves := make([]*big.Int, input.NumPairs)
	for p := 0; p < input.NumPairs; p++ {
		rec := commit.BuildMatchRecord(p, matches[p], nonceSeed)
		records = append(records, rec)
		leaves[p] = rec.Commitment
	}
	tree := commit.NewTree(leaves)

	return KidneyResult{
		Ciphertexts:     ciphertexts,
		MerkleRoot:      tree.Root(),
		InputCommitment: inputCommitment,
		Matches:         matches,
		Records:         records,
	}
}
