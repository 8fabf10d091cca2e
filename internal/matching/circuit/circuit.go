// Package circuit defines the gnark circuit realizing the
// operation-multiplexed entry point of spec.md §6 at a fixed small
// instance size (NumStudents=5, NumColleges=3, MaxPrefs=5,
// MerkleHeight=3 — the E1/E5 regression-vector sizes).
//
// WARNING: mirroring the teacher's exchange/circuit.go, this circuit
// does NOT reprove the deferred-acceptance computation itself — that
// would require fully unrolling the solver's bounded pass loop as
// in-circuit control flow, which the pack's examples never attempt for
// anything beyond simple per-slot decrypt/PRF/commitment checks. It
// proves cryptographic consistency of a claimed outcome: the witnessed
// preferences, capacities and pubkeys are the ones committed to by
// InputCommitment, and the witnessed matches are encrypted into the
// public Ciphertexts and recorded in the Merkle tree rooted at
// MerkleRoot. The solver itself is proven correct by session.Solve's
// own test suite, not by this circuit.
package circuit

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/algebra/native/sw_bls12377"
	"github.com/consensys/gnark/std/hash/mimc"

	"matchcore/internal/matching/types"
)

// Operation values, matching session.Operation.
const (
	OpSolve        = 0
	OpVerifyPath   = 1
	OpGeneratePath = 2
)

// BLS12-377 generator coordinates, the same constants the teacher's
// crypto.go derives from bls12377.Generators() at runtime — hardcoded
// here since a circuit definition has no access to gnark-crypto's group
// setup, only to frontend.Variable arithmetic.
const (
	genXStr = "81937999373150964239938255573465948239988671502647976594219695644855304257327692006745978603320413799295628339695"
	genYStr = "241266749859715473739788878240585681733927191168601896383759122102112907357779751001206799952863815012735208165030"
)

func generator() sw_bls12377.G1Affine {
	return sw_bls12377.G1Affine{X: genXStr, Y: genYStr}
}

// CiphertextVar is the in-circuit twin of types.Ciphertext.
type CiphertextVar struct {
	C1 sw_bls12377.G1Affine
	C2 sw_bls12377.G1Affine
}

// MatchingCircuit is the universal circuit for one matching round. Which
// assertions actually constrain the proof is selected by Operation via
// api.Select rather than by branching, since gnark circuits have no
// native control flow over circuit variables.
type MatchingCircuit struct {
	// Public inputs, shared across operations.
	Operation       frontend.Variable `gnark:",public"`
	InputCommitment frontend.Variable `gnark:",public"`
	MerkleRoot      frontend.Variable `gnark:",public"`

	// Public inputs for OpSolve.
	Ciphertexts    [types.TotalCap]CiphertextVar           `gnark:",public"`
	StudentPubkeys [types.NumStudents]sw_bls12377.G1Affine `gnark:",public"`
	CollegePubkeys [types.NumColleges]sw_bls12377.G1Affine `gnark:",public"`

	// Public inputs shared by OpVerifyPath and OpGeneratePath: for
	// OpVerifyPath, PathLeaf/Path are witnessed claims checked against
	// MerkleRoot; for OpGeneratePath they are the claimed *outputs* and
	// the circuit instead asserts they were correctly derived from the
	// OpSolve witness (StudentMatches/NonceSeed) at PathIndex.
	PathLeaf  frontend.Variable                     `gnark:",public"`
	PathIndex frontend.Variable                     `gnark:",public"`
	Path      [types.MerkleHeight]frontend.Variable `gnark:",public"`

	// Private witness for OpSolve.
	StudentPrefs      [types.NumStudents][types.MaxPrefs]frontend.Variable
	CollegePrefs      [types.NumColleges][types.NumStudents]frontend.Variable
	CollegeCapacities [types.NumColleges]frontend.Variable
	NonceSeed         frontend.Variable
	StudentMatches    [types.NumStudents]frontend.Variable
	CollegeMatches    [types.NumColleges][types.MaxCapacity]frontend.Variable
}

// Define implements frontend.Circuit.
func (c *MatchingCircuit) Define(api frontend.API) error {
	isSolve := api.IsZero(api.Sub(c.Operation, OpSolve))
	isVerifyPath := api.IsZero(api.Sub(c.Operation, OpVerifyPath))
	isGeneratePath := api.IsZero(api.Sub(c.Operation, OpGeneratePath))

	c.defineSolve(api, isSolve)
	c.definePathCheck(api, isVerifyPath)
	c.definePathGeneration(api, isGeneratePath)
	return nil
}

// assertWhen enforces ok == 1 only when cond == 1; it is trivially
// satisfied (by selecting the constant 1) when cond == 0. This is the
// standard gnark idiom for optional constraints under a circuit-level
// condition that cannot be expressed as a Go if statement.
func assertWhen(api frontend.API, cond, ok frontend.Variable) {
	api.AssertIsEqual(api.Select(cond, ok, 1), 1)
}

func (c *MatchingCircuit) defineSolve(api frontend.API, active frontend.Variable) {
	hasher, _ := mimc.NewMiMC(api)
	for i := 0; i < types.NumStudents; i++ {
		for j := 0; j < types.MaxPrefs; j++ {
			hasher.Write(c.StudentPrefs[i][j])
		}
	}
	for i := 0; i < types.NumColleges; i++ {
		for j := 0; j < types.NumStudents; j++ {
			hasher.Write(c.CollegePrefs[i][j])
		}
	}
	for i := 0; i < types.NumColleges; i++ {
		hasher.Write(c.CollegeCapacities[i])
	}
	// Each pubkey enters the commitment as H(x, y), or 0 for the point at
	// infinity, the same per-key hash commit.InputCommitment uses.
	pubkeyHash := func(p sw_bls12377.G1Affine) frontend.Variable {
		h, _ := mimc.NewMiMC(api)
		h.Write(p.X)
		h.Write(p.Y)
		isInf := api.And(api.IsZero(p.X), api.IsZero(p.Y))
		return api.Select(isInf, 0, h.Sum())
	}
	for i := 0; i < types.NumStudents; i++ {
		hasher.Write(pubkeyHash(c.StudentPubkeys[i]))
	}
	for i := 0; i < types.NumColleges; i++ {
		hasher.Write(pubkeyHash(c.CollegePubkeys[i]))
	}
	computedCommitment := hasher.Sum()
	assertWhen(api, active, api.IsZero(api.Sub(computedCommitment, c.InputCommitment)))

	// Per-slot ciphertext consistency, canonical TotalCap order: N_S
	// student slots, then MaxCapacity slots per college (spec.md
	// §4.5(b), mirroring session.Solve's assembly order).
	leaves := c.studentLeaves(api)
	idx := 0
	for s := 0; s < types.NumStudents; s++ {
		plaintext := api.Add(c.StudentMatches[s], 1)
		assertCiphertext(api, active, idx, plaintext, c.StudentPubkeys[s], s, c.NonceSeed, c.Ciphertexts[idx])
		idx++
	}
	for cID := 0; cID < types.NumColleges; cID++ {
		for slot := 0; slot < types.MaxCapacity; slot++ {
			plaintext := api.Add(c.CollegeMatches[cID][slot], 1)
			assertCiphertext(api, active, idx, plaintext, c.CollegePubkeys[cID], cID, c.NonceSeed, c.Ciphertexts[idx])
			idx++
		}
	}

	root := merkleRoot(api, leaves)
	assertWhen(api, active, api.IsZero(api.Sub(root, c.MerkleRoot)))
}

// assertCiphertext recomputes r = H(msg, pk.x, pk.y, recipientID, i,
// nonceSeed) and checks C1 == r*G, C2 == r*pk + msg*G, mirroring
// elgamal.deriveRandomness/Encrypt, guarded by active.
func assertCiphertext(api frontend.API, active frontend.Variable, i int, msg frontend.Variable, pk sw_bls12377.G1Affine, recipientID int, nonceSeed frontend.Variable, ct CiphertextVar) {
	hasher, _ := mimc.NewMiMC(api)
	hasher.Write(msg)
	hasher.Write(pk.X)
	hasher.Write(pk.Y)
	hasher.Write(recipientID)
	hasher.Write(i)
	hasher.Write(nonceSeed)
	r := hasher.Sum()

	g := generator()
	c1 := new(sw_bls12377.G1Affine)
	c1.ScalarMul(api, g, r)

	rPk := new(sw_bls12377.G1Affine)
	rPk.ScalarMul(api, pk, r)
	msgG := new(sw_bls12377.G1Affine)
	msgG.ScalarMul(api, g, msg)
	c2 := rPk.AddUnified(api, *msgG)

	assertWhen(api, active, api.IsZero(api.Sub(c1.X, ct.C1.X)))
	assertWhen(api, active, api.IsZero(api.Sub(c1.Y, ct.C1.Y)))
	assertWhen(api, active, api.IsZero(api.Sub(c2.X, ct.C2.X)))
	assertWhen(api, active, api.IsZero(api.Sub(c2.Y, ct.C2.Y)))
}

// merkleRoot folds a fixed-size leaf slice up to its root using the same
// two-to-one compression as commit.Tree, zero-padding up to NumLeaves.
func merkleRoot(api frontend.API, leaves []frontend.Variable) frontend.Variable {
	numLeaves := 1 << types.MerkleHeight
	level := make([]frontend.Variable, numLeaves)
	for i := range level {
		if i < len(leaves) {
			level[i] = leaves[i]
		} else {
			level[i] = 0
		}
	}
	for len(level) > 1 {
		next := make([]frontend.Variable, len(level)/2)
		for i := range next {
			hasher, _ := mimc.NewMiMC(api)
			hasher.Write(level[2*i])
			hasher.Write(level[2*i+1])
			next[i] = hasher.Sum()
		}
		level = next
	}
	return level[0]
}

// definePathCheck recomputes the Merkle root from PathLeaf/PathIndex/Path
// and compares it to MerkleRoot, guarded by active (OpVerifyPath).
func (c *MatchingCircuit) definePathCheck(api frontend.API, active frontend.Variable) {
	cur := c.PathLeaf
	idxBits := api.ToBinary(c.PathIndex, types.MerkleHeight)
	for lvl := 0; lvl < types.MerkleHeight; lvl++ {
		sibling := c.Path[lvl]
		left := api.Select(idxBits[lvl], sibling, cur)
		right := api.Select(idxBits[lvl], cur, sibling)
		hasher, _ := mimc.NewMiMC(api)
		hasher.Write(left)
		hasher.Write(right)
		cur = hasher.Sum()
	}
	assertWhen(api, active, api.IsZero(api.Sub(cur, c.MerkleRoot)))
}

// studentLeaves recomputes the NumStudents Merkle leaves from the
// StudentMatches/NonceSeed witness, the same nonce-then-leaf MiMC chain
// defineSolve folds into its own root check. Factored out so
// definePathGeneration can walk the same tree without re-deriving it.
func (c *MatchingCircuit) studentLeaves(api frontend.API) []frontend.Variable {
	leaves := make([]frontend.Variable, types.NumStudents)
	for s := 0; s < types.NumStudents; s++ {
		nonceHasher, _ := mimc.NewMiMC(api)
		nonceHasher.Write(s)
		nonceHasher.Write(c.StudentMatches[s])
		nonceHasher.Write(c.NonceSeed)
		nonce := nonceHasher.Sum()

		leafHasher, _ := mimc.NewMiMC(api)
		leafHasher.Write(s)
		leafHasher.Write(c.StudentMatches[s])
		leafHasher.Write(nonce)
		leaves[s] = leafHasher.Sum()
	}
	return leaves
}

// muxSelect returns arr[idx] for a circuit-variable idx, via a linear scan
// of equality selects — cheap at the tree's small fan-out (NumLeaves<=8).
func muxSelect(api frontend.API, arr []frontend.Variable, idx frontend.Variable) frontend.Variable {
	var result frontend.Variable = 0
	for i, v := range arr {
		eq := api.IsZero(api.Sub(idx, i))
		result = api.Select(eq, v, result)
	}
	return result
}

// levelPosition folds idxBits[lvl:] into the node's position within the
// level-lvl array (little-endian, matching api.ToBinary's bit order).
func levelPosition(api frontend.API, idxBits []frontend.Variable, lvl int) frontend.Variable {
	var pos frontend.Variable = 0
	for k := lvl; k < len(idxBits); k++ {
		pos = api.Add(pos, api.Mul(idxBits[k], 1<<uint(k-lvl)))
	}
	return pos
}

// definePathGeneration derives the authentication path for PathIndex from
// the witnessed StudentMatches/NonceSeed (the same leaves defineSolve
// commits to MerkleRoot) and asserts it equals the claimed PathLeaf/Path
// outputs, guarded by active (OpGeneratePath). This is definePathCheck run
// in reverse: instead of taking leaf+siblings as witness and folding them
// up to a root, it folds the full committed leaf set up to the root while
// recording the sibling peeled off at each level for PathIndex, the same
// leaves/siblings session.GeneratePath produces off-circuit from a Tree.
func (c *MatchingCircuit) definePathGeneration(api frontend.API, active frontend.Variable) {
	numLeaves := 1 << types.MerkleHeight
	leaves := c.studentLeaves(api)
	level := make([]frontend.Variable, numLeaves)
	for i := range level {
		if i < len(leaves) {
			level[i] = leaves[i]
		} else {
			level[i] = 0
		}
	}

	idxBits := api.ToBinary(c.PathIndex, types.MerkleHeight)

	selected := muxSelect(api, level, c.PathIndex)
	assertWhen(api, active, api.IsZero(api.Sub(selected, c.PathLeaf)))

	for lvl := 0; lvl < types.MerkleHeight; lvl++ {
		pos := levelPosition(api, idxBits, lvl)
		siblingPos := api.Add(pos, api.Sub(1, api.Mul(2, idxBits[lvl])))
		sibling := muxSelect(api, level, siblingPos)
		assertWhen(api, active, api.IsZero(api.Sub(sibling, c.Path[lvl])))

		next := make([]frontend.Variable, len(level)/2)
		for i := range next {
			hasher, _ := mimc.NewMiMC(api)
			hasher.Write(level[2*i])
			hasher.Write(level[2*i+1])
			next[i] = hasher.Sum()
		}
		level = next
	}
	assertWhen(api, active, api.IsZero(api.Sub(level[0], c.MerkleRoot)))
}
