// Package commit implements C5: input commitment hashing, per-match
// record/leaf construction, and the Merkle tree over match leaves.
//
// The algebraic hash used throughout (input commitment, match leaf
// commitments, Merkle two-to-one compression) is MiMC, native
// (github.com/consensys/gnark-crypto/ecc/bw6-761/fr/mimc) off-circuit and
// gnark's std/hash/mimc gadget in-circuit — the same hash family the
// teacher protocol uses for every commitment and PRF. spec.md's glossary
// mentions Poseidon/Pedersen generically; we follow the teacher's actual
// choice rather than introducing a hash the retrieval pack never uses.
package commit

import (
	"math/big"

	mimcNative "github.com/consensys/gnark-crypto/ecc/bw6-761/fr/mimc"

	"matchcore/internal/matching/types"
)

// hashFields feeds each big.Int into a fresh MiMC hasher in order, as one
// fixed-width big-endian block per value (so 0 is hashed as a field
// element, as the in-circuit hasher does), and returns the resulting
// digest as a big.Int.
func hashFields(fields ...*big.Int) *big.Int {
	h := mimcNative.NewMiMC()
	for _, f := range fields {
		buf := make([]byte, h.BlockSize())
		f.FillBytes(buf)
		h.Write(buf)
	}
	return new(big.Int).SetBytes(h.Sum(nil))
}

func pointHash(p types.Point) *big.Int {
	if p.IsInfinity {
		return big.NewInt(0)
	}
	return hashFields(p.X, p.Y)
}

// InputCommitment computes H_input = MiMC(flatten(student_prefs,
// college_prefs, capacities, pubkey_hashes)) per spec.md §4.5(a), with
// the canonical order: all student_prefs row-major, then all
// college_prefs row-major, then capacities, then pubkey-hash arrays
// (students first, then colleges).
func InputCommitment(in types.Input) *big.Int {
	var flat []*big.Int
	for i := 0; i < types.NumStudents; i++ {
		for j := 0; j < types.MaxPrefs; j++ {
			flat = append(flat, big.NewInt(int64(in.StudentPrefs[i][j])))
		}
	}
	for i := 0; i < types.NumColleges; i++ {
		for j := 0; j < types.NumStudents; j++ {
			flat = append(flat, big.NewInt(int64(in.CollegePrefs[i][j])))
		}
	}
	for i := 0; i < types.NumColleges; i++ {
		flat = append(flat, big.NewInt(int64(in.CollegeCapacities[i])))
	}
	for i := 0; i < types.NumStudents; i++ {
		flat = append(flat, pointHash(in.StudentPubkeys[i]))
	}
	for i := 0; i < types.NumColleges; i++ {
		flat = append(flat, pointHash(in.CollegePubkeys[i]))
	}
	return hashFields(flat...)
}

// KidneyInputCommitment is the Variant B counterpart of InputCommitment:
// it binds every pair, every compatibility edge and every pair's pubkey,
// in canonical order (pairs, then edges, then pubkeys), the same
// flatten-then-MiMC construction spec.md §4.5(a) describes for Variant A.
func KidneyInputCommitment(in types.KidneyInput, pubkeys [types.MaxPairs]types.Point) *big.Int {
	var flat []*big.Int
	flat = append(flat, big.NewInt(int64(in.NumPairs)), big.NewInt(int64(in.NumEdges)))
	for i := 0; i < types.MaxPairs; i++ {
		flat = append(flat, big.NewInt(int64(in.Pairs[i].ID)), big.NewInt(int64(in.Pairs[i].HospitalID)))
	}
	for i := 0; i < types.MaxEdges; i++ {
		flat = append(flat, big.NewInt(int64(in.Edges[i].From)), big.NewInt(int64(in.Edges[i].To)))
	}
	for i := 0; i < types.MaxPairs; i++ {
		flat = append(flat, pointHash(pubkeys[i]))
	}
	return hashFields(flat...)
}

// MatchNonce derives the per-match nonce deterministically from
// (s_id, c_id, nonce_seed).
func MatchNonce(studentID, collegeID int, nonceSeed *big.Int) *big.Int {
	return hashFields(big.NewInt(int64(studentID)), big.NewInt(int64(collegeID)), nonceSeed)
}

// Leaf computes the Merkle leaf commitment H(recipient_id, match_id, nonce)
// for a match record.
func Leaf(recipientID, matchID int, nonce *big.Int) *big.Int {
	return hashFields(big.NewInt(int64(recipientID)), big.NewInt(int64(matchID)), nonce)
}

// BuildMatchRecord constructs the (s_id, c_id, nonce, commitment) tuple
// for one student/college edge, with commitment keyed by the student's
// own index as recipient_id (spec.md §4.5(c): "student s -> leaf s").
func BuildMatchRecord(studentID, collegeID int, nonceSeed *big.Int) types.MatchRecord {
	nonce := MatchNonce(studentID, collegeID, nonceSeed)
	return types.MatchRecord{
		StudentID:  studentID,
		CollegeID:  collegeID,
		Nonce:      nonce,
		Commitment: Leaf(studentID, collegeID, nonce),
	}
}
