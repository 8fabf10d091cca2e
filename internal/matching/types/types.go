// Package types holds the data model shared by every stage of a matching
// round: participants, preference tables, capacities, public keys, match
// records, ciphertexts and the sentinel used for "no match".
package types

import "math/big"

// Unmatched is the sentinel index denoting an unused slot or a non-match.
// It never equals a valid participant index.
const Unmatched = 999

// Size constants fixed at compile time for one deployment of the engine.
// A real deployment picks one set of sizes and recompiles; the engine
// never resizes at runtime (spec Non-goals: no dynamic participant
// counts).
const (
	NumStudents  = 5
	NumColleges  = 3
	MaxPrefs     = 5
	MaxCapacity  = 3
	MerkleHeight = 3
	BitsDL       = 16
)

// TotalCap is the number of ciphertext slots emitted per round:
// one per student plus MaxCapacity per college.
const TotalCap = NumStudents + NumColleges*MaxCapacity

// Point is an affine curve point. IsInfinity marks the identity element;
// when set, X and Y are not meaningful and must be treated as zero.
type Point struct {
	X          *big.Int
	Y          *big.Int
	IsInfinity bool
}

// InfinityPoint returns the point at infinity (identity element).
func InfinityPoint() Point {
	return Point{X: big.NewInt(0), Y: big.NewInt(0), IsInfinity: true}
}

// StudentPrefs is student s's ordered preference list over colleges,
// most preferred first, padded with Unmatched.
type StudentPrefs [NumStudents][MaxPrefs]int

// CollegePrefs is college c's ordered preference list over students,
// most preferred first, padded with Unmatched.
type CollegePrefs [NumColleges][NumStudents]int

// Capacities holds each college's seat count, in [0, MaxCapacity].
type Capacities [NumColleges]int

// Input is the full public/private input record for one matching round,
// field order matching spec §6. The input commitment is computed over the
// first five fields in this order, each pubkey entering as its MiMC hash;
// the remaining fields are not committed.
type Input struct {
	StudentPrefs      StudentPrefs
	CollegePrefs      CollegePrefs
	CollegeCapacities Capacities
	StudentPubkeys    [NumStudents]Point
	CollegePubkeys    [NumColleges]Point
	ActualStudentList int
	ActualUniList     int
	NonceSeed         *big.Int
	PermutationSeed   *big.Int
}

// MatchRecord is one (student, college) edge together with its nonce and
// Merkle leaf commitment.
type MatchRecord struct {
	StudentID  int
	CollegeID  int
	Nonce      *big.Int
	Commitment *big.Int
}

// Ciphertext is an exponential-ElGamal pair addressed to one recipient.
type Ciphertext struct {
	C1 Point
	C2 Point
}

// StudentMatches maps each student to its assigned college, or Unmatched.
type StudentMatches [NumStudents]int

// CollegeAssignment is the fixed-capacity bag of students assigned to one
// college, Unmatched-padded.
type CollegeAssignment [MaxCapacity]int

// CollegeMatches maps each college to its assigned students.
type CollegeMatches [NumColleges]CollegeAssignment
