// Package curve implements C1: scalar field arithmetic and point
// operations on the embedded curve, plus baby-step/giant-step discrete
// log recovery for the small plaintexts ElGamal encrypts.
//
// The embedded curve is BLS12-377, the same curve the teacher protocol
// uses for its Diffie-Hellman key exchange (internal/zerocash/crypto.go)
// — its scalar field matches the base field of the BW6-761 outer circuit
// used for Groth16 proving, which is exactly the "embedded curve"
// construction spec.md's glossary describes.
package curve

import (
	"math/big"

	bls12377 "github.com/consensys/gnark-crypto/ecc/bls12-377"
	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"

	"matchcore/internal/matching/types"
)

// KeyPair is a scalar/point pair on the embedded curve.
type KeyPair struct {
	Sk fr.Element
	Pk bls12377.G1Affine
}

// GenerateKeyPair samples a random scalar and returns it alongside its
// public point sk*G, mirroring the teacher's GenerateDHKeyPair
// (internal/zerocash/crypto.go) adapted from a Diffie-Hellman exchange
// key to a per-participant ElGamal key.
func GenerateKeyPair() (KeyPair, error) {
	var sk fr.Element
	if _, err := sk.SetRandom(); err != nil {
		return KeyPair{}, err
	}
	return KeyPair{Sk: sk, Pk: FixedBaseMul(sk)}, nil
}

// Generator returns the canonical base point G.
func Generator() bls12377.G1Affine {
	jac, _, _, _ := bls12377.Generators()
	var g bls12377.G1Affine
	g.FromJacobian(&jac)
	return g
}

// ScalarFromField reduces an arbitrary big.Int into the scalar field by
// truncation modulo r, matching the source's permissive "from_field".
func ScalarFromField(f *big.Int) fr.Element {
	var s fr.Element
	s.SetBigInt(new(big.Int).Mod(f, fr.Modulus()))
	return s
}

// FixedBaseMul computes k*G.
func FixedBaseMul(k fr.Element) bls12377.G1Affine {
	g := Generator()
	var out bls12377.G1Affine
	out.ScalarMultiplication(&g, k.BigInt(new(big.Int)))
	return out
}

// VarBaseMul computes k*P for an arbitrary point P.
func VarBaseMul(p bls12377.G1Affine, k fr.Element) bls12377.G1Affine {
	var out bls12377.G1Affine
	out.ScalarMultiplication(&p, k.BigInt(new(big.Int)))
	return out
}

// PointAdd returns P+Q.
func PointAdd(p, q bls12377.G1Affine) bls12377.G1Affine {
	var pj, qj, outj bls12377.G1Jac
	pj.FromAffine(&p)
	qj.FromAffine(&q)
	outj.Set(&pj).AddAssign(&qj)
	var out bls12377.G1Affine
	out.FromJacobian(&outj)
	return out
}

// PointNeg returns -P.
func PointNeg(p bls12377.G1Affine) bls12377.G1Affine {
	var out bls12377.G1Affine
	out.Neg(&p)
	return out
}

// ToPoint converts a native affine point into the wire-level types.Point.
func ToPoint(p bls12377.G1Affine) types.Point {
	if p.IsInfinity() {
		return types.InfinityPoint()
	}
	xb := p.X.Bytes()
	yb := p.Y.Bytes()
	return types.Point{
		X: new(big.Int).SetBytes(xb[:]),
		Y: new(big.Int).SetBytes(yb[:]),
	}
}

// FromPoint converts a wire-level types.Point into a native affine point.
func FromPoint(p types.Point) bls12377.G1Affine {
	var out bls12377.G1Affine
	if p.IsInfinity {
		out.X.SetZero()
		out.Y.SetZero()
		return out
	}
	out.X.SetBigInt(p.X)
	out.Y.SetBigInt(p.Y)
	return out
}

// babyStepTableSize is L = 2^ceil(maxBits/2), which is at least
// ceil(2^(maxBits/2)).
func babyStepTableSize(maxBits uint) int {
	half := maxBits / 2
	if maxBits%2 != 0 {
		half++
	}
	return 1 << half
}

// BabyStepGiantStep solves P = k*G for k < 2^maxBits, or returns
// ErrDLSearchExhausted if no collision is found within the search window.
//
// Algorithm per spec.md §4.1: precompute the baby table {i*G : 0<=i<=L}
// with L = babyStepTableSize(maxBits); compute the giant step M = -L*G; walk
// Q_j = P + j*M for j = 0..L and return k = i + j*L on the first
// collision with the baby table.
func BabyStepGiantStep(p bls12377.G1Affine, maxBits uint) (uint64, error) {
	l := babyStepTableSize(maxBits)
	g := Generator()

	baby := make(map[string]int, l+1)
	var infinity bls12377.G1Affine
	infinity.X.SetZero()
	infinity.Y.SetZero()
	for i := 0; i <= l; i++ {
		var cur bls12377.G1Affine
		if i == 0 {
			cur = infinity
		} else {
			cur.ScalarMultiplication(&g, big.NewInt(int64(i)))
		}
		baby[pointKey(cur)] = i
	}

	var lG bls12377.G1Affine
	lG.ScalarMultiplication(&g, big.NewInt(int64(l)))
	m := PointNeg(lG)

	q := p
	for j := 0; j <= l; j++ {
		if i, ok := baby[pointKey(q)]; ok {
			return uint64(i) + uint64(j)*uint64(l), nil
		}
		q = PointAdd(q, m)
	}
	return 0, types.ErrDLSearchExhausted
}

func pointKey(p bls12377.G1Affine) string {
	if p.X.IsZero() && p.Y.IsZero() {
		return "inf"
	}
	xb := p.X.Bytes()
	yb := p.Y.Bytes()
	return string(xb[:]) + string(yb[:])
}
