// Package elgamal implements C2: exponential ElGamal over the embedded
// curve, parameterized by types.BitsDL. The message is embedded as m*G
// rather than as a raw group element, which keeps the scheme additively
// homomorphic at the cost of bounding plaintexts to a small range that
// must be recovered by discrete-log search on decryption.
package elgamal

import (
	"math/big"

	bls12377 "github.com/consensys/gnark-crypto/ecc/bls12-377"
	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
	mimcNative "github.com/consensys/gnark-crypto/ecc/bw6-761/fr/mimc"

	"matchcore/internal/matching/curve"
	"matchcore/internal/matching/types"
)

// maxPlaintext is the exclusive upper bound 2^BitsDL.
var maxPlaintext = new(big.Int).Lsh(big.NewInt(1), types.BitsDL)

// Ciphertext is the native-typed exponential ElGamal pair (c1, c2).
type Ciphertext struct {
	C1 bls12377.G1Affine
	C2 bls12377.G1Affine
}

// deriveRandomness computes r for the i-th encryption addressed to
// recipientID as H(msg, pk.x, pk.y, recipientID, i, nonceSeed), per
// spec.md §4.2: this avoids trusting an off-circuit RNG while keeping
// semantic security against a passive observer, so long as nonceSeed is
// a secret witness value and the hash behaves as a random oracle.
func deriveRandomness(msg int64, pk bls12377.G1Affine, recipientID, i int, nonceSeed *big.Int) fr.Element {
	h := mimcNative.NewMiMC()
	// Every value is written as one fixed-width block so that zero ids
	// are hashed as field elements, matching the in-circuit hasher.
	block := func(v *big.Int) []byte {
		buf := make([]byte, h.BlockSize())
		return v.FillBytes(buf)
	}
	h.Write(block(big.NewInt(msg)))
	xb := pk.X.Bytes()
	yb := pk.Y.Bytes()
	h.Write(xb[:])
	h.Write(yb[:])
	h.Write(block(big.NewInt(int64(recipientID))))
	h.Write(block(big.NewInt(int64(i))))
	h.Write(block(nonceSeed))
	sum := h.Sum(nil)
	return curve.ScalarFromField(new(big.Int).SetBytes(sum))
}

// Encrypt computes (c1, c2) = (r*G, r*pk + msg*G) for 0 <= msg < 2^BitsDL.
// r must never be reused across encryptions; callers normally obtain it
// from deriveRandomness rather than sampling it directly.
func Encrypt(pk bls12377.G1Affine, msg int64, r fr.Element) (Ciphertext, error) {
	if msg < 0 || big.NewInt(msg).Cmp(maxPlaintext) >= 0 {
		return Ciphertext{}, types.ErrInvalidPlaintext
	}
	c1 := curve.FixedBaseMul(r)
	rPk := curve.VarBaseMul(pk, r)
	var msgScalar fr.Element
	msgScalar.SetInt64(msg)
	msgG := curve.FixedBaseMul(msgScalar)
	c2 := curve.PointAdd(rPk, msgG)
	return Ciphertext{C1: c1, C2: c2}, nil
}

// EncryptDeterministic derives r via deriveRandomness and encrypts msg to
// pk as the i-th ciphertext addressed to recipientID under nonceSeed.
func EncryptDeterministic(pk bls12377.G1Affine, msg int64, recipientID, i int, nonceSeed *big.Int) (Ciphertext, error) {
	r := deriveRandomness(msg, pk, recipientID, i, nonceSeed)
	return Encrypt(pk, msg, r)
}

// DecryptToPoint returns c2 - sk*c1 = msg*G.
func DecryptToPoint(sk fr.Element, ct Ciphertext) bls12377.G1Affine {
	skC1 := curve.VarBaseMul(ct.C1, sk)
	return curve.PointAdd(ct.C2, curve.PointNeg(skC1))
}

// DecryptToScalar recovers msg via baby-step/giant-step discrete log
// search over [0, 2^BitsDL).
func DecryptToScalar(sk fr.Element, ct Ciphertext) (uint64, error) {
	p := DecryptToPoint(sk, ct)
	k, err := curve.BabyStepGiantStep(p, types.BitsDL)
	if err != nil {
		return 0, types.ErrDecryptionFailed
	}
	return k, nil
}

// Add returns the homomorphic sum of two ciphertexts: the caller is
// responsible for ensuring the plaintext sum stays below 2^BitsDL.
func Add(a, b Ciphertext) Ciphertext {
	return Ciphertext{
		C1: curve.PointAdd(a.C1, b.C1),
		C2: curve.PointAdd(a.C2, b.C2),
	}
}

// ToWire converts a native ciphertext to its wire-level representation.
func ToWire(ct Ciphertext) types.Ciphertext {
	return types.Ciphertext{C1: curve.ToPoint(ct.C1), C2: curve.ToPoint(ct.C2)}
}

// FromWire converts a wire-level ciphertext to its native representation.
func FromWire(ct types.Ciphertext) Ciphertext {
	return Ciphertext{C1: curve.FromPoint(ct.C1), C2: curve.FromPoint(ct.C2)}
}

// InfinityCiphertext is the canonical padding ciphertext (inf, inf).
func InfinityCiphertext() Ciphertext {
	var inf bls12377.G1Affine
	inf.X.SetZero()
	inf.Y.SetZero()
	return Ciphertext{C1: inf, C2: inf}
}
