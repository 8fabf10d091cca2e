package session

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"

	"matchcore/internal/matching/elgamal"
	"matchcore/internal/matching/types"
)

// ClaimMatch is the host-side decryption entry point (spec.md §6),
// distinct from the in-circuit multiplexed operations: given a
// recipient's scalar private key and the ciphertext addressed to them,
// it recovers the plaintext and undoes the +1 offset applied before
// encryption (session.Solve never encrypts a raw zero-based id, so that
// a DL search over 0 can never be mistaken for "slot still empty").
//
// Returns types.Unmatched when the recovered value is out of range
// (including 0, the "no match" plaintext), and wraps a DL-search
// exhaustion as types.ErrDecryptionFailed.
func ClaimMatch(sk *big.Int, ct types.Ciphertext) (int, error) {
	var skElem fr.Element
	skElem.SetBigInt(sk)
	k, err := elgamal.DecryptToScalar(skElem, elgamal.FromWire(ct))
	if err != nil {
		return types.Unmatched, err
	}
	if k == 0 || k > 1<<types.BitsDL {
		return types.Unmatched, nil
	}
	return int(k) - 1, nil
}
