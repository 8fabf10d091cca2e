// Package permute implements C3: generation, application and inversion
// of index permutations over both populations, from a single Field
// permutation seed.
//
// The PRG is a keyed LCG (spec.md §4.3), not a cryptographic RNG — that
// is deliberate. The permutation is a private witness the adversary
// never observes; it only needs to be a bijection, so a weak PRG is
// adequate here. Do not reuse this PRG for nonce_seed or key derivation
// (spec.md §9 open questions) — keyed randomness for ElGamal goes
// through the MiMC-based derivation in package elgamal instead.
package permute

import "math/big"

const (
	lcgA = 1103515245
	lcgB = 12345
)

// lcgModulus is M = 2^31 - 1.
var lcgModulus = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 31), big.NewInt(1))

// rand computes (seed*A + B + i) mod M.
func rand(seed *big.Int, i int) *big.Int {
	t := new(big.Int).Mul(seed, big.NewInt(lcgA))
	t.Add(t, big.NewInt(lcgB))
	t.Add(t, big.NewInt(int64(i)))
	return t.Mod(t, lcgModulus)
}

// Permutation is a bijection over [0, n).
type Permutation []int

// Generate builds a permutation of [0, n) from seed by keyed
// Fisher-Yates: walking i from n-1 down to 1, step k = n-1-i draws
// rand(seed, k) to pick i's swap partner among positions [0, i].
func Generate(seed *big.Int, n int) Permutation {
	p := make(Permutation, n)
	for i := range p {
		p[i] = i
	}
	for i := n - 1; i > 0; i-- {
		r := rand(seed, n-1-i)
		j := new(big.Int).Mod(r, big.NewInt(int64(i+1))).Int64()
		p[i], p[j] = p[j], p[i]
	}
	return p
}

// Invert returns the inverse bijection: inv[p[i]] == i.
func (p Permutation) Invert() Permutation {
	inv := make(Permutation, len(p))
	for i, v := range p {
		inv[v] = i
	}
	return inv
}

// Apply returns the value at permuted position i, i.e. p[i].
func (p Permutation) Apply(i int) int {
	return p[i]
}
