package commit

import (
	"math/big"

	"matchcore/internal/matching/types"
)

// NumLeaves is 2^MerkleHeight.
const NumLeaves = 1 << types.MerkleHeight

// compress is the two-to-one MiMC compression H(left, right) used for
// every internal Merkle node.
func compress(left, right *big.Int) *big.Int {
	return hashFields(left, right)
}

// Tree is a complete binary tree of height types.MerkleHeight over
// NumLeaves match leaves. Leaves beyond the real match count are the
// zero field element.
type Tree struct {
	levels [][]*big.Int // levels[0] = leaves, levels[height] = {root}
}

// NewTree builds the tree bottom-up from leaves. leaves shorter than
// NumLeaves are zero-padded.
func NewTree(leaves []*big.Int) *Tree {
	padded := make([]*big.Int, NumLeaves)
	for i := range padded {
		if i < len(leaves) && leaves[i] != nil {
			padded[i] = leaves[i]
		} else {
			padded[i] = big.NewInt(0)
		}
	}
	levels := make([][]*big.Int, types.MerkleHeight+1)
	levels[0] = padded
	for lvl := 0; lvl < types.MerkleHeight; lvl++ {
		cur := levels[lvl]
		next := make([]*big.Int, len(cur)/2)
		for i := range next {
			next[i] = compress(cur[2*i], cur[2*i+1])
		}
		levels[lvl+1] = next
	}
	return &Tree{levels: levels}
}

// Root returns the tree's root.
func (t *Tree) Root() *big.Int {
	return t.levels[types.MerkleHeight][0]
}

// Leaf returns the leaf at index i.
func (t *Tree) Leaf(i int) *big.Int {
	return t.levels[0][i]
}

// Path returns the authentication path (sibling hashes, in leaf-to-root
// order) for leaf index i.
func (t *Tree) Path(i int) []*big.Int {
	path := make([]*big.Int, types.MerkleHeight)
	idx := i
	for lvl := 0; lvl < types.MerkleHeight; lvl++ {
		sibling := idx ^ 1
		path[lvl] = t.levels[lvl][sibling]
		idx /= 2
	}
	return path
}

// VerifyPath recomputes the root from leaf, its index and an
// authentication path, and reports whether it matches root.
func VerifyPath(root, leaf *big.Int, index int, path []*big.Int) bool {
	if len(path) != types.MerkleHeight {
		return false
	}
	cur := leaf
	idx := index
	for lvl := 0; lvl < types.MerkleHeight; lvl++ {
		sibling := path[lvl]
		if idx%2 == 0 {
			cur = compress(cur, sibling)
		} else {
			cur = compress(sibling, cur)
		}
		idx /= 2
	}
	return cur.Cmp(root) == 0
}
