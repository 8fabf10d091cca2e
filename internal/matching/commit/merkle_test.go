package commit

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleLeaves(n int) []*big.Int {
	leaves := make([]*big.Int, n)
	for i := range leaves {
		leaves[i] = big.NewInt(int64(100 + i))
	}
	return leaves
}

func TestTreePathRoundTrip(t *testing.T) {
	leaves := sampleLeaves(NumLeaves)
	tree := NewTree(leaves)
	root := tree.Root()

	for i := 0; i < NumLeaves; i++ {
		path := tree.Path(i)
		require.True(t, VerifyPath(root, tree.Leaf(i), i, path))
	}
}

func TestTreeZeroPadsShortLeafSets(t *testing.T) {
	leaves := sampleLeaves(3)
	tree := NewTree(leaves)
	require.Equal(t, big.NewInt(0), tree.Leaf(3))

	root := tree.Root()
	path := tree.Path(3)
	require.True(t, VerifyPath(root, tree.Leaf(3), 3, path))
}

func TestVerifyPathRejectsTamperedLeaf(t *testing.T) {
	leaves := sampleLeaves(NumLeaves)
	tree := NewTree(leaves)
	root := tree.Root()
	path := tree.Path(0)

	tampered := new(big.Int).Add(tree.Leaf(0), big.NewInt(1))
	require.False(t, VerifyPath(root, tampered, 0, path))
}

func TestVerifyPathRejectsWrongIndex(t *testing.T) {
	leaves := sampleLeaves(NumLeaves)
	tree := NewTree(leaves)
	root := tree.Root()
	path := tree.Path(0)

	require.False(t, VerifyPath(root, tree.Leaf(0), 1, path))
}

func TestVerifyPathRejectsWrongPathLength(t *testing.T) {
	require.False(t, VerifyPath(big.NewInt(1), big.NewInt(1), 0, []*big.Int{big.NewInt(1)}))
}
