package rbtree_test

import (
	"math/rand"
	"testing"

	"github.com/emberkv/ignite/internal/rbtree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lessInt(a, b int32) bool { return a < b }

func TestSetGetBasic(t *testing.T) {
	tree := rbtree.New[int32, string](lessInt, 0)

	require.NoError(t, tree.Set(10, "ten"))
	require.NoError(t, tree.Set(5, "five"))
	require.NoError(t, tree.Set(20, "twenty"))

	v, ok := tree.Get(5)
	require.True(t, ok)
	assert.Equal(t, "five", v)

	_, ok = tree.Get(99)
	assert.False(t, ok)

	assert.Equal(t, uint64(3), tree.Len())
}

func TestSetUpdatesInPlace(t *testing.T) {
	tree := rbtree.New[int32, string](lessInt, 0)
	require.NoError(t, tree.Set(1, "a"))
	require.NoError(t, tree.Set(1, "b"))

	assert.Equal(t, uint64(1), tree.Len())
	v, ok := tree.Get(1)
	require.True(t, ok)
	assert.Equal(t, "b", v)
}

func TestItemsAreSortedAscending(t *testing.T) {
	tree := rbtree.New[int32, int32](lessInt, 0)
	values := []int32{50, 10, 80, 30, 20, 90, 5, 1, 100, 45}
	for _, v := range values {
		require.NoError(t, tree.Set(v, v*10))
	}

	items := tree.Items()
	require.Len(t, items, len(values))
	for i := 1; i < len(items); i++ {
		assert.Less(t, items[i-1].Key, items[i].Key)
	}
}

func TestCapacityExceeded(t *testing.T) {
	tree := rbtree.New[int32, string](lessInt, 2)

	require.NoError(t, tree.Set(1, "a"))
	require.NoError(t, tree.Set(2, "b"))

	// Updating an existing key never counts against capacity.
	require.NoError(t, tree.Set(1, "aa"))

	err := tree.Set(3, "c")
	assert.Error(t, err)
	assert.True(t, tree.IsFull())
}

func TestRemoveNotSupported(t *testing.T) {
	tree := rbtree.New[int32, string](lessInt, 0)
	require.NoError(t, tree.Set(1, "a"))
	err := tree.Remove(1)
	assert.Error(t, err)
}

func TestLargeRandomInsertStaysConsistent(t *testing.T) {
	tree := rbtree.New[int32, int32](lessInt, 0)
	rng := rand.New(rand.NewSource(42))

	seen := make(map[int32]bool)
	for i := 0; i < 2000; i++ {
		k := rng.Int31n(5000)
		require.NoError(t, tree.Set(k, k))
		seen[k] = true
	}

	assert.Equal(t, uint64(len(seen)), tree.Len())

	items := tree.Items()
	require.Len(t, items, len(seen))
	for i := 1; i < len(items); i++ {
		assert.Less(t, items[i-1].Key, items[i].Key)
	}
	for k := range seen {
		v, ok := tree.Get(k)
		require.True(t, ok)
		assert.Equal(t, k, v)
	}
}
