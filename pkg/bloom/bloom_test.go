package bloom_test

import (
	"testing"

	"github.com/emberkv/ignite/pkg/bloom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddedItemsAreContained(t *testing.T) {
	f := bloom.New[int32](bloom.Options[int32]{ExpectedElements: 1000, TargetFalsePositive: 0.01})

	for _, k := range []int32{10, 20, 30} {
		require.NoError(t, f.Add(k))
	}

	for _, k := range []int32{10, 20, 30} {
		assert.True(t, f.Contains(k), "added key %d must be reported as contained", k)
	}
}

func TestNeverAddedIsUsuallyAbsent(t *testing.T) {
	f := bloom.New[int32](bloom.Options[int32]{ExpectedElements: 1000, TargetFalsePositive: 0.01})
	for _, k := range []int32{10, 20, 30} {
		require.NoError(t, f.Add(k))
	}

	assert.False(t, f.Contains(99_999))
}

func TestClearRemovesAllMembership(t *testing.T) {
	f := bloom.New[string](bloom.Options[string]{ExpectedElements: 100, TargetFalsePositive: 0.01})
	require.NoError(t, f.Add("san-francisco"))
	require.True(t, f.Contains("san-francisco"))

	f.Clear()
	assert.False(t, f.Contains("san-francisco"))
}

func TestAddRejectsZeroValue(t *testing.T) {
	f := bloom.New[string](bloom.Options[string]{ExpectedElements: 10, TargetFalsePositive: 0.01})
	err := f.Add("")
	assert.Error(t, err)
}

func TestCustomToBytesProjection(t *testing.T) {
	type point struct{ x, y int }

	f := bloom.New[point](bloom.Options[point]{
		ExpectedElements:    10,
		TargetFalsePositive: 0.01,
		ToBytes: func(p point) []byte {
			return []byte{byte(p.x), byte(p.y)}
		},
	})

	require.NoError(t, f.Add(point{1, 2}))
	assert.True(t, f.Contains(point{1, 2}))
	assert.False(t, f.Contains(point{3, 4}))
}
