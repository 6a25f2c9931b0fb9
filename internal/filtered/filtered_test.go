package filtered_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberkv/ignite/internal/filtered"
	"github.com/emberkv/ignite/pkg/bloom"
	"github.com/emberkv/ignite/pkg/kvstore"
	"github.com/emberkv/ignite/pkg/logger"
)

// countingStore wraps a plain map so tests can assert the filter actually
// prevented a call from reaching the inner store.
type countingStore struct {
	data      map[string]string
	getCalls  int
	hasCalls  int
	failClear bool
}

func newCountingStore() *countingStore {
	return &countingStore{data: make(map[string]string)}
}

func (s *countingStore) Set(ctx context.Context, key, value string) error {
	s.data[key] = value
	return nil
}

func (s *countingStore) TryGet(ctx context.Context, key string) (string, bool, error) {
	s.getCalls++
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *countingStore) ContainsKey(ctx context.Context, key string) (bool, error) {
	s.hasCalls++
	_, ok := s.data[key]
	return ok, nil
}

func (s *countingStore) Remove(ctx context.Context, key string) error {
	delete(s.data, key)
	return nil
}

func (s *countingStore) SetBulk(ctx context.Context, items []kvstore.Item[string, string]) error {
	for _, item := range items {
		s.data[item.Key] = item.Value
	}
	return nil
}

func (s *countingStore) GetAllItems(ctx context.Context) ([]kvstore.Item[string, string], error) {
	items := make([]kvstore.Item[string, string], 0, len(s.data))
	for k, v := range s.data {
		items = append(items, kvstore.Item[string, string]{Key: k, Value: v})
	}
	return items, nil
}

func (s *countingStore) Clear(ctx context.Context) error {
	s.data = make(map[string]string)
	return nil
}

func (s *countingStore) Compact(ctx context.Context) error {
	return nil
}

func newFilteredStore(t *testing.T) (*filtered.FilteredStore[string, string], *countingStore) {
	t.Helper()
	inner := newCountingStore()
	f := bloom.New[string](bloom.Options[string]{ExpectedElements: 1000, TargetFalsePositive: 0.01})
	store := filtered.New(&filtered.Config[string, string]{
		Inner:  inner,
		Filter: f,
		Logger: logger.NewDevelopment("filtered-test"),
	})
	return store, inner
}

func TestSetThenTryGetHitsInner(t *testing.T) {
	ctx := context.Background()
	store, inner := newFilteredStore(t)

	require.NoError(t, store.Set(ctx, "a", "1"))

	v, ok, err := store.TryGet(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1", v)
	assert.Equal(t, 1, inner.getCalls)
}

func TestNeverWrittenKeyShortCircuitsInner(t *testing.T) {
	ctx := context.Background()
	store, inner := newFilteredStore(t)

	require.NoError(t, store.Set(ctx, "a", "1"))

	_, ok, err := store.TryGet(ctx, "never-written")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, inner.getCalls, "filter should have short-circuited before reaching the inner store")
}

func TestContainsKeyShortCircuits(t *testing.T) {
	ctx := context.Background()
	store, inner := newFilteredStore(t)

	ok, err := store.ContainsKey(ctx, "absent")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, inner.hasCalls)
}

func TestSetBulkAddsEveryKeyToFilter(t *testing.T) {
	ctx := context.Background()
	store, inner := newFilteredStore(t)

	require.NoError(t, store.SetBulk(ctx, []kvstore.Item[string, string]{
		{Key: "a", Value: "1"},
		{Key: "b", Value: "2"},
	}))

	for _, key := range []string{"a", "b"} {
		_, ok, err := store.TryGet(ctx, key)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.Len(t, inner.data, 2)
}

func TestClearResetsFilterAndInner(t *testing.T) {
	ctx := context.Background()
	store, inner := newFilteredStore(t)

	require.NoError(t, store.Set(ctx, "a", "1"))
	require.NoError(t, store.Clear(ctx))

	assert.Empty(t, inner.data)
	_, ok, err := store.TryGet(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, inner.getCalls, "clear should reset the filter so stale keys short-circuit again")
}
