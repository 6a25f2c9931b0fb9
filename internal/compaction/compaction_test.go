package compaction_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/emberkv/ignite/internal/compaction"
	"github.com/emberkv/ignite/pkg/kvstore"
	"github.com/emberkv/ignite/pkg/logger"
)

type countingStore struct {
	calls atomic.Int32
}

func (s *countingStore) Set(ctx context.Context, key, value string) error { return nil }
func (s *countingStore) TryGet(ctx context.Context, key string) (string, bool, error) {
	return "", false, nil
}
func (s *countingStore) ContainsKey(ctx context.Context, key string) (bool, error) { return false, nil }
func (s *countingStore) Remove(ctx context.Context, key string) error              { return nil }
func (s *countingStore) SetBulk(ctx context.Context, items []kvstore.Item[string, string]) error {
	return nil
}
func (s *countingStore) GetAllItems(ctx context.Context) ([]kvstore.Item[string, string], error) {
	return nil, nil
}
func (s *countingStore) Clear(ctx context.Context) error { return nil }
func (s *countingStore) Compact(ctx context.Context) error {
	s.calls.Add(1)
	return nil
}

func TestCompactionRunsOnInterval(t *testing.T) {
	store := &countingStore{}
	c := compaction.New(&compaction.Config[string, string]{
		Store:    store,
		Interval: 10 * time.Millisecond,
		Logger:   logger.NewDevelopment("compaction-test"),
	})
	defer c.Stop()

	assert.Eventually(t, func() bool {
		return store.calls.Load() >= 2
	}, 500*time.Millisecond, 5*time.Millisecond)
}

func TestStopHaltsFurtherCompactions(t *testing.T) {
	store := &countingStore{}
	c := compaction.New(&compaction.Config[string, string]{
		Store:    store,
		Interval: 5 * time.Millisecond,
		Logger:   logger.NewDevelopment("compaction-test"),
	})

	time.Sleep(30 * time.Millisecond)
	c.Stop()

	after := store.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, store.calls.Load())
}
