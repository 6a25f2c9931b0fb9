// Package filtered composes a Bloom filter in front of any Store:
// membership-negative reads short-circuit without touching the inner store
// at all, trading a small, constant amount of memory for avoiding a full
// file scan (or even a single seek) on keys that were never written.
package filtered

import (
	"context"
	"reflect"

	"go.uber.org/zap"

	"github.com/emberkv/ignite/pkg/bloom"
	"github.com/emberkv/ignite/pkg/kvstore"
)

// FilteredStore wraps an inner Store with a Bloom filter that fronts reads.
type FilteredStore[K any, V any] struct {
	inner  kvstore.Store[K, V]
	filter *bloom.Filter[K]
	log    *zap.SugaredLogger
}

// Config holds the dependencies FilteredStore needs.
type Config[K any, V any] struct {
	Inner  kvstore.Store[K, V]
	Filter *bloom.Filter[K]
	Logger *zap.SugaredLogger
}

// New wraps inner with the Bloom filter described by config.
func New[K any, V any](config *Config[K, V]) *FilteredStore[K, V] {
	return &FilteredStore[K, V]{
		inner:  config.Inner,
		filter: config.Filter,
		log:    config.Logger,
	}
}

// addToFilter records key's membership. The Bloom filter rejects the zero
// value of K; that rejection is not a failure of Set itself, it just means
// this particular key can never benefit from the short-circuit and every
// read for it will fall through to the inner store.
func (f *FilteredStore[K, V]) addToFilter(key K) {
	if err := f.filter.Add(key); err != nil && f.log != nil {
		f.log.Warnw("bloom filter rejected key, reads for it will always reach the inner store",
			"error", err)
	}
}

// mayContain reports whether a read for key has to reach the inner store:
// the filter says key may be present, or key is the zero value of K, which
// the filter never records.
func (f *FilteredStore[K, V]) mayContain(key K) bool {
	if f.filter.Contains(key) {
		return true
	}
	var zero K
	return reflect.DeepEqual(key, zero)
}

// Set adds key to the filter and writes through to the inner store.
func (f *FilteredStore[K, V]) Set(ctx context.Context, key K, value V) error {
	f.addToFilter(key)
	return f.inner.Set(ctx, key, value)
}

// TryGet returns not-found immediately if the filter reports key as
// definitely absent; otherwise it delegates to the inner store.
func (f *FilteredStore[K, V]) TryGet(ctx context.Context, key K) (V, bool, error) {
	var zero V
	if !f.mayContain(key) {
		return zero, false, nil
	}
	return f.inner.TryGet(ctx, key)
}

// ContainsKey returns false immediately if the filter reports key as
// definitely absent; otherwise it delegates to the inner store.
func (f *FilteredStore[K, V]) ContainsKey(ctx context.Context, key K) (bool, error) {
	if !f.mayContain(key) {
		return false, nil
	}
	return f.inner.ContainsKey(ctx, key)
}

// Remove delegates to the inner store; the filter is left untouched since
// Bloom filters cannot retract a membership bit without risking false
// negatives for other keys that hash to the same position.
func (f *FilteredStore[K, V]) Remove(ctx context.Context, key K) error {
	return f.inner.Remove(ctx, key)
}

// SetBulk adds every item's key to the filter, then writes through to the
// inner store in one call.
func (f *FilteredStore[K, V]) SetBulk(ctx context.Context, items []kvstore.Item[K, V]) error {
	for _, item := range items {
		f.addToFilter(item.Key)
	}
	return f.inner.SetBulk(ctx, items)
}

// GetAllItems delegates directly to the inner store.
func (f *FilteredStore[K, V]) GetAllItems(ctx context.Context) ([]kvstore.Item[K, V], error) {
	return f.inner.GetAllItems(ctx)
}

// Clear empties both the filter and the inner store.
func (f *FilteredStore[K, V]) Clear(ctx context.Context) error {
	if err := f.inner.Clear(ctx); err != nil {
		return err
	}
	f.filter.Clear()
	return nil
}

// Compact delegates directly to the inner store; the filter's membership
// set is unaffected since compaction never removes a key that survives.
func (f *FilteredStore[K, V]) Compact(ctx context.Context) error {
	return f.inner.Compact(ctx)
}

var _ kvstore.Store[string, string] = (*FilteredStore[string, string])(nil)
