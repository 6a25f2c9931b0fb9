// Package memstore provides a non-persistent reference implementation of
// the key-value store contract, used as a correctness oracle to compare
// against the log-backed engines in tests.
package memstore

import (
	"context"
	"slices"
	"sync"

	"github.com/emberkv/ignite/pkg/kvstore"
)

// LessFunc totally orders keys of type K, matching the comparator style
// internal/rbtree uses elsewhere in this module.
type LessFunc[K any] func(a, b K) bool

// MemoryStore holds an ordered map K -> V entirely in memory. Unlike the
// log engines, Remove actually deletes the entry: there is no append-only
// log to respect, so this store does not need internal/rbtree's
// NotSupported Remove — a plain Go map plus a sort-on-read is simpler and
// sufficient for a reference oracle.
type MemoryStore[K comparable, V any] struct {
	mu   sync.Mutex
	data map[K]V
	less LessFunc[K]
}

// New creates an empty MemoryStore ordered by less.
func New[K comparable, V any](less LessFunc[K]) *MemoryStore[K, V] {
	return &MemoryStore[K, V]{data: make(map[K]V), less: less}
}

func checkCanceled(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// Set overwrites any prior value for key.
func (m *MemoryStore[K, V]) Set(ctx context.Context, key K, value V) error {
	if err := checkCanceled(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// TryGet returns (value, true) if key is present, else (zero, false).
func (m *MemoryStore[K, V]) TryGet(ctx context.Context, key K) (V, bool, error) {
	var zero V
	if err := checkCanceled(ctx); err != nil {
		return zero, false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

// ContainsKey reports whether key is present.
func (m *MemoryStore[K, V]) ContainsKey(ctx context.Context, key K) (bool, error) {
	_, ok, err := m.TryGet(ctx, key)
	return ok, err
}

// Remove deletes the entry for key, if present.
func (m *MemoryStore[K, V]) Remove(ctx context.Context, key K) error {
	if err := checkCanceled(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// SetBulk writes every item, checking for cancellation between items.
func (m *MemoryStore[K, V]) SetBulk(ctx context.Context, items []kvstore.Item[K, V]) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range items {
		if err := checkCanceled(ctx); err != nil {
			return err
		}
		m.data[item.Key] = item.Value
	}
	return nil
}

// GetAllItems enumerates every entry in ascending key order.
func (m *MemoryStore[K, V]) GetAllItems(ctx context.Context) ([]kvstore.Item[K, V], error) {
	if err := checkCanceled(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	items := make([]kvstore.Item[K, V], 0, len(m.data))
	for k, v := range m.data {
		items = append(items, kvstore.Item[K, V]{Key: k, Value: v})
	}
	slices.SortFunc(items, func(a, b kvstore.Item[K, V]) int {
		switch {
		case m.less(a.Key, b.Key):
			return -1
		case m.less(b.Key, a.Key):
			return 1
		default:
			return 0
		}
	})
	return items, nil
}

// Clear empties the store.
func (m *MemoryStore[K, V]) Clear(ctx context.Context) error {
	if err := checkCanceled(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[K]V)
	return nil
}

// Compact is a no-op: a plain map never accumulates stale duplicate
// entries the way an append-only log does.
func (m *MemoryStore[K, V]) Compact(ctx context.Context) error {
	return checkCanceled(ctx)
}

var _ kvstore.Store[string, string] = (*MemoryStore[string, string])(nil)
