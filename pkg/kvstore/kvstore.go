// Package kvstore defines the single interface every storage layer in this
// module implements: the append-only base engine, the index-accelerated
// engine, the filtered wrapper, the segmented engine, and the in-memory
// reference store. Callers compose these by ownership (a filtered store
// owns an inner Store; a segmented engine owns one Store per segment)
// rather than through a deep virtual-dispatch hierarchy.
package kvstore

import "context"

// Item is one (key, value) pair as returned by GetAllItems.
type Item[K any, V any] struct {
	Key   K
	Value V
}

// Store is the operation set every engine variant provides. Every method
// that may block on file I/O takes a context.Context and checks it for
// cancellation before, and between items during, its blocking work.
type Store[K any, V any] interface {
	// Set writes (or overwrites) the value for k, durable to at least the
	// OS buffer before returning.
	Set(ctx context.Context, key K, value V) error

	// TryGet returns (value, true) if k is present, else (zero, false).
	TryGet(ctx context.Context, key K) (V, bool, error)

	// ContainsKey reports whether k is present.
	ContainsKey(ctx context.Context, key K) (bool, error)

	// Remove deletes the entry for k. Append-only variants fail with
	// NotSupported.
	Remove(ctx context.Context, key K) error

	// SetBulk writes each item in order. Not atomic as a group: a crash
	// mid-call leaves a prefix applied.
	SetBulk(ctx context.Context, items []Item[K, V]) error

	// GetAllItems returns every entry in write order, duplicates included
	// for stores that don't deduplicate on write (the base append-only
	// engine); deduplicated/latest-only for stores that do.
	GetAllItems(ctx context.Context) ([]Item[K, V], error)

	// Clear removes all data, returning the store to its initial empty
	// state.
	Clear(ctx context.Context) error

	// Compact rewrites the store's backing storage to keep only the
	// latest entry per key, in the order those survivors were last
	// written.
	Compact(ctx context.Context) error
}
