package index

import (
	stdErrors "errors"
	"fmt"

	"github.com/emberkv/ignite/internal/rbtree"
	ignerrors "github.com/emberkv/ignite/pkg/errors"
)

var (
	ErrIndexClosed = stdErrors.New("operation failed: cannot access closed index")
)

// New creates an empty Index configured according to config.
func New[K any](config *Config[K]) (*Index[K], error) {
	if config == nil || config.Less == nil || config.Logger == nil {
		return nil, ignerrors.NewValidationError(
			nil, ignerrors.ErrorCodeInvalidInput, "index configuration is required",
		).WithField("config").WithRule("required").WithProvided(config)
	}

	return &Index[K]{
		log:         config.Logger,
		less:        config.Less,
		maxElements: config.MaxElements,
		tree:        rbtree.New[K, RecordLocator](config.Less, config.MaxElements),
	}, nil
}

// closedError builds an IndexError wrapping ErrIndexClosed for an operation
// attempted against a closed index, with the key it was attempted against.
func (idx *Index[K]) closedError(operation string, k K) error {
	return ignerrors.NewIndexError(ErrIndexClosed, ignerrors.ErrorCodeIndexClosed, "index is closed").
		WithKey(fmt.Sprint(k)).
		WithOperation(operation)
}

// Set overwrites any prior entry for k with loc.
func (idx *Index[K]) Set(k K, loc RecordLocator) error {
	if idx.closed.Load() {
		return idx.closedError("Set", k)
	}
	if err := idx.tree.Set(k, loc); err != nil {
		return ignerrors.NewIndexError(err, ignerrors.ErrorCodeCapacityExceeded, "index capacity exceeded").
			WithKey(fmt.Sprint(k)).
			WithOperation("Set").
			WithIndexSize(int(idx.tree.Len()))
	}
	return nil
}

// TryGet returns (loc, true) if k is present, else (zero value, false).
func (idx *Index[K]) TryGet(k K) (RecordLocator, bool) {
	if idx.closed.Load() {
		return RecordLocator{}, false
	}
	return idx.tree.Get(k)
}

// Contains reports whether k has an entry.
func (idx *Index[K]) Contains(k K) bool {
	if idx.closed.Load() {
		return false
	}
	return idx.tree.Contains(k)
}

// Remove is not supported by the backing red-black tree.
func (idx *Index[K]) Remove(k K) error {
	if idx.closed.Load() {
		return idx.closedError("Remove", k)
	}
	if err := idx.tree.Remove(k); err != nil {
		return ignerrors.NewIndexError(err, ignerrors.ErrorCodeNotSupported, "index does not support removal").
			WithKey(fmt.Sprint(k)).
			WithOperation("Remove")
	}
	return nil
}

// Len returns the number of distinct keys currently indexed.
func (idx *Index[K]) Len() uint64 {
	return idx.tree.Len()
}

// IsFull reports whether the index has reached its configured MaxElements.
func (idx *Index[K]) IsFull() bool {
	return idx.tree.IsFull()
}

// Items returns every (key, locator) pair in ascending key order.
func (idx *Index[K]) Items() []rbtree.Entry[K, RecordLocator] {
	return idx.tree.Items()
}

// Clear discards every entry, returning the index to empty. Unlike Close,
// the index remains usable afterward.
func (idx *Index[K]) Clear() {
	idx.tree = rbtree.New[K, RecordLocator](idx.less, idx.maxElements)
}

// Close gracefully shuts down the Index, cleaning up resources and ensuring
// that the index cannot be used after closure.
func (idx *Index[K]) Close() error {
	if !idx.closed.CompareAndSwap(false, true) {
		return ignerrors.NewIndexError(ErrIndexClosed, ignerrors.ErrorCodeIndexClosed, "index already closed").
			WithOperation("Close")
	}

	idx.log.Infow("closing index")
	idx.tree = nil
	idx.log.Infow("index closed")
	return nil
}
