// Package index provides the in-memory ordered map from key to on-disk
// location for the indexed append-only log engine.
//
// Unlike a plain hash map, the red-black backing structure keeps lookups
// and inserts O(log n), and full-key enumeration (one O(n) walk of the
// tree) comes back in key order for free — useful for merge-style
// compaction passes that want survivors in a stable order.
package index

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/emberkv/ignite/internal/rbtree"
)

// RecordLocator is a (offset, length) pair into a segment file. Once
// produced, the bytes it points to never move or change: segments are
// append-only, so a locator stays valid for the lifetime of the segment it
// was produced against.
type RecordLocator struct {
	// Offset is the byte position, within the segment file, where the
	// entry's encoding begins.
	Offset int64

	// Length is the number of bytes the entry's encoding occupies.
	Length int64
}

// Index maps keys of type K to their RecordLocator, backed by a red-black
// tree for ordered O(log n) operations.
type Index[K any] struct {
	log         *zap.SugaredLogger
	less        rbtree.LessFunc[K]
	maxElements uint64
	tree        *rbtree.Tree[K, RecordLocator]
	closed      atomic.Bool
}

// Config encapsulates the configuration parameters required to initialize
// an Index.
type Config[K any] struct {
	// Less totally orders keys; required.
	Less rbtree.LessFunc[K]

	// MaxElements caps the number of distinct keys the index will hold
	// (0 means unbounded), enforced by the backing red-black tree.
	MaxElements uint64

	Logger *zap.SugaredLogger
}
