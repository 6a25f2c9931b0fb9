// Package ignite provides a high-performance key/value data store designed
// for fast read and write operations, inspired by Bitcask. It combines an
// in-memory index with an append-only log structure on disk to achieve high
// throughput, and wires together every storage layer in this module into a
// single entry point: a log-segmented engine (internal/segment) of
// index-accelerated log engines (internal/engine), optionally fronted by a
// Bloom filter (internal/filtered), with a background compaction loop
// (internal/compaction) running on its own goroutine.
package ignite

import (
	"context"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/emberkv/ignite/internal/compaction"
	"github.com/emberkv/ignite/internal/engine"
	"github.com/emberkv/ignite/internal/filtered"
	"github.com/emberkv/ignite/internal/index"
	"github.com/emberkv/ignite/internal/rbtree"
	"github.com/emberkv/ignite/internal/segment"
	"github.com/emberkv/ignite/pkg/bloom"
	"github.com/emberkv/ignite/pkg/codec"
	ignerrors "github.com/emberkv/ignite/pkg/errors"
	"github.com/emberkv/ignite/pkg/filesys"
	"github.com/emberkv/ignite/pkg/kvstore"
	"github.com/emberkv/ignite/pkg/logger"
	"github.com/emberkv/ignite/pkg/options"
	"github.com/emberkv/ignite/pkg/storagefile"
)

// Instance is the primary entry point for interacting with an Ignite store.
// It encapsulates the storage stack wired from Config and the configuration
// options applied to this database instance.
type Instance[K comparable, V any] struct {
	store     kvstore.Store[K, V]
	locker    storagefile.PathLocker
	compactor *compaction.Compaction
	options   *options.Options
	log       *zap.SugaredLogger
}

// Config holds the dependencies needed to wire an Instance's storage stack.
// KeyCodec, ValueCodec, and Less are required: the module has no way to
// infer how to serialize or order an arbitrary K/V pair.
type Config[K comparable, V any] struct {
	// Service names this instance in its log output.
	Service string

	KeyCodec   codec.Codec[K]
	ValueCodec codec.Codec[V]

	// Less totally orders keys, used by every segment's accelerating index.
	Less rbtree.LessFunc[K]

	// Locker serializes file operations per path. Defaults to a fresh
	// storagefile.Registry; tests can inject a scoped one instead of
	// sharing a process-wide global.
	Locker storagefile.PathLocker

	// Logger overrides the default production logger, e.g. for tests.
	Logger *zap.SugaredLogger

	Options *options.Options
}

// NewInstance creates and initializes a new Ignite instance: it creates the
// segment directory, opens (or discovers) the segment stack, optionally
// wraps it with a Bloom filter, and starts the background compaction loop.
func NewInstance[K comparable, V any](ctx context.Context, config *Config[K, V], opts ...options.OptionFunc) (*Instance[K, V], error) {
	if config.KeyCodec == nil || config.ValueCodec == nil || config.Less == nil {
		return nil, ignerrors.NewValidationError(
			nil, ignerrors.ErrorCodeInvalidInput, "key codec, value codec, and key ordering are required",
		).WithField("config").WithRule("required").WithProvided(config)
	}

	log := config.Logger
	if log == nil {
		log = logger.New(config.Service)
	}

	defaultOpts := options.NewDefaultOptions()
	if config.Options != nil {
		defaultOpts = *config.Options
	}
	for _, opt := range opts {
		opt(&defaultOpts)
	}

	locker := config.Locker
	if locker == nil {
		locker = storagefile.NewRegistry()
	}

	entryCodec := codec.NewEntryCodec(config.KeyCodec, config.ValueCodec)
	segmentDir := filepath.Join(defaultOpts.DataDir, defaultOpts.SegmentOptions.Directory)
	if err := filesys.CreateDir(segmentDir, 0755, true); err != nil {
		return nil, ignerrors.NewStorageError(err, ignerrors.ErrorCodeIO, "failed to create data directory").
			WithPath(segmentDir)
	}

	factory := segment.Factory[K, V](func(path string) (segment.Sized[K, V], error) {
		return engine.NewIndexed(ctx, &engine.IndexedConfig[K, V]{
			Engine: &engine.Config[K, V]{
				Path:                  path,
				Locker:                locker,
				Codec:                 entryCodec,
				Logger:                log,
				FileExistenceHandling: defaultOpts.FileExistenceHandling,
				FileDeletionHandling:  defaultOpts.FileDeletionHandling,
			},
			Index: &index.Config[K]{
				Less:        config.Less,
				MaxElements: defaultOpts.IndexMaxElements,
				Logger:      log,
			},
		})
	})

	segmented, err := segment.New(&segment.Config[K, V]{
		Dir:            segmentDir,
		Prefix:         defaultOpts.SegmentOptions.Prefix,
		MaxSegmentSize: defaultOpts.SegmentOptions.Size,
		Factory:        factory,
		Codec:          entryCodec,
		Logger:         log,
	})
	if err != nil {
		return nil, err
	}

	var store kvstore.Store[K, V] = segmented
	if defaultOpts.Bloom != nil {
		filter := bloom.New[K](bloom.Options[K]{
			ExpectedElements:    defaultOpts.Bloom.ExpectedElements,
			TargetFalsePositive: defaultOpts.Bloom.TargetFalsePositive,
		})
		store = filtered.New(&filtered.Config[K, V]{Inner: segmented, Filter: filter, Logger: log})
	}

	instance := &Instance[K, V]{
		store:   store,
		locker:  locker,
		options: &defaultOpts,
		log:     log,
	}

	if defaultOpts.CompactInterval > 0 {
		instance.compactor = compaction.New(&compaction.Config[K, V]{
			Store:    store,
			Interval: defaultOpts.CompactInterval,
			Logger:   log,
		})
	}

	return instance, nil
}

// Set stores a key-value pair in the database. If the key already exists,
// its value will be updated. The operation is durable and will be written
// to the append-only log before returning.
func (i *Instance[K, V]) Set(ctx context.Context, key K, value V) error {
	return i.store.Set(ctx, key, value)
}

// Get retrieves the value associated with key, reporting whether it was
// found.
func (i *Instance[K, V]) Get(ctx context.Context, key K) (V, bool, error) {
	return i.store.TryGet(ctx, key)
}

// ContainsKey reports whether key is present, without retrieving its value.
func (i *Instance[K, V]) ContainsKey(ctx context.Context, key K) (bool, error) {
	return i.store.ContainsKey(ctx, key)
}

// Delete removes a key-value pair from the database. The underlying stores
// are all still append-only logs, so this always fails with NotSupported:
// there is no record-level tombstone format in this module.
func (i *Instance[K, V]) Delete(ctx context.Context, key K) error {
	return i.store.Remove(ctx, key)
}

// SetBulk writes every item, in order, in a single call.
func (i *Instance[K, V]) SetBulk(ctx context.Context, items []kvstore.Item[K, V]) error {
	return i.store.SetBulk(ctx, items)
}

// GetAllItems returns every entry in the store in write order; a key written
// more than once appears once per write until the next Compact.
func (i *Instance[K, V]) GetAllItems(ctx context.Context) ([]kvstore.Item[K, V], error) {
	return i.store.GetAllItems(ctx)
}

// Clear empties the store entirely, returning it to its initial state.
func (i *Instance[K, V]) Clear(ctx context.Context) error {
	return i.store.Clear(ctx)
}

// Compact triggers an immediate compaction pass, independent of the
// background interval.
func (i *Instance[K, V]) Compact(ctx context.Context) error {
	return i.store.Compact(ctx)
}

// Close gracefully shuts down the Ignite instance: it stops the background
// compaction loop and waits for it to exit before returning.
func (i *Instance[K, V]) Close(ctx context.Context) error {
	if i.compactor != nil {
		i.compactor.Stop()
	}
	return nil
}
