// Package engine implements two log engine variants: a base append-only log
// that replays the whole file on every read, and an index-accelerated
// variant that seeks straight to an entry's bytes. Both own exactly one
// Storage File and one Entry Codec; the accelerated variant additionally
// owns an in-memory Index.
package engine

import (
	"bytes"
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/emberkv/ignite/internal/index"
	"github.com/emberkv/ignite/pkg/codec"
	ignerrors "github.com/emberkv/ignite/pkg/errors"
	"github.com/emberkv/ignite/pkg/kvstore"
	"github.com/emberkv/ignite/pkg/options"
	"github.com/emberkv/ignite/pkg/storagefile"
)

// Config holds the dependencies a log engine needs, shared by both variants.
type Config[K comparable, V any] struct {
	Path   string
	Locker storagefile.PathLocker
	Codec  *codec.EntryCodec[K, V]
	Logger *zap.SugaredLogger

	FileExistenceHandling options.FileExistenceHandling
	FileDeletionHandling  options.FileDeletionHandling
}

func checkCanceled(ctx context.Context, operation string) error {
	select {
	case <-ctx.Done():
		return ignerrors.NewCanceledError(ctx.Err(), operation)
	default:
		return nil
	}
}

// AppendOnlyEngine is the base log engine: no acceleration structure, every
// read replays the entire file.
type AppendOnlyEngine[K comparable, V any] struct {
	mu     sync.Mutex
	path   string
	locker storagefile.PathLocker
	file   *storagefile.File
	codec  *codec.EntryCodec[K, V]
	log    *zap.SugaredLogger

	fileExistence options.FileExistenceHandling
	fileDeletion  options.FileDeletionHandling
}

// New opens (or creates) the engine's backing file per the configured
// existence policy and returns a ready-to-use AppendOnlyEngine.
func New[K comparable, V any](config *Config[K, V]) (*AppendOnlyEngine[K, V], error) {
	f := storagefile.Open(config.Path, config.Locker)
	if err := f.Create(config.FileExistenceHandling); err != nil {
		return nil, err
	}

	return &AppendOnlyEngine[K, V]{
		path:          config.Path,
		locker:        config.Locker,
		file:          f,
		codec:         config.Codec,
		log:           config.Logger,
		fileExistence: config.FileExistenceHandling,
		fileDeletion:  config.FileDeletionHandling,
	}, nil
}

// appendLocated encodes (key, value) as a single Entry, appends it in one
// write, flushes it to the OS buffer, and reports where it landed. Both
// Set and the indexed variant build on this.
func (e *AppendOnlyEngine[K, V]) appendLocated(key K, value V) (index.RecordLocator, error) {
	var buf bytes.Buffer
	if err := e.codec.Write(&buf, key, value); err != nil {
		return index.RecordLocator{}, ignerrors.NewEncodeError(err, "entry")
	}

	offset, err := e.file.Append(buf.Bytes())
	if err != nil {
		return index.RecordLocator{}, err
	}
	if err := e.file.Sync(); err != nil {
		return index.RecordLocator{}, err
	}

	return index.RecordLocator{Offset: offset, Length: int64(buf.Len())}, nil
}

// Set writes (or logically overwrites, by appending a newer Entry) the
// value for key.
func (e *AppendOnlyEngine[K, V]) Set(ctx context.Context, key K, value V) error {
	if err := checkCanceled(ctx, "set"); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	_, err := e.appendLocated(key, value)
	return err
}

// decodeAll reads data as a sequence of Entries in write order. A torn
// trailing entry (codec.ErrTornEntry) is logged and treated as end-of-
// stream rather than propagated.
func (e *AppendOnlyEngine[K, V]) decodeAll(data []byte) ([]codec.Entry[K, V], error) {
	reader := bytes.NewReader(data)
	entries := make([]codec.Entry[K, V], 0)

	for {
		entry, ok, err := e.codec.Read(reader)
		if err != nil {
			if err == codec.ErrTornEntry {
				if e.log != nil {
					e.log.Warnw("ignoring torn trailing entry", "path", e.path)
				}
				break
			}
			return nil, err
		}
		if !ok {
			break
		}
		entries = append(entries, *entry)
	}

	return entries, nil
}

// TryGet replays the entire file and returns the value of the last Entry
// whose key equals key.
func (e *AppendOnlyEngine[K, V]) TryGet(ctx context.Context, key K) (V, bool, error) {
	var zero V
	if err := checkCanceled(ctx, "try_get"); err != nil {
		return zero, false, err
	}

	e.mu.Lock()
	data, err := e.file.ReadAll()
	e.mu.Unlock()
	if err != nil {
		return zero, false, err
	}

	entries, err := e.decodeAll(data)
	if err != nil {
		return zero, false, err
	}

	found := false
	var value V
	for _, entry := range entries {
		if entry.Key == key {
			value = entry.Value
			found = true
		}
	}

	return value, found, nil
}

// ContainsKey reports whether key is present; a reduction of TryGet to a
// boolean.
func (e *AppendOnlyEngine[K, V]) ContainsKey(ctx context.Context, key K) (bool, error) {
	_, ok, err := e.TryGet(ctx, key)
	return ok, err
}

// Remove always fails: append-only logs cannot retract an entry.
func (e *AppendOnlyEngine[K, V]) Remove(ctx context.Context, key K) error {
	return ignerrors.NewNotSupportedError("remove")
}

// SetBulk appends each item under a single logical pass over the file,
// checking for cancellation between items. Not atomic as a group: a crash
// mid-call leaves a prefix applied.
func (e *AppendOnlyEngine[K, V]) SetBulk(ctx context.Context, items []kvstore.Item[K, V]) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, item := range items {
		if err := checkCanceled(ctx, "set_bulk"); err != nil {
			return err
		}
		if _, err := e.appendLocated(item.Key, item.Value); err != nil {
			return err
		}
	}

	return nil
}

// GetAllItems returns every entry in write order, duplicates included.
func (e *AppendOnlyEngine[K, V]) GetAllItems(ctx context.Context) ([]kvstore.Item[K, V], error) {
	if err := checkCanceled(ctx, "get_all_items"); err != nil {
		return nil, err
	}

	e.mu.Lock()
	data, err := e.file.ReadAll()
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}

	entries, err := e.decodeAll(data)
	if err != nil {
		return nil, err
	}

	items := make([]kvstore.Item[K, V], len(entries))
	for i, entry := range entries {
		items[i] = kvstore.Item[K, V]{Key: entry.Key, Value: entry.Value}
	}
	return items, nil
}

// Clear deletes the backing file and recreates it empty so the engine
// remains usable afterward.
func (e *AppendOnlyEngine[K, V]) Clear(ctx context.Context) error {
	if err := checkCanceled(ctx, "clear"); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.file.Delete(e.fileDeletion); err != nil {
		return err
	}
	return e.file.Create(options.Overwrite)
}

// survivors keeps the last entry per key, preserving the order in which
// those survivors were last written.
func survivors[K comparable, V any](entries []codec.Entry[K, V]) []codec.Entry[K, V] {
	lastIndex := make(map[K]int, len(entries))
	for i, entry := range entries {
		lastIndex[entry.Key] = i
	}

	keep := make([]bool, len(entries))
	for _, i := range lastIndex {
		keep[i] = true
	}

	out := make([]codec.Entry[K, V], 0, len(lastIndex))
	for i, entry := range entries {
		if keep[i] {
			out = append(out, entry)
		}
	}
	return out
}

// Compact reads all entries, keeps the last entry per key, and atomically
// rewrites the file with just the survivors, in the order they were last
// written.
func (e *AppendOnlyEngine[K, V]) Compact(ctx context.Context) error {
	if err := checkCanceled(ctx, "compact"); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	data, err := e.file.ReadAll()
	if err != nil {
		return err
	}

	entries, err := e.decodeAll(data)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	for _, entry := range survivors(entries) {
		if err := e.codec.Write(&buf, entry.Key, entry.Value); err != nil {
			return ignerrors.NewEncodeError(err, "entry")
		}
	}

	return e.file.ReplaceContent(buf.Bytes())
}

// Size returns the current on-disk size of the engine's backing file in
// bytes, used by the segmented engine to decide when to roll.
func (e *AppendOnlyEngine[K, V]) Size() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.file.Length()
}

var _ kvstore.Store[string, string] = (*AppendOnlyEngine[string, string])(nil)

// IndexedEngine extends AppendOnlyEngine with an in-memory Index: every
// successful write updates the index's RecordLocator for that key, and
// reads seek straight to the matching Entry's bytes instead of replaying
// the whole file.
type IndexedEngine[K comparable, V any] struct {
	base *AppendOnlyEngine[K, V]
	idx  *index.Index[K]
}

// IndexedConfig holds the dependencies for an IndexedEngine: the same file
// configuration as the base engine, plus the comparator and capacity the
// backing Index needs.
type IndexedConfig[K comparable, V any] struct {
	Engine *Config[K, V]
	Index  *index.Config[K]
}

// NewIndexed opens (or creates) the backing file, builds an empty Index,
// and replays the file once to populate it from whatever entries already
// exist on disk.
func NewIndexed[K comparable, V any](ctx context.Context, config *IndexedConfig[K, V]) (*IndexedEngine[K, V], error) {
	base, err := New(config.Engine)
	if err != nil {
		return nil, err
	}

	idx, err := index.New(config.Index)
	if err != nil {
		return nil, err
	}

	engine := &IndexedEngine[K, V]{base: base, idx: idx}
	if err := engine.rebuildIndex(ctx); err != nil {
		return nil, err
	}
	return engine, nil
}

// rebuildIndex replays the file from scratch, recording each entry's
// locator (later writes for the same key overwrite earlier ones, matching
// "last write wins").
func (e *IndexedEngine[K, V]) rebuildIndex(ctx context.Context) error {
	data, err := e.base.file.ReadAll()
	if err != nil {
		return err
	}

	reader := bytes.NewReader(data)
	for {
		if err := checkCanceled(ctx, "rebuild_index"); err != nil {
			return err
		}

		offset := int64(len(data)) - int64(reader.Len())
		entry, ok, err := e.base.codec.Read(reader)
		if err != nil {
			if err == codec.ErrTornEntry {
				break
			}
			return ignerrors.NewIndexCorruptionError("rebuild_index", int(e.idx.Len()), err)
		}
		if !ok {
			break
		}

		length := int64(len(data)) - int64(reader.Len()) - offset
		if err := e.idx.Set(entry.Key, index.RecordLocator{Offset: offset, Length: length}); err != nil {
			return err
		}
	}

	return nil
}

// Set appends the Entry and records its RecordLocator in the index.
func (e *IndexedEngine[K, V]) Set(ctx context.Context, key K, value V) error {
	if err := checkCanceled(ctx, "set"); err != nil {
		return err
	}

	e.base.mu.Lock()
	defer e.base.mu.Unlock()

	loc, err := e.base.appendLocated(key, value)
	if err != nil {
		return err
	}
	return e.idx.Set(key, loc)
}

// TryGet consults the index first: if key is absent from the index, it
// returns not-found without touching the file at all.
func (e *IndexedEngine[K, V]) TryGet(ctx context.Context, key K) (V, bool, error) {
	var zero V
	if err := checkCanceled(ctx, "try_get"); err != nil {
		return zero, false, err
	}

	loc, ok := e.idx.TryGet(key)
	if !ok {
		return zero, false, nil
	}

	e.base.mu.Lock()
	raw, err := e.base.file.ReadAt(loc.Offset, loc.Length)
	e.base.mu.Unlock()
	if err != nil {
		return zero, false, err
	}

	entry, ok, err := e.base.codec.Read(bytes.NewReader(raw))
	if err != nil {
		return zero, false, err
	}
	if !ok {
		return zero, false, nil
	}
	return entry.Value, true, nil
}

// ContainsKey defers to the index directly, never touching the file.
func (e *IndexedEngine[K, V]) ContainsKey(ctx context.Context, key K) (bool, error) {
	if err := checkCanceled(ctx, "contains_key"); err != nil {
		return false, err
	}
	return e.idx.Contains(key), nil
}

// Remove always fails: the underlying log is still append-only.
func (e *IndexedEngine[K, V]) Remove(ctx context.Context, key K) error {
	return ignerrors.NewNotSupportedError("remove")
}

// SetBulk appends each item and updates the index for it before moving to
// the next, checking for cancellation between items.
func (e *IndexedEngine[K, V]) SetBulk(ctx context.Context, items []kvstore.Item[K, V]) error {
	e.base.mu.Lock()
	defer e.base.mu.Unlock()

	for _, item := range items {
		if err := checkCanceled(ctx, "set_bulk"); err != nil {
			return err
		}
		loc, err := e.base.appendLocated(item.Key, item.Value)
		if err != nil {
			return err
		}
		if err := e.idx.Set(item.Key, loc); err != nil {
			return err
		}
	}

	return nil
}

// GetAllItems delegates to the base engine: the log is still the source of
// truth for write-order enumeration (the index does not track ordering).
func (e *IndexedEngine[K, V]) GetAllItems(ctx context.Context) ([]kvstore.Item[K, V], error) {
	return e.base.GetAllItems(ctx)
}

// Clear empties both the file and the index.
func (e *IndexedEngine[K, V]) Clear(ctx context.Context) error {
	if err := e.base.Clear(ctx); err != nil {
		return err
	}
	e.idx.Clear()
	return nil
}

// Compact rewrites the log keeping only the latest entry per key, then
// regenerates the index over the survivors via SetBulk, which updates the
// index by construction.
func (e *IndexedEngine[K, V]) Compact(ctx context.Context) error {
	if err := checkCanceled(ctx, "compact"); err != nil {
		return err
	}

	items, err := e.base.GetAllItems(ctx)
	if err != nil {
		return err
	}

	kvEntries := make([]codec.Entry[K, V], len(items))
	for i, item := range items {
		kvEntries[i] = codec.Entry[K, V]{Key: item.Key, Value: item.Value}
	}
	survived := survivors(kvEntries)

	if err := e.base.Clear(ctx); err != nil {
		return err
	}
	e.idx.Clear()

	survivedItems := make([]kvstore.Item[K, V], len(survived))
	for i, entry := range survived {
		survivedItems[i] = kvstore.Item[K, V]{Key: entry.Key, Value: entry.Value}
	}
	return e.SetBulk(ctx, survivedItems)
}

// Size returns the current on-disk size of the engine's backing file.
func (e *IndexedEngine[K, V]) Size() int64 {
	return e.base.Size()
}

var _ kvstore.Store[string, string] = (*IndexedEngine[string, string])(nil)
