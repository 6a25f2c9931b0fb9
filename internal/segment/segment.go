// Package segment implements the log-segmented engine: a directory of
// append-only segment files, each owned by its own inner
// engine, rolled to a fresh segment once the current one reaches a
// configured maximum size. Reads scan newest-first so the most recent
// write for a key always wins; compaction rebuilds the whole stack from
// the deduplicated survivors.
package segment

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/emberkv/ignite/pkg/codec"
	ignerrors "github.com/emberkv/ignite/pkg/errors"
	"github.com/emberkv/ignite/pkg/filesys"
	"github.com/emberkv/ignite/pkg/kvstore"
	"github.com/emberkv/ignite/pkg/seginfo"
)

// Sized is what a segment's inner engine must provide beyond kvstore.Store:
// its current on-disk size, so the segmented engine can decide when to
// roll. Both engine variants in internal/engine satisfy this.
type Sized[K any, V any] interface {
	kvstore.Store[K, V]
	Size() int64
}

// Factory builds the inner engine bound to a fresh segment file at path.
type Factory[K any, V any] func(path string) (Sized[K, V], error)

type entry[K any, V any] struct {
	path  string
	store Sized[K, V]
}

// SegmentedEngine is the log-segmented store. It owns a stack of segments;
// the last element is always the current (writable) segment.
type SegmentedEngine[K comparable, V any] struct {
	mu sync.Mutex

	dir      string
	prefix   string
	maxSize  int64
	factory  Factory[K, V]
	codec    *codec.EntryCodec[K, V]
	log      *zap.SugaredLogger
	now      func() time.Time
	segments []*entry[K, V]
}

// Config holds the dependencies SegmentedEngine needs.
type Config[K comparable, V any] struct {
	Dir            string
	Prefix         string
	MaxSegmentSize uint64
	Factory        Factory[K, V]
	Codec          *codec.EntryCodec[K, V]
	Logger         *zap.SugaredLogger

	// Now is injectable for deterministic tests; defaults to time.Now.
	Now func() time.Time
}

// New discovers any existing segment files under config.Dir, opens each via
// config.Factory (all but the newest are left sealed — simply not the
// current segment — so new writes only ever target the top of the stack),
// and creates one empty current segment if none existed.
func New[K comparable, V any](config *Config[K, V]) (*SegmentedEngine[K, V], error) {
	if err := filesys.CreateDir(config.Dir, 0755, true); err != nil {
		return nil, ignerrors.NewStorageError(err, ignerrors.ErrorCodeIO, "failed to create segment directory").
			WithPath(config.Dir)
	}

	now := config.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}

	se := &SegmentedEngine[K, V]{
		dir:     config.Dir,
		prefix:  config.Prefix,
		maxSize: int64(config.MaxSegmentSize),
		factory: config.Factory,
		codec:   config.Codec,
		log:     config.Logger,
		now:     now,
	}

	paths, err := seginfo.ListSegmentFiles(config.Dir, config.Prefix)
	if err != nil {
		return nil, err
	}

	for _, path := range paths {
		store, err := config.Factory(path)
		if err != nil {
			return nil, err
		}
		se.segments = append(se.segments, &entry[K, V]{path: path, store: store})
	}

	if len(se.segments) == 0 {
		if _, err := se.pushNewSegment(); err != nil {
			return nil, err
		}
	}

	return se, nil
}

// pushNewSegment creates a fresh segment file (bumping the timestamp until
// it lands on an unused filename, since the timestamp format only has
// millisecond resolution) and pushes it as the new current segment.
func (se *SegmentedEngine[K, V]) pushNewSegment() (*entry[K, V], error) {
	at := se.now()
	var path string
	for {
		name := seginfo.GenerateNameAt(se.prefix, at)
		candidate := filepath.Join(se.dir, name)
		exists, err := filesys.Exists(candidate)
		if err != nil {
			return nil, err
		}
		if !exists {
			path = candidate
			break
		}
		at = at.Add(time.Millisecond)
	}

	store, err := se.factory(path)
	if err != nil {
		return nil, err
	}

	e := &entry[K, V]{path: path, store: store}
	se.segments = append(se.segments, e)
	return e, nil
}

func (se *SegmentedEngine[K, V]) current() *entry[K, V] {
	return se.segments[len(se.segments)-1]
}

// rollIfFull seals the current segment and pushes a fresh one if the
// current segment's size has reached the configured maximum.
func (se *SegmentedEngine[K, V]) rollIfFull() error {
	if se.maxSize <= 0 {
		return nil
	}
	if se.current().store.Size() < se.maxSize {
		return nil
	}
	_, err := se.pushNewSegment()
	return err
}

func checkCanceled(ctx context.Context, operation string) error {
	select {
	case <-ctx.Done():
		return ignerrors.NewCanceledError(ctx.Err(), operation)
	default:
		return nil
	}
}

// Set rolls to a new segment if the current one is full, then delegates
// the write to the current segment.
func (se *SegmentedEngine[K, V]) Set(ctx context.Context, key K, value V) error {
	if err := checkCanceled(ctx, "set"); err != nil {
		return err
	}

	se.mu.Lock()
	defer se.mu.Unlock()

	if err := se.rollIfFull(); err != nil {
		return err
	}
	return se.current().store.Set(ctx, key, value)
}

// TryGet scans segments newest-first and returns the first hit, guaranteeing
// last-write-wins across segment boundaries.
func (se *SegmentedEngine[K, V]) TryGet(ctx context.Context, key K) (V, bool, error) {
	var zero V
	if err := checkCanceled(ctx, "try_get"); err != nil {
		return zero, false, err
	}

	se.mu.Lock()
	segments := make([]*entry[K, V], len(se.segments))
	copy(segments, se.segments)
	se.mu.Unlock()

	for i := len(segments) - 1; i >= 0; i-- {
		if err := checkCanceled(ctx, "try_get"); err != nil {
			return zero, false, err
		}
		v, ok, err := segments[i].store.TryGet(ctx, key)
		if err != nil {
			return zero, false, err
		}
		if ok {
			return v, true, nil
		}
	}

	return zero, false, nil
}

// ContainsKey reduces TryGet to a boolean.
func (se *SegmentedEngine[K, V]) ContainsKey(ctx context.Context, key K) (bool, error) {
	_, ok, err := se.TryGet(ctx, key)
	return ok, err
}

// Remove always fails: the segmented engine is still append-only overall.
func (se *SegmentedEngine[K, V]) Remove(ctx context.Context, key K) error {
	return ignerrors.NewNotSupportedError("remove")
}

// SetBulk writes each item to the current segment, computing its encoded
// size first so a bulk call never silently grows a segment past the
// configured maximum.
func (se *SegmentedEngine[K, V]) SetBulk(ctx context.Context, items []kvstore.Item[K, V]) error {
	se.mu.Lock()
	defer se.mu.Unlock()

	for _, item := range items {
		if err := checkCanceled(ctx, "set_bulk"); err != nil {
			return err
		}

		var buf bytes.Buffer
		if err := se.codec.Write(&buf, item.Key, item.Value); err != nil {
			return ignerrors.NewEncodeError(err, "entry")
		}

		if se.maxSize > 0 && se.current().store.Size()+int64(buf.Len()) > se.maxSize {
			if _, err := se.pushNewSegment(); err != nil {
				return err
			}
		}

		if err := se.current().store.Set(ctx, item.Key, item.Value); err != nil {
			return err
		}
	}

	return nil
}

// GetAllItems concatenates every segment's entries oldest-to-newest, which
// preserves global write order since a newer segment is only ever created
// after its predecessor filled up.
func (se *SegmentedEngine[K, V]) GetAllItems(ctx context.Context) ([]kvstore.Item[K, V], error) {
	if err := checkCanceled(ctx, "get_all_items"); err != nil {
		return nil, err
	}

	se.mu.Lock()
	segments := make([]*entry[K, V], len(se.segments))
	copy(segments, se.segments)
	se.mu.Unlock()

	var all []kvstore.Item[K, V]
	for _, seg := range segments {
		if err := checkCanceled(ctx, "get_all_items"); err != nil {
			return nil, err
		}
		items, err := seg.store.GetAllItems(ctx)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
	}

	return all, nil
}

// Clear removes every segment file on disk and resets the stack to a
// single fresh empty current segment.
func (se *SegmentedEngine[K, V]) Clear(ctx context.Context) error {
	if err := checkCanceled(ctx, "clear"); err != nil {
		return err
	}

	se.mu.Lock()
	defer se.mu.Unlock()

	for _, seg := range se.segments {
		if err := filesys.DeleteFile(seg.path); err != nil && !os.IsNotExist(err) {
			return ignerrors.NewStorageError(err, ignerrors.ErrorCodeIO, "failed to remove segment file").
				WithPath(seg.path)
		}
	}
	se.segments = nil

	_, err := se.pushNewSegment()
	return err
}

// Compact deduplicates entries by key across the whole stack (last
// occurrence wins), clears the store entirely, then writes the survivors
// back through SetBulk. Because SetBulk's pre-sizing packs each segment up
// to the configured maximum before rolling, this rebuild already produces
// the tightly packed segments the merge pass describes — no separate merge
// step is needed on top of it.
func (se *SegmentedEngine[K, V]) Compact(ctx context.Context) error {
	if err := checkCanceled(ctx, "compact"); err != nil {
		return err
	}

	items, err := se.GetAllItems(ctx)
	if err != nil {
		return err
	}

	lastIndex := make(map[K]int, len(items))
	for i, item := range items {
		lastIndex[item.Key] = i
	}
	keep := make([]bool, len(items))
	for _, i := range lastIndex {
		keep[i] = true
	}
	survivors := make([]kvstore.Item[K, V], 0, len(lastIndex))
	for i, item := range items {
		if keep[i] {
			survivors = append(survivors, item)
		}
	}

	if err := se.Clear(ctx); err != nil {
		return err
	}
	return se.SetBulk(ctx, survivors)
}

var _ kvstore.Store[string, string] = (*SegmentedEngine[string, string])(nil)
