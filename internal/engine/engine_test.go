package engine_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberkv/ignite/internal/engine"
	"github.com/emberkv/ignite/internal/index"
	"github.com/emberkv/ignite/pkg/codec"
	ignerrors "github.com/emberkv/ignite/pkg/errors"
	"github.com/emberkv/ignite/pkg/kvstore"
	"github.com/emberkv/ignite/pkg/logger"
	"github.com/emberkv/ignite/pkg/options"
	"github.com/emberkv/ignite/pkg/storagefile"
)

func stringCodec() *codec.EntryCodec[string, string] {
	return codec.NewEntryCodec[string, string](codec.StringCodec{}, codec.StringCodec{})
}

func newAppendOnly(t *testing.T) *engine.AppendOnlyEngine[string, string] {
	t.Helper()
	dir := t.TempDir()
	e, err := engine.New(&engine.Config[string, string]{
		Path:                  filepath.Join(dir, "base.log"),
		Locker:                storagefile.NewRegistry(),
		Codec:                 stringCodec(),
		Logger:                logger.NewDevelopment("engine-test"),
		FileExistenceHandling: options.DoNothingIfExists,
		FileDeletionHandling:  options.DeleteIfExists,
	})
	require.NoError(t, err)
	return e
}

func lessString(a, b string) bool { return a < b }

func newIndexed(t *testing.T) *engine.IndexedEngine[string, string] {
	t.Helper()
	dir := t.TempDir()
	e, err := engine.NewIndexed(context.Background(), &engine.IndexedConfig[string, string]{
		Engine: &engine.Config[string, string]{
			Path:                  filepath.Join(dir, "indexed.log"),
			Locker:                storagefile.NewRegistry(),
			Codec:                 stringCodec(),
			Logger:                logger.NewDevelopment("engine-test"),
			FileExistenceHandling: options.DoNothingIfExists,
			FileDeletionHandling:  options.DeleteIfExists,
		},
		Index: &index.Config[string]{
			Less:   lessString,
			Logger: logger.NewDevelopment("engine-test"),
		},
	})
	require.NoError(t, err)
	return e
}

func TestAppendOnlySetTryGet(t *testing.T) {
	ctx := context.Background()
	e := newAppendOnly(t)

	require.NoError(t, e.Set(ctx, "a", "1"))
	require.NoError(t, e.Set(ctx, "b", "2"))

	v, ok, err := e.TryGet(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1", v)

	_, ok, err = e.TryGet(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAppendOnlyLaterWriteWins(t *testing.T) {
	ctx := context.Background()
	e := newAppendOnly(t)

	require.NoError(t, e.Set(ctx, "a", "1"))
	require.NoError(t, e.Set(ctx, "a", "2"))
	require.NoError(t, e.Set(ctx, "a", "3"))

	v, ok, err := e.TryGet(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "3", v)
}

func TestAppendOnlyGetAllItemsIncludesDuplicates(t *testing.T) {
	ctx := context.Background()
	e := newAppendOnly(t)

	require.NoError(t, e.Set(ctx, "a", "1"))
	require.NoError(t, e.Set(ctx, "a", "2"))

	items, err := e.GetAllItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "1", items[0].Value)
	assert.Equal(t, "2", items[1].Value)
}

func TestAppendOnlyRemoveNotSupported(t *testing.T) {
	e := newAppendOnly(t)
	err := e.Remove(context.Background(), "a")
	assert.Error(t, err)
}

func TestAppendOnlyCompactKeepsLastPerKey(t *testing.T) {
	ctx := context.Background()
	e := newAppendOnly(t)

	require.NoError(t, e.Set(ctx, "a", "1"))
	require.NoError(t, e.Set(ctx, "b", "x"))
	require.NoError(t, e.Set(ctx, "a", "2"))

	require.NoError(t, e.Compact(ctx))

	items, err := e.GetAllItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)

	byKey := map[string]string{}
	for _, it := range items {
		byKey[it.Key] = it.Value
	}
	assert.Equal(t, "2", byKey["a"])
	assert.Equal(t, "x", byKey["b"])
}

func TestAppendOnlyClearEmptiesStore(t *testing.T) {
	ctx := context.Background()
	e := newAppendOnly(t)

	require.NoError(t, e.Set(ctx, "a", "1"))
	require.NoError(t, e.Clear(ctx))

	items, err := e.GetAllItems(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	require.NoError(t, e.Set(ctx, "a", "1"))
	v, ok, err := e.TryGet(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1", v)
}

func TestAppendOnlySetBulkCancellation(t *testing.T) {
	e := newAppendOnly(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := e.SetBulk(ctx, []kvstore.Item[string, string]{{Key: "a", Value: "1"}})
	assert.Error(t, err)
}

func TestIndexedSetTryGetUsesIndex(t *testing.T) {
	ctx := context.Background()
	e := newIndexed(t)

	require.NoError(t, e.Set(ctx, "a", "1"))
	require.NoError(t, e.Set(ctx, "b", "2"))

	v, ok, err := e.TryGet(ctx, "b")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2", v)

	ok, err = e.ContainsKey(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIndexedSetOverwriteUpdatesLocator(t *testing.T) {
	ctx := context.Background()
	e := newIndexed(t)

	require.NoError(t, e.Set(ctx, "a", "1"))
	require.NoError(t, e.Set(ctx, "a", "2"))

	v, ok, err := e.TryGet(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2", v)
}

func TestIndexedCompactRebuildsIndex(t *testing.T) {
	ctx := context.Background()
	e := newIndexed(t)

	require.NoError(t, e.Set(ctx, "a", "1"))
	require.NoError(t, e.Set(ctx, "a", "2"))
	require.NoError(t, e.Set(ctx, "b", "x"))

	require.NoError(t, e.Compact(ctx))

	v, ok, err := e.TryGet(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2", v)

	v, ok, err = e.TryGet(ctx, "b")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "x", v)
}

func TestIndexedNewWrapsNonTornDecodeFailureAsIndexCorruption(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corrupt.log")

	// A complete (non-truncated) entry: key "a" (len-prefixed "a"), then a
	// value whose length prefix is satisfied but whose byte is invalid
	// UTF-8 — a malformed entry, not a torn trailing one.
	require.NoError(t, os.WriteFile(path, []byte{0x01, 'a', 0x01, 0xFF}, 0644))

	_, err := engine.NewIndexed(context.Background(), &engine.IndexedConfig[string, string]{
		Engine: &engine.Config[string, string]{
			Path:                  path,
			Locker:                storagefile.NewRegistry(),
			Codec:                 stringCodec(),
			Logger:                logger.NewDevelopment("engine-test"),
			FileExistenceHandling: options.DoNothingIfExists,
			FileDeletionHandling:  options.DeleteIfExists,
		},
		Index: &index.Config[string]{
			Less:   lessString,
			Logger: logger.NewDevelopment("engine-test"),
		},
	})
	require.Error(t, err)

	indexErr, ok := ignerrors.AsIndexError(err)
	require.True(t, ok)
	assert.Equal(t, ignerrors.ErrorCodeIndexCorrupted, indexErr.Code())
}

func TestIndexedClearEmptiesFileAndIndex(t *testing.T) {
	ctx := context.Background()
	e := newIndexed(t)

	require.NoError(t, e.Set(ctx, "a", "1"))
	require.NoError(t, e.Clear(ctx))

	ok, err := e.ContainsKey(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
}
