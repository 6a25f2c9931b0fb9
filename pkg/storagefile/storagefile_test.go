package storagefile_test

import (
	"path/filepath"
	"testing"

	"github.com/emberkv/ignite/pkg/options"
	"github.com/emberkv/ignite/pkg/storagefile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAppendReadAll(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.log")

	registry := storagefile.NewRegistry()
	f := storagefile.Open(path, registry)

	require.NoError(t, f.Create(options.DoNothingIfExists))

	off, err := f.Append([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, int64(0), off)

	off, err = f.Append([]byte(" world"))
	require.NoError(t, err)
	assert.Equal(t, int64(5), off)

	all, err := f.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(all))

	assert.Equal(t, int64(11), f.Length())
}

func TestReadAtRange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.log")
	registry := storagefile.NewRegistry()
	f := storagefile.Open(path, registry)

	require.NoError(t, f.Create(options.DoNothingIfExists))
	_, err := f.Append([]byte("0123456789"))
	require.NoError(t, err)

	chunk, err := f.ReadAt(3, 4)
	require.NoError(t, err)
	assert.Equal(t, "3456", string(chunk))
}

func TestReadAtOutOfRange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.log")
	registry := storagefile.NewRegistry()
	f := storagefile.Open(path, registry)

	require.NoError(t, f.Create(options.DoNothingIfExists))
	_, err := f.Append([]byte("abc"))
	require.NoError(t, err)

	_, err = f.ReadAt(10, 1)
	assert.Error(t, err)
}

func TestCreateThrowIfExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.log")
	registry := storagefile.NewRegistry()

	f1 := storagefile.Open(path, registry)
	require.NoError(t, f1.Create(options.DoNothingIfExists))

	f2 := storagefile.Open(path, registry)
	err := f2.Create(options.ThrowIfExists)
	assert.Error(t, err)
}

func TestCreateOverwriteTruncates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.log")
	registry := storagefile.NewRegistry()

	f1 := storagefile.Open(path, registry)
	require.NoError(t, f1.Create(options.DoNothingIfExists))
	_, err := f1.Append([]byte("stale data"))
	require.NoError(t, err)
	require.NoError(t, f1.Close())

	f2 := storagefile.Open(path, registry)
	require.NoError(t, f2.Create(options.Overwrite))
	assert.Equal(t, int64(0), f2.Length())
}

func TestDeleteThrowIfNotExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "missing.log")
	registry := storagefile.NewRegistry()

	f := storagefile.Open(path, registry)
	err := f.Delete(options.ThrowIfNotExists)
	assert.Error(t, err)
}

func TestDeleteIfExistsIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "missing.log")
	registry := storagefile.NewRegistry()

	f := storagefile.Open(path, registry)
	assert.NoError(t, f.Delete(options.DeleteIfExists))
}

func TestReplaceContentRewritesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.log")
	registry := storagefile.NewRegistry()

	f := storagefile.Open(path, registry)
	require.NoError(t, f.Create(options.DoNothingIfExists))
	_, err := f.Append([]byte("old content here"))
	require.NoError(t, err)

	require.NoError(t, f.ReplaceContent([]byte("new")))
	assert.Equal(t, int64(3), f.Length())

	all, err := f.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "new", string(all))

	off, err := f.Append([]byte("!"))
	require.NoError(t, err)
	assert.Equal(t, int64(3), off)
}

func TestDoNothingIfExistsPreservesContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.log")
	registry := storagefile.NewRegistry()

	f1 := storagefile.Open(path, registry)
	require.NoError(t, f1.Create(options.DoNothingIfExists))
	_, err := f1.Append([]byte("persisted"))
	require.NoError(t, err)
	require.NoError(t, f1.Close())

	f2 := storagefile.Open(path, registry)
	require.NoError(t, f2.Create(options.DoNothingIfExists))
	assert.Equal(t, int64(len("persisted")), f2.Length())

	all, err := f2.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "persisted", string(all))
}
