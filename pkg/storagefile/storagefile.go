// Package storagefile provides a single-file I/O abstraction used by the
// segment and compaction layers: open/create a file under a creation
// policy, append to it, read a byte range or the whole file, and delete it
// under a deletion policy — with every operation on a given path serialized
// against concurrent callers.
//
// It follows the open-with-O_CREATE|O_RDWR|O_APPEND-then-seek-to-end idiom
// for learning a file's current size, generalized to any path rather than
// hard-wiring a single segment directory layout, with per-path locking
// injected rather than held as a global.
package storagefile

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/natefinch/atomic"

	"github.com/emberkv/ignite/pkg/errors"
	"github.com/emberkv/ignite/pkg/filesys"
	"github.com/emberkv/ignite/pkg/options"
)

// PathLocker hands out a mutex for a given absolute path, guaranteeing the
// same *sync.Mutex is returned for the same path across calls. It is
// injectable rather than a package-level global so multiple independent
// Ignite instances (or tests) never share lock state by accident.
type PathLocker interface {
	Lock(path string) *sync.Mutex
}

// Registry is the default PathLocker: a map of path to mutex, itself guarded
// by a mutex for safe concurrent registration.
type Registry struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewRegistry creates an empty, ready-to-use Registry.
func NewRegistry() *Registry {
	return &Registry{locks: make(map[string]*sync.Mutex)}
}

// Lock returns the mutex associated with path, creating one on first use.
func (r *Registry) Lock(path string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.locks[path]
	if !ok {
		m = &sync.Mutex{}
		r.locks[path] = m
	}
	return m
}

// File wraps a single on-disk file, serializing operations against other
// File values that share the same PathLocker and path.
type File struct {
	path   string
	locker PathLocker

	mu     sync.Mutex // guards handle/size for this specific File value
	handle *os.File
	size   int64
}

// Open prepares a File for path without creating it. Call Create before
// Append/ReadAll/ReadAt if the file might not exist yet.
func Open(path string, locker PathLocker) *File {
	return &File{path: path, locker: locker}
}

// Create opens or creates the file at f's path per the given policy,
// positions the internal size tracker at the current end of file, and
// leaves the handle open for subsequent Append/Read calls.
func (f *File) Create(handling options.FileExistenceHandling) error {
	pathLock := f.locker.Lock(f.path)
	pathLock.Lock()
	defer pathLock.Unlock()

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.handle != nil {
		if err := f.handle.Close(); err != nil {
			return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to close previously open file").
				WithPath(f.path)
		}
		f.handle = nil
	}

	if handling == options.ThrowIfExists {
		exists, err := filesys.Exists(f.path)
		if err != nil {
			return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to stat file").WithPath(f.path)
		}
		if exists {
			return errors.NewAlreadyExistsError(f.path)
		}
	}

	flags := os.O_CREATE | os.O_RDWR | os.O_APPEND
	if handling == options.Overwrite {
		flags |= os.O_TRUNC
	}

	handle, err := os.OpenFile(f.path, flags, 0644)
	if err != nil {
		return errors.ClassifyFileOpenError(err, f.path, filepath.Base(f.path)).(*errors.StorageError)
	}

	offset, err := handle.Seek(0, io.SeekEnd)
	if err != nil {
		_ = handle.Close()
		return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to seek to end of file").
			WithPath(f.path).WithFileName(filepath.Base(f.path))
	}

	f.handle = handle
	f.size = offset
	return nil
}

// Append writes data to the end of the file and returns the offset at
// which it was written (the size before the write), so the caller can
// record a RecordLocator.
func (f *File) Append(data []byte) (offset int64, err error) {
	pathLock := f.locker.Lock(f.path)
	pathLock.Lock()
	defer pathLock.Unlock()

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.handle == nil {
		return 0, errors.NewStorageError(nil, errors.ErrorCodeIO, "append on unopened file").WithPath(f.path)
	}

	offset = f.size
	n, err := f.handle.Write(data)
	if err != nil {
		return offset, errors.NewStorageError(err, errors.ErrorCodeWriteFailed, "failed to append to file").
			WithPath(f.path).WithFileName(filepath.Base(f.path)).WithOffset(int(offset))
	}

	f.size += int64(n)
	return offset, nil
}

// Sync flushes the file's in-kernel buffers to stable storage.
func (f *File) Sync() error {
	pathLock := f.locker.Lock(f.path)
	pathLock.Lock()
	defer pathLock.Unlock()

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.handle == nil {
		return nil
	}
	if err := f.handle.Sync(); err != nil {
		return errors.ClassifySyncError(err, filepath.Base(f.path), f.path, int(f.size)).(*errors.StorageError)
	}
	return nil
}

// ReadAt reads length bytes starting at offset. It fails with an OutOfRange
// error if offset is at or past the current file size.
func (f *File) ReadAt(offset, length int64) ([]byte, error) {
	pathLock := f.locker.Lock(f.path)
	pathLock.Lock()
	defer pathLock.Unlock()

	f.mu.Lock()
	size := f.size
	handle := f.handle
	f.mu.Unlock()

	if handle == nil {
		return nil, errors.NewStorageError(nil, errors.ErrorCodeIO, "read on unopened file").WithPath(f.path)
	}
	if offset >= size {
		return nil, errors.NewOutOfRangeError(offset, size)
	}

	buf := make([]byte, length)
	n, err := handle.ReadAt(buf, offset)
	if err != nil && err != io.EOF {
		return nil, errors.NewStorageError(err, errors.ErrorCodeReadFailed, "failed to read byte range").
			WithPath(f.path).WithFileName(filepath.Base(f.path)).WithOffset(int(offset))
	}
	return buf[:n], nil
}

// ReadAll reads the file's entire current content from the beginning.
func (f *File) ReadAll() ([]byte, error) {
	pathLock := f.locker.Lock(f.path)
	pathLock.Lock()
	defer pathLock.Unlock()

	f.mu.Lock()
	handle := f.handle
	f.mu.Unlock()

	if handle == nil {
		return nil, errors.NewStorageError(nil, errors.ErrorCodeIO, "read on unopened file").WithPath(f.path)
	}

	data, err := filesys.ReadFile(f.path)
	if err != nil {
		return nil, errors.NewStorageError(err, errors.ErrorCodeReadFailed, "failed to read entire file").
			WithPath(f.path).WithFileName(filepath.Base(f.path))
	}
	return data, nil
}

// ReplaceContent atomically overwrites the file with data (temp-file-then-
// rename, so concurrent readers never observe a partially written result),
// then reopens the handle positioned at the new end of file. Used by
// compaction to rewrite a segment's survivors in one step.
func (f *File) ReplaceContent(data []byte) error {
	pathLock := f.locker.Lock(f.path)
	pathLock.Lock()
	defer pathLock.Unlock()

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.handle != nil {
		_ = f.handle.Close()
		f.handle = nil
	}

	if err := atomic.WriteFile(f.path, bytes.NewReader(data)); err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to atomically replace file content").
			WithPath(f.path)
	}

	handle, err := os.OpenFile(f.path, os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return errors.ClassifyFileOpenError(err, f.path, filepath.Base(f.path)).(*errors.StorageError)
	}

	offset, err := handle.Seek(0, io.SeekEnd)
	if err != nil {
		_ = handle.Close()
		return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to seek to end after replace").
			WithPath(f.path)
	}

	f.handle = handle
	f.size = offset
	return nil
}

// Length returns the current known size of the file in bytes.
func (f *File) Length() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.size
}

// Delete closes and removes the file per the given policy.
func (f *File) Delete(handling options.FileDeletionHandling) error {
	pathLock := f.locker.Lock(f.path)
	pathLock.Lock()
	defer pathLock.Unlock()

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.handle != nil {
		_ = f.handle.Close()
		f.handle = nil
	}

	if handling == options.ThrowIfNotExists {
		exists, err := filesys.Exists(f.path)
		if err != nil {
			return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to stat file").WithPath(f.path)
		}
		if !exists {
			return errors.NewNotFoundError(f.path)
		}
	}

	if err := filesys.DeleteFile(f.path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to delete file").WithPath(f.path)
	}

	f.size = 0
	return nil
}

// Close releases the underlying file handle without deleting the file.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.handle == nil {
		return nil
	}
	err := f.handle.Close()
	f.handle = nil
	return err
}
