// Package fs provides filesystem abstractions with interprocess locking.
// Within this module, pagevolume uses it for the interprocess lock that
// guards a storage file; the storage file itself is opened by pagevolume's
// platform layer directly, and mountconfig reads and writes its document
// with os and natefinch/atomic rather than through this package.
//
// The main types are:
//   - [FS]: interface for filesystem operations
//   - [File]: interface for open files (satisfied by [os.File])
//   - [Real]: production implementation using the [os] package
//   - [Chaos]: testing implementation that injects faults on demand
//
// Example usage:
//
//	fsys := fs.NewReal()
//	f, err := fsys.Open("config.json")
//	if err != nil {
//	    return err
//	}
//	defer f.Close()
package fs

import (
	"errors"
	"io"
	"os"
)

// File represents an OS-backed open file descriptor.
//
// This interface is satisfied by [os.File] and can be used with all
// standard library functions that accept [io.Reader], [io.Writer],
// [io.Seeker], or [io.Closer].
//
// Implementations must be safe for concurrent use by multiple goroutines.
type File interface {
	io.ReadWriteCloser
	io.Seeker

	// Fd returns the file descriptor. See [os.File.Fd].
	// Used for low-level operations like [syscall.Flock].
	Fd() uintptr

	Stat() (os.FileInfo, error)
	Sync() error
}

// Locker represents a held interprocess lock. Call [Locker.Close] to
// release it.
type Locker interface {
	io.Closer
}

// ErrWouldBlock is returned by [FS.TryLock] when the lock is already held
// by someone else.
var ErrWouldBlock = errors.New("fs: lock would block")

// FS defines filesystem operations for reading, writing, and managing
// files, plus interprocess locking.
//
// Implementations in this package:
//   - [Real]: production use, wraps the [os] package and [golang.org/x/sys/unix]
//   - [Chaos]: testing use, injects faults on demand
//
// Implementations must be safe for concurrent use by multiple goroutines.
type FS interface {
	// Open opens a file for reading. See [os.Open].
	Open(path string) (File, error)

	// OpenFile opens a file with specified flags and permissions. See
	// [os.OpenFile].
	OpenFile(path string, flag int, perm os.FileMode) (File, error)

	// ReadFile reads an entire file into memory. See [os.ReadFile].
	ReadFile(path string) ([]byte, error)

	// WriteFileAtomic writes data to a file atomically via a temp file
	// plus rename, so readers never observe a partially written file.
	WriteFileAtomic(path string, data []byte, perm os.FileMode) error

	// MkdirAll creates a directory and all parents. See [os.MkdirAll].
	MkdirAll(path string, perm os.FileMode) error

	// Stat returns file info. See [os.Stat].
	Stat(path string) (os.FileInfo, error)

	// Remove deletes a file. See [os.Remove]. No error if the path does
	// not exist.
	Remove(path string) error

	// Lock acquires an exclusive interprocess lock on path, blocking
	// until it is acquired or a deadline expires.
	Lock(path string) (Locker, error)

	// TryLock acquires an exclusive interprocess lock on path without
	// blocking, failing immediately with ErrWouldBlock if another holder
	// exists.
	TryLock(path string) (Locker, error)
}

// Compile-time interface check.
var _ File = (*os.File)(nil)
