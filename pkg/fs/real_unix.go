//go:build unix

package fs

import (
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"
)

const (
	lockTimeout = 2 * time.Second
	lockPerms   = 0o644
	dirPerms    = 0o755
)

type realLock struct {
	path string
	file *os.File
}

func (l *realLock) Close() error {
	if l.file == nil {
		return nil
	}
	_ = unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	err := l.file.Close()
	l.file = nil
	return err
}

func openLockFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), dirPerms); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_RDWR, lockPerms)
}

// TryLock acquires an advisory flock on path without blocking.
func (r *Real) TryLock(path string) (Locker, error) {
	file, err := openLockFile(path)
	if err != nil {
		return nil, err
	}

	if err := unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		file.Close()
		if err == unix.EWOULDBLOCK {
			return nil, ErrWouldBlock
		}
		return nil, err
	}

	return &realLock{path: path, file: file}, nil
}

// Lock acquires an advisory flock on path, blocking until acquired or
// lockTimeout elapses.
func (r *Real) Lock(path string) (Locker, error) {
	file, err := openLockFile(path)
	if err != nil {
		return nil, err
	}

	fd := int(file.Fd())
	done := make(chan error, 1)
	go func() { done <- unix.Flock(fd, unix.LOCK_EX) }()

	select {
	case err := <-done:
		if err != nil {
			file.Close()
			return nil, err
		}
		return &realLock{path: path, file: file}, nil
	case <-time.After(lockTimeout):
		file.Close()
		return nil, os.ErrDeadlineExceeded
	}
}
