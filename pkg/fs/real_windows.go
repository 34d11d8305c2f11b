//go:build windows

package fs

import (
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/windows"
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
	ol := new(windows.Overlapped)
	_ = windows.UnlockFileEx(windows.Handle(l.file.Fd()), 0, 1, 0, ol)
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

func lockFileEx(file *os.File, flags uint32) error {
	ol := new(windows.Overlapped)
	return windows.LockFileEx(windows.Handle(file.Fd()), flags, 0, 1, 0, ol)
}

// TryLock acquires an exclusive non-blocking range lock on path via
// LockFileEx, the Windows analogue of flock(LOCK_EX|LOCK_NB).
func (r *Real) TryLock(path string) (Locker, error) {
	file, err := openLockFile(path)
	if err != nil {
		return nil, err
	}

	err = lockFileEx(file, windows.LOCKFILE_EXCLUSIVE_LOCK|windows.LOCKFILE_FAIL_IMMEDIATELY)
	if err != nil {
		file.Close()
		if err == windows.ERROR_LOCK_VIOLATION {
			return nil, ErrWouldBlock
		}
		return nil, err
	}

	return &realLock{path: path, file: file}, nil
}

// Lock acquires an exclusive blocking range lock on path, blocking until
// acquired or lockTimeout elapses.
func (r *Real) Lock(path string) (Locker, error) {
	file, err := openLockFile(path)
	if err != nil {
		return nil, err
	}

	done := make(chan error, 1)
	go func() { done <- lockFileEx(file, windows.LOCKFILE_EXCLUSIVE_LOCK) }()

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
