//go:build unix

package pagevolume

import (
	"path/filepath"
	"sync/atomic"

	"golang.org/x/sys/unix"

	"github.com/jbstore/jbstore/pkg/fs"
)

// unixPlatform maps a storage file on POSIX systems via golang.org/x/sys/unix.
// Unlike the Windows implementation there is no separate "mapping object"
// to recreate on grow: every mmap call addresses the file descriptor and
// an offset directly, so growth only needs to extend the file.
type unixPlatform struct {
	fd       int
	path     string
	pgSize   uint64
	fileSize atomic.Uint64
	lock     fs.Locker
}

func openPlatform(fsys fs.FS, path string) (platform, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, wrapKind(ErrPathError, InvalidFilePath, "resolve path %s: %v", path, err)
	}

	lock, err := acquireInterprocessLock(fsys, absPath)
	if err != nil {
		return nil, err
	}

	fd, err := unix.Open(absPath, unix.O_RDWR|unix.O_CREAT, 0o644)
	if err != nil {
		_ = lock.Close()
		return nil, wrapKind(ErrOpenError, CannotOpenFile, "open storage file %s: %v", absPath, err)
	}

	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		_ = unix.Close(fd)
		_ = lock.Close()
		return nil, wrapKind(ErrIoError, IoError, "stat storage file %s: %v", absPath, err)
	}

	p := &unixPlatform{
		fd:     fd,
		path:   absPath,
		pgSize: uint64(unix.Getpagesize()),
		lock:   lock,
	}
	p.fileSize.Store(uint64(st.Size))

	return p, nil
}

func (p *unixPlatform) pageSize() uint64 { return p.pgSize }
func (p *unixPlatform) size() uint64     { return p.fileSize.Load() }

func (p *unixPlatform) grow() (uint64, error) {
	newSize := p.fileSize.Load() + p.pgSize
	if err := unix.Ftruncate(p.fd, int64(newSize)); err != nil {
		return 0, wrapKind(ErrIoError, IoError, "grow storage file %s: %v", p.path, err)
	}
	p.fileSize.Store(newSize)
	return newSize, nil
}

func (p *unixPlatform) mapPage(offset uint64) ([]byte, error) {
	if offset%p.pgSize != 0 {
		return nil, wrapKind(ErrLogicError, UnknownError, "offset %d is not page-aligned (page size %d)", offset, p.pgSize)
	}
	if offset+p.pgSize > p.fileSize.Load() {
		return nil, wrapKind(ErrLogicError, UnknownError, "offset %d out of range (size %d)", offset, p.fileSize.Load())
	}

	data, err := unix.Mmap(p.fd, int64(offset), int(p.pgSize), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, wrapKind(ErrIoError, IoError, "mmap page at offset %d: %v", offset, err)
	}
	return data, nil
}

func (p *unixPlatform) unmapPage(view []byte) error {
	if view == nil {
		return nil
	}
	if err := unix.Munmap(view); err != nil {
		return wrapKind(ErrIoError, IoError, "munmap page: %v", err)
	}
	return nil
}

func (p *unixPlatform) close() error {
	lockErr := p.lock.Close()
	fdErr := unix.Close(p.fd)
	if fdErr != nil {
		return wrapKind(ErrIoError, IoError, "close storage file %s: %v", p.path, fdErr)
	}
	if lockErr != nil {
		return wrapKind(ErrIoError, IoError, "release interprocess lock for %s: %v", p.path, lockErr)
	}
	return nil
}
