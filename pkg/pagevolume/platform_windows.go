//go:build windows

package pagevolume

import (
	"path/filepath"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/windows"

	"github.com/jbstore/jbstore/pkg/fs"
)

// windowsPlatform maps a storage file via golang.org/x/sys/windows. Unlike
// POSIX, Windows requires an explicit file mapping object
// (CreateFileMapping) that must be torn down and recreated whenever the
// file's size changes, before any subsequent MapViewOfFile call can see
// the new size.
type windowsPlatform struct {
	path     string
	fd       windows.Handle
	pgSize   uint64
	fileSize atomic.Uint64
	lock     fs.Locker

	// mapMu serializes recreation of mapping against concurrent mapPage
	// calls; grow() itself is already serialized by the resize mutex at
	// the storagefile layer, but mapPage observes mapping under this
	// mutex to avoid racing a grow() that is mid-recreation.
	mapMu   sync.RWMutex
	mapping windows.Handle
}

func getPageSize() uint64 {
	var info windows.SystemInfo
	windows.GetSystemInfo(&info)
	return uint64(info.AllocationGranularity)
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

	pathPtr, err := windows.UTF16PtrFromString(absPath)
	if err != nil {
		_ = lock.Close()
		return nil, wrapKind(ErrPathError, InvalidFilePath, "encode path %s: %v", absPath, err)
	}

	fd, err := windows.CreateFile(
		pathPtr,
		windows.GENERIC_READ|windows.GENERIC_WRITE,
		0,
		nil,
		windows.OPEN_ALWAYS,
		windows.FILE_ATTRIBUTE_NORMAL,
		0,
	)
	if err != nil {
		_ = lock.Close()
		return nil, wrapKind(ErrOpenError, CannotOpenFile, "open storage file %s: %v", absPath, err)
	}

	var fi windows.ByHandleFileInformation
	if err := windows.GetFileInformationByHandle(fd, &fi); err != nil {
		_ = windows.CloseHandle(fd)
		_ = lock.Close()
		return nil, wrapKind(ErrIoError, IoError, "stat storage file %s: %v", absPath, err)
	}

	p := &windowsPlatform{
		path:   absPath,
		fd:     fd,
		pgSize: getPageSize(),
	}
	p.fileSize.Store(uint64(fi.FileSizeHigh)<<32 | uint64(fi.FileSizeLow))
	p.lock = lock

	if p.fileSize.Load() > 0 {
		if err := p.createMapping(); err != nil {
			_ = windows.CloseHandle(fd)
			_ = lock.Close()
			return nil, err
		}
	}

	return p, nil
}

func (p *windowsPlatform) createMapping() error {
	mapping, err := windows.CreateFileMapping(p.fd, nil, windows.PAGE_READWRITE, 0, 0, nil)
	if err != nil {
		return wrapKind(ErrIoError, IoError, "create file mapping for %s: %v", p.path, err)
	}
	p.mapping = mapping
	return nil
}

func (p *windowsPlatform) pageSize() uint64 { return p.pgSize }
func (p *windowsPlatform) size() uint64     { return p.fileSize.Load() }

func (p *windowsPlatform) grow() (uint64, error) {
	p.mapMu.Lock()
	defer p.mapMu.Unlock()

	if p.mapping != 0 {
		_ = windows.CloseHandle(p.mapping)
		p.mapping = 0
	}

	newSize := p.fileSize.Load() + p.pgSize
	newPos, err := windows.SetFilePointer(p.fd, int32(newSize), nil, windows.FILE_BEGIN)
	if err != nil || uint64(newPos) != newSize {
		return 0, wrapKind(ErrIoError, IoError, "seek storage file %s: %v", p.path, err)
	}
	if err := windows.SetEndOfFile(p.fd); err != nil {
		return 0, wrapKind(ErrIoError, IoError, "resize storage file %s: %v", p.path, err)
	}

	p.fileSize.Store(newSize)

	if err := p.createMapping(); err != nil {
		return 0, err
	}

	return newSize, nil
}

func (p *windowsPlatform) mapPage(offset uint64) ([]byte, error) {
	if offset%p.pgSize != 0 {
		return nil, wrapKind(ErrLogicError, UnknownError, "offset %d is not page-aligned (page size %d)", offset, p.pgSize)
	}
	if offset+p.pgSize > p.fileSize.Load() {
		return nil, wrapKind(ErrLogicError, UnknownError, "offset %d out of range (size %d)", offset, p.fileSize.Load())
	}

	p.mapMu.RLock()
	mapping := p.mapping
	p.mapMu.RUnlock()

	addr, err := windows.MapViewOfFile(mapping, windows.FILE_MAP_WRITE, uint32(offset>>32), uint32(offset), uintptr(p.pgSize))
	if err != nil {
		return nil, wrapKind(ErrIoError, IoError, "map view of file at offset %d: %v", offset, err)
	}

	return unsafeViewFromAddr(addr, int(p.pgSize)), nil
}

func (p *windowsPlatform) unmapPage(view []byte) error {
	if view == nil {
		return nil
	}
	addr := addrOfView(view)
	if err := windows.UnmapViewOfFile(addr); err != nil {
		return wrapKind(ErrIoError, IoError, "unmap view of file: %v", err)
	}
	return nil
}

func (p *windowsPlatform) close() error {
	if p.mapping != 0 {
		_ = windows.CloseHandle(p.mapping)
	}
	lockErr := p.lock.Close()
	fdErr := windows.CloseHandle(p.fd)
	if fdErr != nil {
		return wrapKind(ErrIoError, IoError, "close storage file %s: %v", p.path, fdErr)
	}
	if lockErr != nil {
		return wrapKind(ErrIoError, IoError, "release interprocess lock for %s: %v", p.path, lockErr)
	}
	return nil
}
