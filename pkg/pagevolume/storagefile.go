// Package pagevolume implements a per-file page cache and mmap subsystem:
// a platform file binding (PF), a reader-biased resize mutex (RM), a
// hashed bucket page cache (PC) of tri-state mapped pages (MP), composed
// into a single storage file (SF) value, [File].
//
// A [File] owns exactly one backing file on disk, guarded against
// concurrent opens from other processes by a named interprocess lock
// derived from the file's absolute path. Pages are mapped lazily and
// reference-counted; the file only ever grows, one page at a time, and
// growth is safe to run concurrently with any number of goroutines
// holding page locks.
package pagevolume

import (
	"github.com/jbstore/jbstore/pkg/fs"
)

// File is one open storage file: the storage_file composition of PF, RM,
// PC and MP. The zero value is not usable; construct with Open.
type File struct {
	platform platform
	resizeMu *resizeMutex
	cache    *pageCache
	cfg      Config
	path     string
}

// Open opens or creates the storage file at path. If newly created, the
// file is immediately grown by one page so Size() > 0 always holds for a
// successfully opened File.
//
// Only one File may be open over a given path at a time, enforced by an
// interprocess lock; a second attempt (in this process or another) fails
// with an error wrapping ErrBusyError.
func Open(path string, cfg Config) (*File, error) {
	return OpenFS(fs.NewReal(), path, cfg)
}

// OpenFS is like Open but takes an explicit fs.FS, for tests that need
// fault injection via fs.Chaos.
func OpenFS(fsys fs.FS, path string, cfg Config) (*File, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	plat, err := openPlatform(fsys, path)
	if err != nil {
		return nil, err
	}

	f := &File{
		platform: plat,
		resizeMu: newResizeMutex(cfg.SharedLockCount, cfg.SpinCountPerLock),
		cache:    newPageCache(plat.pageSize(), cfg),
		cfg:      cfg,
		path:     path,
	}

	if f.platform.size() == 0 {
		if _, err := f.grow(); err != nil {
			_ = f.platform.close()
			return nil, err
		}
	}

	return f, nil
}

// PageSize returns the OS allocation granularity this file maps pages at.
func (f *File) PageSize() uint64 {
	return f.platform.pageSize()
}

// Size returns the current file size in bytes.
func (f *File) Size() uint64 {
	return f.platform.size()
}

// CacheSize returns the number of mapped-page entries ever carved from the
// cache's arena.
func (f *File) CacheSize() uint64 {
	return f.cache.Size()
}

// CacheUsed returns the number of mapped-page entries currently present in
// a bucket (as opposed to sitting on the free list).
func (f *File) CacheUsed() uint64 {
	return f.cache.Used()
}

// grow extends the file by exactly one page under the resize mutex's
// exclusive hold, so no page lock can be mapping a view concurrently.
func (f *File) grow() (uint64, error) {
	f.resizeMu.lock()
	defer f.resizeMu.unlock()
	return f.platform.grow()
}

// Grow extends the file by exactly one page and returns the new size.
func (f *File) Grow() (uint64, error) {
	return f.grow()
}

// GetPage returns the Page for offset, mapping it lazily on first access
// and creating a cache entry if none exists yet. The caller must call
// [Page.Release] exactly once when done with it.
func (f *File) GetPage(offset uint64) (*Page, error) {
	mp, err := f.cache.getMappedPage(offset)
	if err != nil {
		return nil, err
	}
	return &Page{file: f, mp: mp}, nil
}

// Close releases the platform file handle and interprocess lock. It does
// not wait for outstanding Page handles to be released; callers must
// ensure all pages are released before closing.
func (f *File) Close() error {
	return f.platform.close()
}

// Page is a handle to one mapped page of a File, obtained via
// [File.GetPage]. It is not safe for concurrent use by multiple
// goroutines; each goroutine should obtain its own Page via GetPage.
type Page struct {
	file   *File
	mp     *mappedPage
	locked bool
}

// Lock maps the page's view if it is not already mapped, and returns the
// page's bytes. Every call to Lock must be paired with a call to Unlock.
func (p *Page) Lock() ([]byte, error) {
	if err := p.mp.lock(p.file); err != nil {
		return nil, err
	}
	p.locked = true
	return p.mp.data(), nil
}

// Unlock releases the hold acquired by Lock.
func (p *Page) Unlock() {
	if !p.locked {
		return
	}
	p.locked = false
	p.mp.unlock(p.file)
}

// Release returns the page's cache slot reference. It must be called
// exactly once per Page, after any Lock/Unlock pairs are balanced.
func (p *Page) Release() {
	p.mp.release()
}

// Offset returns the byte offset in the file this page was obtained for.
func (p *Page) Offset() uint64 {
	return p.mp.offset
}
