package pagevolume

// platform is the per-file OS binding: interprocess exclusion, file
// open/grow, and page-level mmap/munmap. Exactly one implementation is
// compiled in depending on GOOS, see platform_unix.go and
// platform_windows.go.
type platform interface {
	// pageSize returns the OS allocation granularity used as this file's
	// page size.
	pageSize() uint64

	// size returns the current file size in bytes.
	size() uint64

	// grow extends the file by exactly one page and returns the new
	// size. Callers must hold the resize mutex exclusively.
	grow() (uint64, error)

	// mapPage returns a byte slice backed by a page-aligned mmap of
	// [offset, offset+pageSize). offset must be page-aligned and within
	// the current file size, or ErrLogicError is returned.
	mapPage(offset uint64) ([]byte, error)

	// unmapPage releases a view previously returned by mapPage.
	unmapPage(view []byte) error

	// close releases the platform's file handle and interprocess lock.
	close() error
}
