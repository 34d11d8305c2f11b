// Package volume implements the virtual/physical volume layer: a
// PhysicalVolume owns one pagevolume.File and a kv.Store over it; a
// VirtualVolume is a logical namespace of MountPoints that project
// prefixes of one or more PhysicalVolumes under arbitrary key prefixes.
package volume

import (
	"fmt"
	"path/filepath"

	"github.com/jbstore/jbstore/pkg/kv"
	"github.com/jbstore/jbstore/pkg/pagevolume"
)

// PhysicalVolume is one open storage file plus the key/value layer over
// its pages. Priority breaks ties between mount points of equal prefix
// length, highest first.
type PhysicalVolume struct {
	path     string
	priority int
	file     *pagevolume.File
	store    *kv.Store
}

// OpenPhysicalVolume opens (creating if absent) the storage file at path
// and wraps it with a key/value store. path is resolved to an absolute
// path so two different relative spellings of the same file always
// dedupe to the same canonical identity.
func OpenPhysicalVolume(path string, priority int, cfg pagevolume.Config) (*PhysicalVolume, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve physical volume path %q: %w", path, err)
	}

	file, err := pagevolume.Open(abs, cfg)
	if err != nil {
		return nil, err
	}

	return &PhysicalVolume{
		path:     abs,
		priority: priority,
		file:     file,
		store:    kv.Open(file),
	}, nil
}

// Path returns the volume's canonical (absolute) path.
func (pv *PhysicalVolume) Path() string { return pv.path }

// Priority returns the volume's mount-resolution priority.
func (pv *PhysicalVolume) Priority() int { return pv.priority }

// Insert stores value under key in this volume's key/value store.
func (pv *PhysicalVolume) Insert(key, value []byte) error {
	return pv.store.Put(key, value)
}

// Get retrieves the value stored under key.
func (pv *PhysicalVolume) Get(key []byte) ([]byte, error) {
	return pv.store.Get(key)
}

// Delete removes key from this volume's key/value store.
func (pv *PhysicalVolume) Delete(key []byte) error {
	return pv.store.Delete(key)
}

// Grow appends one page to the backing storage file and returns its new
// total size, exposed for the jb REPL's grow command.
func (pv *PhysicalVolume) Grow() (uint64, error) {
	return pv.file.Grow()
}

// Size returns the backing file's size in bytes.
func (pv *PhysicalVolume) Size() uint64 { return pv.file.Size() }

// PageSize returns the backing file's page size.
func (pv *PhysicalVolume) PageSize() uint64 { return pv.file.PageSize() }

// CacheSize and CacheUsed expose the underlying page cache counters, for
// the jb stat CLI subcommand.
func (pv *PhysicalVolume) CacheSize() uint64 { return pv.file.CacheSize() }
func (pv *PhysicalVolume) CacheUsed() uint64 { return pv.file.CacheUsed() }

// Close closes the backing storage file.
func (pv *PhysicalVolume) Close() error {
	return pv.file.Close()
}
