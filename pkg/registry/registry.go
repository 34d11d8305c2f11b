// Package registry implements a process-wide, mutex-guarded table mapping
// opaque handles to open physical and virtual volumes. Registry is an
// explicit context object that callers can construct on their own;
// DefaultRegistry is a package-level facade over one shared instance for
// callers (such as the CLI) that don't need an explicit one. Entries are
// refcounted: opening the same physical volume path twice returns the
// same handle with its count bumped, and the underlying volume is only
// closed once the count drops to zero.
package registry

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/jbstore/jbstore/pkg/pagevolume"
	"github.com/jbstore/jbstore/pkg/volume"
)

// Handle is an opaque, time-ordered key identifying an open volume. It
// carries no pointer into process memory, so a stale handle from a closed
// volume is simply a lookup miss rather than a dangling reference.
type Handle uuid.UUID

func (h Handle) String() string { return uuid.UUID(h).String() }

type volumeKind int

const (
	kindPhysical volumeKind = iota
	kindVirtual
)

type entry struct {
	kind     volumeKind
	refCount int
	physical *volume.PhysicalVolume
	virtual  *volume.VirtualVolume
}

// Registry maps Handles to open physical and virtual volumes.
type Registry struct {
	mu       sync.Mutex
	byHandle map[Handle]*entry
	byPath   map[string]Handle
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byHandle: make(map[Handle]*entry),
		byPath:   make(map[string]Handle),
	}
}

// OpenPhysicalVolume opens the physical volume at path with the given
// priority, or returns the already-open volume's handle with its
// refcount bumped if this canonical path is already open in this
// process. Interprocess exclusion is still enforced by the underlying
// storage file's own lock; this dedup only avoids opening the same path
// twice within one process.
func (r *Registry) OpenPhysicalVolume(path string, priority int, cfg pagevolume.Config) (Handle, error) {
	canonical, err := filepath.Abs(path)
	if err != nil {
		return Handle{}, fmt.Errorf("resolve physical volume path %q: %w", path, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byPath[canonical]; ok {
		r.byHandle[existing].refCount++
		return existing, nil
	}

	pv, err := volume.OpenPhysicalVolume(canonical, priority, cfg)
	if err != nil {
		return Handle{}, err
	}

	handle := Handle(uuid.Must(uuid.NewV7()))
	r.byHandle[handle] = &entry{kind: kindPhysical, refCount: 1, physical: pv}
	r.byPath[canonical] = handle

	return handle, nil
}

// OpenVirtualVolume creates a new, empty virtual volume and returns its
// handle. Virtual volumes have no canonical path, so every call creates
// a distinct volume.
func (r *Registry) OpenVirtualVolume() Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	handle := Handle(uuid.Must(uuid.NewV7()))
	r.byHandle[handle] = &entry{kind: kindVirtual, refCount: 1, virtual: volume.NewVirtualVolume()}

	return handle
}

// Physical returns the physical volume for handle.
func (r *Registry) Physical(handle Handle) (*volume.PhysicalVolume, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byHandle[handle]
	if !ok || e.kind != kindPhysical {
		return nil, invalidHandleError(handle)
	}
	return e.physical, nil
}

// Virtual returns the virtual volume for handle.
func (r *Registry) Virtual(handle Handle) (*volume.VirtualVolume, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byHandle[handle]
	if !ok || e.kind != kindVirtual {
		return nil, invalidHandleError(handle)
	}
	return e.virtual, nil
}

// Close releases one reference to handle. A physical volume's backing
// file is closed only once its refcount reaches zero; a virtual volume
// is always closed and removed immediately, since it is never shared.
func (r *Registry) Close(handle Handle) error {
	r.mu.Lock()
	e, ok := r.byHandle[handle]
	if !ok {
		r.mu.Unlock()
		return invalidHandleError(handle)
	}

	e.refCount--
	if e.refCount > 0 && e.kind == kindPhysical {
		r.mu.Unlock()
		return nil
	}

	delete(r.byHandle, handle)
	if e.kind == kindPhysical {
		for path, h := range r.byPath {
			if h == handle {
				delete(r.byPath, path)
				break
			}
		}
	}
	r.mu.Unlock()

	switch e.kind {
	case kindPhysical:
		if err := e.physical.Close(); err != nil {
			return fmt.Errorf("close physical volume: %w", err)
		}
	case kindVirtual:
		return e.virtual.Close()
	}

	return nil
}

// DefaultRegistry is the process-wide facade over a package-level
// Registry, for callers (the CLI) that do not need an explicit context
// object.
var DefaultRegistry = NewRegistry()
