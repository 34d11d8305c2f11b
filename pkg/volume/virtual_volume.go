package volume

import "sync"

// VirtualVolume is a logical namespace projecting subtrees of one or more
// PhysicalVolumes under arbitrary key prefixes via MountPoints. It owns
// mount resolution and dispatch directly: an operation's key is matched
// against every mounted prefix, the longest match wins, and the call is
// forwarded to that mount's PhysicalVolume.
type VirtualVolume struct {
	mu     sync.RWMutex
	mounts []*MountPoint
	status Status
}

// NewVirtualVolume creates an empty virtual volume in StatusOk.
func NewVirtualVolume() *VirtualVolume {
	return &VirtualVolume{}
}

// Mount adds mp to the volume's set of mount points.
func (vv *VirtualVolume) Mount(mp *MountPoint) {
	vv.mu.Lock()
	defer vv.mu.Unlock()
	vv.mounts = append(vv.mounts, mp)
}

// Status reports the volume's coarse health.
func (vv *VirtualVolume) Status() Status {
	vv.mu.RLock()
	defer vv.mu.RUnlock()
	return vv.status
}

// SetStatus updates the volume's health.
func (vv *VirtualVolume) SetStatus(s Status) {
	vv.mu.Lock()
	defer vv.mu.Unlock()
	vv.status = s
}

// resolve finds the mount point whose logical prefix matches key, the
// longest prefix winning and ties broken by physical-volume priority,
// highest first.
func (vv *VirtualVolume) resolve(key string) (*MountPoint, string, bool) {
	vv.mu.RLock()
	defer vv.mu.RUnlock()

	var best *MountPoint
	var bestPhysicalKey string

	for _, mp := range vv.mounts {
		physicalKey, ok := mp.resolve(key)
		if !ok {
			continue
		}
		if best == nil ||
			len(mp.LogicalPath()) > len(best.LogicalPath()) ||
			(len(mp.LogicalPath()) == len(best.LogicalPath()) && mp.Priority() > best.Priority()) {
			best = mp
			bestPhysicalKey = physicalKey
		}
	}

	if best == nil {
		return nil, "", false
	}
	return best, bestPhysicalKey, true
}

// Insert resolves key's mount point and stores value there.
func (vv *VirtualVolume) Insert(key []byte, value []byte) error {
	if vv.Status() == StatusClosed {
		return ErrVolumeClosed
	}
	mp, physicalKey, ok := vv.resolve(string(key))
	if !ok {
		return ErrNoMountPoint
	}
	return mp.PhysicalVolume().Insert([]byte(physicalKey), value)
}

// Get resolves key's mount point and retrieves its value.
func (vv *VirtualVolume) Get(key []byte) ([]byte, error) {
	if vv.Status() == StatusClosed {
		return nil, ErrVolumeClosed
	}
	mp, physicalKey, ok := vv.resolve(string(key))
	if !ok {
		return nil, ErrNoMountPoint
	}
	return mp.PhysicalVolume().Get([]byte(physicalKey))
}

// Delete resolves key's mount point and removes its value there.
func (vv *VirtualVolume) Delete(key []byte) error {
	if vv.Status() == StatusClosed {
		return ErrVolumeClosed
	}
	mp, physicalKey, ok := vv.resolve(string(key))
	if !ok {
		return ErrNoMountPoint
	}
	return mp.PhysicalVolume().Delete([]byte(physicalKey))
}

// Close marks the volume Closed. It does not close the underlying
// physical volumes, which may be shared with other virtual volumes via
// the registry.
func (vv *VirtualVolume) Close() error {
	vv.SetStatus(StatusClosed)
	return nil
}
