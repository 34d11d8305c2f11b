package pagevolume

import (
	"runtime"
	"sync/atomic"
)

// mapped page lock states. A tri-state protocol and a use count share a
// single signed counter: -1 means no mapping exists, 0 means one goroutine
// is currently creating it, and any value >= 1 means the page is mapped
// and that many goroutines are relying on the view staying valid.
const (
	stateUnlocked   int32 = -1
	stateLocking    int32 = 0
	stateLockedOnce int32 = 1
)

// mappedPage is one entry of the page cache's arena. It is never freed
// individually; once carved out of the arena it is only ever recycled onto
// the free list and reinitialized in place, so its address is stable for
// the lifetime of the owning pageCache.
type mappedPage struct {
	cache      *pageCache
	arenaIndex uint64

	offset uint64

	// next links this entry into whichever chain currently owns it: a
	// page cache bucket, or the free list. It is a tagged slot value, see
	// slot.go.
	next atomic.Uint64

	refCount  atomic.Int64
	lockCount atomic.Int32

	// view is only valid to read while lockCount >= stateLockedOnce and
	// only ever mutated by the goroutine transitioning the lock state,
	// so no separate synchronization protects it.
	view []byte
}

func (p *mappedPage) addRef() {
	p.refCount.Add(1)
}

// release drops one reference; when it was the last one, the page is
// handed back to the cache's free list.
func (p *mappedPage) release() {
	if p.refCount.Add(-1) == 0 {
		p.cache.markPageAsUnused(p)
	}
}

// lock maps the page's view on first use and blocks until any concurrent
// mapper has published it, incrementing the caller's hold count. Every
// successful lock must be paired with a call to unlock.
func (p *mappedPage) lock(f *File) error {
	spinBudget := f.cfg.PageLockSpinCount

	for {
		prev := p.lockCount.Load()
		if prev >= stateLockedOnce {
			if p.lockCount.CompareAndSwap(prev, prev+1) {
				return nil
			}
			continue
		}

		if prev == stateUnlocked && p.lockCount.CompareAndSwap(prev, stateLocking) {
			f.resizeMu.lockShared(p.offset)

			view, err := f.platform.mapPage(p.offset)
			if err != nil {
				f.resizeMu.unlockShared(p.offset)
				p.lockCount.Store(stateUnlocked)
				return err
			}

			p.view = view
			p.lockCount.Store(stateLockedOnce)
			return nil
		}

		// Not the mapper. Wait for the in-flight mapper to publish, or
		// for it to have failed and reset the state back to unlocked, then
		// retry from the top: either joining the published mapping or
		// becoming the mapper ourselves. Re-reading the live counter
		// (rather than the stale prev value the source captures once) is
		// what makes this wait terminate: see spec notes on the
		// original's frozen-condition spin loop.
		spin := uint64(1)
		failed := false
		for {
			cur := p.lockCount.Load()
			if cur >= stateLockedOnce {
				break
			}
			if cur == stateUnlocked {
				failed = true
				break
			}
			if spin%spinBudget == 0 {
				runtime.Gosched()
			}
			spin++
		}

		if failed {
			continue
		}
	}
}

// unlock releases one hold acquired by lock. When it is the last hold, the
// view is unmapped and the resize mutex's shared hold taken by the mapper
// is released.
func (p *mappedPage) unlock(f *File) {
	prev := p.lockCount.Add(-1) + 1

	if prev == stateLockedOnce {
		view := p.view
		p.view = nil
		p.lockCount.Store(stateUnlocked)

		// Best-effort: unmap failures are not actionable by the caller.
		_ = f.platform.unmapPage(view)

		f.resizeMu.unlockShared(p.offset)
	}
}

// data returns the page's mapped bytes. Valid only while the caller holds
// the lock acquired via lock.
func (p *mappedPage) data() []byte {
	return p.view
}
