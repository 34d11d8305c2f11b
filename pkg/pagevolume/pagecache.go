package pagevolume

import (
	"runtime"
	"sync/atomic"
)

// pageCache is the per-file hashed bucket table of mapped pages. Every
// bucket head, and every mappedPage.next, is a tagged slot (see slot.go)
// protected by hand-over-hand ownership: a goroutine claims a slot by
// setting its OWNED bit, reads through it, and only releases the
// previously-owned slot once the next one is safely owned. This keeps the
// whole chain walkable by concurrent goroutines without a single lock ever
// covering more than one link at a time.
type pageCache struct {
	buckets []atomic.Uint64
	free    atomic.Uint64

	arena []mappedPage
	size  atomic.Uint64
	used  atomic.Uint64

	pageSize uint64
	cfg      Config
}

func newPageCache(pageSize uint64, cfg Config) *pageCache {
	pc := &pageCache{
		buckets:  make([]atomic.Uint64, cfg.BucketCount),
		arena:    make([]mappedPage, cfg.PageCacheCapacity),
		pageSize: pageSize,
		cfg:      cfg,
	}
	return pc
}

func (pc *pageCache) bucketIndex(offset, pageSize uint64) uint64 {
	return (offset / pageSize) % uint64(len(pc.buckets))
}

// acquireSlot spins until it can set the OWNED bit on *p, returning the
// slot's value from just before it did so.
func acquireSlot(p *atomic.Uint64, spinBudget uint64) uint64 {
	spin := uint64(1)
	for {
		old := p.Load()
		if !isOwned(old) {
			if p.CompareAndSwap(old, old|ownedBit) {
				return old
			}
			continue
		}
		if spin%spinBudget == 0 {
			runtime.Gosched()
		}
		spin++
	}
}

// getMappedPage returns the cache entry for offset, creating one if it does
// not already exist. The returned page has one reference held on behalf of
// the caller, which must eventually call release.
func (pc *pageCache) getMappedPage(offset uint64) (*mappedPage, error) {
	bucket := pc.bucketIndex(offset, pc.pageSize)

	pCurrent := &pc.buckets[bucket]
	var pPrevious *atomic.Uint64
	var previousRaw uint64

	for {
		currentRaw := acquireSlot(pCurrent, pc.cfg.BucketSpinCount)

		if pPrevious != nil {
			pPrevious.Store(previousRaw)
		}

		idx, ok := untagSlot(currentRaw)

		switch {
		case ok && pc.arena[idx].offset == offset:
			pg := &pc.arena[idx]
			pg.addRef()
			pCurrent.Store(currentRaw)
			return pg, nil

		case !ok || pc.arena[idx].offset > offset:
			pg, err := pc.insertBefore(offset, currentRaw)
			if err != nil {
				pCurrent.Store(currentRaw)
				return nil, err
			}
			pc.used.Add(1)
			pCurrent.Store(tagSlot(pg.arenaIndex))
			return pg, nil

		default:
			pPrevious = pCurrent
			previousRaw = currentRaw
			pCurrent = &pc.arena[idx].next
		}
	}
}

// insertBefore carves or recycles a mappedPage for offset and links it in
// front of successorRaw (the slot value read at the current chain
// position). The caller is responsible for publishing the new slot value.
func (pc *pageCache) insertBefore(offset uint64, successorRaw uint64) (*mappedPage, error) {
	pg, err := pc.popFreeOrCarve()
	if err != nil {
		return nil, err
	}

	pg.offset = offset
	pg.view = nil
	pg.refCount.Store(1)
	pg.lockCount.Store(stateUnlocked)
	pg.next.Store(successorRaw)

	return pg, nil
}

// popFreeOrCarve pops the free list head, or carves a fresh entry out of
// the arena if the free list is empty. Fails with Overloaded if the arena
// is exhausted.
func (pc *pageCache) popFreeOrCarve() (*mappedPage, error) {
	for {
		head := pc.free.Load()
		idx, ok := untagSlot(head)
		if ok {
			next := pc.arena[idx].next.Load()
			if pc.free.CompareAndSwap(head, next) {
				return &pc.arena[idx], nil
			}
			continue
		}

		n := pc.size.Add(1)
		if n > uint64(len(pc.arena)) {
			pc.size.Add(^uint64(0))
			return nil, wrapKind(ErrExhausted, Overloaded, "page cache exceeded capacity of %d pages", len(pc.arena))
		}

		idx = n - 1
		pg := &pc.arena[idx]
		pg.arenaIndex = idx
		pg.cache = pc
		return pg, nil
	}
}

// pushFree returns pg to the front of the free list.
func (pc *pageCache) pushFree(pg *mappedPage) {
	for {
		head := pc.free.Load()
		pg.next.Store(head)
		if pc.free.CompareAndSwap(head, tagSlot(pg.arenaIndex)) {
			return
		}
	}
}

// markPageAsUnused unlinks page from its bucket and returns it to the free
// list, unless a concurrent getMappedPage call has resurrected it (bumped
// its reference count back up) in the meantime.
func (pc *pageCache) markPageAsUnused(page *mappedPage) {
	bucket := pc.bucketIndex(page.offset, pc.pageSize)

	pCurrent := &pc.buckets[bucket]
	var pPrevious *atomic.Uint64
	var previousRaw uint64

	for {
		currentRaw := acquireSlot(pCurrent, pc.cfg.BucketSpinCount)

		if pPrevious != nil {
			pPrevious.Store(previousRaw)
		}

		idx, ok := untagSlot(currentRaw)
		if !ok {
			// The page we were asked to remove is not reachable from
			// its bucket. This cannot happen unless a caller released a
			// page twice; back off and leave the chain untouched.
			pCurrent.Store(currentRaw)
			return
		}

		pg := &pc.arena[idx]

		if pg == page {
			if pg.refCount.Load() != 0 {
				// Resurrected concurrently: leave it in the bucket.
				pCurrent.Store(currentRaw)
				return
			}

			nextRaw := acquireSlot(&pg.next, pc.cfg.BucketSpinCount)
			pCurrent.Store(nextRaw)

			pc.used.Add(^uint64(0))
			pc.pushFree(pg)
			return
		}

		pPrevious = pCurrent
		previousRaw = currentRaw
		pCurrent = &pg.next
	}
}

func (pc *pageCache) Size() uint64 { return pc.size.Load() }
func (pc *pageCache) Used() uint64 { return pc.used.Load() }
