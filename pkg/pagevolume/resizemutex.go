package pagevolume

import (
	"runtime"
	"sync/atomic"
)

const cacheLineSize = 64

// paddedInt64 pads an atomic counter out to its own cache line so that
// independent shards of resizeMutex never false-share.
type paddedInt64 struct {
	v atomic.Int64
	_ [cacheLineSize - 8]byte
}

// paddedBool is the exclusive flag, padded the same way.
type paddedBool struct {
	v atomic.Bool
	_ [cacheLineSize - 1]byte
}

// resizeMutex is a reader-biased shared/exclusive lock: many goroutines can
// hold it shared at once via a striped set of counters, while a single
// exclusive holder (the goroutine growing the file) must first see every
// stripe drop to zero. Sharding the reader count is what lets holders on
// different stripes acquire and release without touching a shared cache
// line.
type resizeMutex struct {
	exclusive paddedBool
	shared    []paddedInt64
	spinCount uint64
}

func newResizeMutex(shardCount int, spinCount uint64) *resizeMutex {
	return &resizeMutex{
		shared:    make([]paddedInt64, shardCount),
		spinCount: spinCount,
	}
}

func (rm *resizeMutex) shard(lockerID uint64) *paddedInt64 {
	return &rm.shared[lockerID%uint64(len(rm.shared))]
}

// tryLockShared attempts to acquire a shared hold without blocking.
func (rm *resizeMutex) tryLockShared(lockerID uint64) bool {
	shard := rm.shard(lockerID)
	shard.v.Add(1)
	if rm.exclusive.v.Load() {
		shard.v.Add(-1)
		return false
	}
	return true
}

// lockShared blocks until a shared hold is acquired. The original
// implementation's inner spin loop never releases the reader's own count
// while waiting out an exclusive holder, which lets a slow exclusive
// acquirer starve indefinitely if readers keep re-entering the same shard.
// This version steps back — releasing the shard and retrying from scratch —
// every spinCount iterations, so an exclusive acquirer sweeping the shards
// is guaranteed to eventually observe this shard at zero.
func (rm *resizeMutex) lockShared(lockerID uint64) {
	shard := rm.shard(lockerID)

	for {
		shard.v.Add(1)

		spin := uint64(1)
		acquired := false
		for {
			if !rm.exclusive.v.Load() {
				acquired = true
				break
			}
			if spin%rm.spinCount == 0 {
				break
			}
			spin++
		}

		if acquired {
			return
		}

		shard.v.Add(-1)
		runtime.Gosched()
	}
}

func (rm *resizeMutex) unlockShared(lockerID uint64) {
	rm.shard(lockerID).v.Add(-1)
}

// tryLock attempts to acquire the exclusive lock without blocking.
func (rm *resizeMutex) tryLock() bool {
	if !rm.exclusive.v.CompareAndSwap(false, true) {
		return false
	}

	drained := make([]bool, len(rm.shared))
	spin := uint64(1)

	for {
		allDrained := true
		for i := range rm.shared {
			if drained[i] {
				continue
			}
			if rm.shared[i].v.Load() == 0 {
				drained[i] = true
				continue
			}
			allDrained = false
			if spin%rm.spinCount == 0 {
				rm.exclusive.v.Store(false)
				return false
			}
		}
		if allDrained {
			return true
		}
		spin++
	}
}

// lock blocks until the exclusive lock is acquired.
func (rm *resizeMutex) lock() {
	for !rm.tryLock() {
		runtime.Gosched()
	}
}

func (rm *resizeMutex) unlock() {
	rm.exclusive.v.Store(false)
}
