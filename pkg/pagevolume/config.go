package pagevolume

import "fmt"

// Config holds the enumerated tunables of the page cache and resize mutex.
// The zero value is not valid; use DefaultConfig and override individual
// fields.
type Config struct {
	// BucketCount is the number of hash buckets in the page cache's
	// lock-free table.
	BucketCount int

	// SharedLockCount is the number of cache-line-padded reader counters
	// in the resize mutex. More shards reduce contention between readers
	// hashing to different shards, at the cost of a slower exclusive
	// acquire (which must drain every shard).
	SharedLockCount int

	// SpinCountPerLock bounds how many times the resize mutex spins
	// before yielding the goroutine scheduler while waiting for a shard
	// or the exclusive flag to clear.
	SpinCountPerLock uint64

	// PageLockSpinCount bounds how many times a goroutine waiting on a
	// mapped page's tri-state lock spins before yielding.
	PageLockSpinCount uint64

	// BucketSpinCount bounds how many times a goroutine spins while
	// trying to acquire ownership of a page cache bucket slot before
	// yielding.
	BucketSpinCount uint64

	// PageCacheCapacity is the maximum number of mapped pages the cache
	// will carve out of its arena before GetMappedPage starts failing with
	// Overloaded. The arena needs a fixed backing capacity since the
	// hand-over-hand traversal depends on entries never moving in memory
	// once carved.
	PageCacheCapacity uint64
}

// DefaultConfig returns the tunables used when none are supplied.
func DefaultConfig() Config {
	return Config{
		BucketCount:       41,
		SharedLockCount:   31,
		SpinCountPerLock:  0x1000,
		PageLockSpinCount: 1 << 16,
		BucketSpinCount:   1024,
		PageCacheCapacity: 1 << 16,
	}
}

// Validate rejects configurations that would make the cache or mutex
// meaningless or unsafe to construct. It never panics; callers are expected
// to surface the returned error to whoever supplied the Config.
func (c Config) Validate() error {
	switch {
	case c.BucketCount <= 0:
		return wrapKind(ErrLogicError, UnknownError, "bucket count must be positive, got %d", c.BucketCount)
	case c.SharedLockCount <= 0:
		return wrapKind(ErrLogicError, UnknownError, "shared lock count must be positive, got %d", c.SharedLockCount)
	case c.SpinCountPerLock == 0:
		return wrapKind(ErrLogicError, UnknownError, "spin count per lock must be positive")
	case c.PageLockSpinCount == 0:
		return wrapKind(ErrLogicError, UnknownError, "page lock spin count must be positive")
	case c.BucketSpinCount == 0:
		return wrapKind(ErrLogicError, UnknownError, "bucket spin count must be positive")
	case c.PageCacheCapacity == 0:
		return wrapKind(ErrLogicError, UnknownError, "page cache capacity must be positive")
	}
	return nil
}

func (c Config) String() string {
	return fmt.Sprintf(
		"Config{BucketCount:%d SharedLockCount:%d SpinCountPerLock:%#x PageLockSpinCount:%#x BucketSpinCount:%#x PageCacheCapacity:%d}",
		c.BucketCount, c.SharedLockCount, c.SpinCountPerLock, c.PageLockSpinCount, c.BucketSpinCount, c.PageCacheCapacity,
	)
}
