package pagevolume

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResizeMutex_SharedHoldersDoNotBlockEachOther(t *testing.T) {
	t.Parallel()

	rm := newResizeMutex(4, 128)

	rm.lockShared(0)
	rm.lockShared(1)
	rm.lockShared(2)

	assert.False(t, rm.tryLock())

	rm.unlockShared(0)
	rm.unlockShared(1)
	rm.unlockShared(2)

	assert.True(t, rm.tryLock())
	rm.unlock()
}

func TestResizeMutex_ExclusiveExcludesShared(t *testing.T) {
	t.Parallel()

	rm := newResizeMutex(4, 128)

	require.True(t, rm.tryLock())
	assert.False(t, rm.tryLockShared(0))

	rm.unlock()
	assert.True(t, rm.tryLockShared(0))
	rm.unlockShared(0)
}

func TestResizeMutex_ExclusiveWaitsForSharedDrain(t *testing.T) {
	t.Parallel()

	rm := newResizeMutex(4, 64)
	rm.lockShared(0)

	done := make(chan struct{})
	go func() {
		rm.lock()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("exclusive lock acquired while a shared holder was active")
	case <-time.After(50 * time.Millisecond):
	}

	rm.unlockShared(0)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("exclusive lock never acquired after shared holder released")
	}

	rm.unlock()
}

func TestResizeMutex_ConcurrentSharedAndExclusiveMakeProgress(t *testing.T) {
	t.Parallel()

	rm := newResizeMutex(8, 256)

	var exclusiveAcquired atomic.Int64
	var wg sync.WaitGroup

	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				rm.lockShared(uint64(id))
				rm.unlockShared(uint64(id))
			}
		}(g)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			rm.lock()
			exclusiveAcquired.Add(1)
			rm.unlock()
		}
	}()

	wg.Wait()
	assert.EqualValues(t, 20, exclusiveAcquired.Load())
}
