package pagevolume

import (
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFile(t *testing.T) *File {
	t.Helper()
	cfg := DefaultConfig()
	cfg.BucketCount = 4
	cfg.PageCacheCapacity = 32
	f, err := Open(filepath.Join(t.TempDir(), "mp.jb"), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestMappedPage_ConcurrentLockersShareOneMapping(t *testing.T) {
	t.Parallel()

	f := testFile(t)
	mp, err := f.cache.getMappedPage(0)
	require.NoError(t, err)
	defer mp.release()

	const goroutines = 64
	var wg sync.WaitGroup
	var counter atomic.Int64

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, mp.lock(f))
			counter.Add(1)
			data := mp.data()
			require.NotNil(t, data)
			mp.unlock(f)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, goroutines, counter.Load())
	assert.Equal(t, stateUnlocked, mp.lockCount.Load())
}

func TestMappedPage_UnlockClearsViewOnLastHolder(t *testing.T) {
	t.Parallel()

	f := testFile(t)
	mp, err := f.cache.getMappedPage(0)
	require.NoError(t, err)
	defer mp.release()

	require.NoError(t, mp.lock(f))
	require.NoError(t, mp.lock(f))

	assert.NotNil(t, mp.data())
	mp.unlock(f)
	assert.NotNil(t, mp.data(), "view stays mapped while a second holder remains")

	mp.unlock(f)
	assert.Nil(t, mp.data())
	assert.Equal(t, stateUnlocked, mp.lockCount.Load())
}

func TestMappedPage_LockMapFailure_ResetsToUnlocked(t *testing.T) {
	t.Parallel()

	f := testFile(t)
	mp, err := f.cache.getMappedPage(f.Size())
	require.NoError(t, err)
	defer mp.release()

	err = mp.lock(f)
	require.Error(t, err)
	assert.Equal(t, stateUnlocked, mp.lockCount.Load())
}
