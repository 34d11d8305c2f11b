package kv_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jbstore/jbstore/pkg/kv"
	"github.com/jbstore/jbstore/pkg/pagevolume"
)

func openStore(t *testing.T) *kv.Store {
	t.Helper()

	cfg := pagevolume.DefaultConfig()
	cfg.PageCacheCapacity = 64

	f, err := pagevolume.Open(filepath.Join(t.TempDir(), "kv.jb"), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	return kv.Open(f)
}

func TestStore_PutThenGet(t *testing.T) {
	t.Parallel()

	s := openStore(t)

	require.NoError(t, s.Put([]byte("foo"), []byte("bar")))

	value, err := s.Get([]byte("foo"))
	require.NoError(t, err)
	require.Equal(t, "bar", string(value))
}

func TestStore_GetMissingKeyReturnsErrNotFound(t *testing.T) {
	t.Parallel()

	s := openStore(t)

	_, err := s.Get([]byte("missing"))
	require.True(t, errors.Is(err, kv.ErrNotFound))
}

func TestStore_LaterPutShadowsEarlier(t *testing.T) {
	t.Parallel()

	s := openStore(t)

	require.NoError(t, s.Put([]byte("k"), []byte("v1")))
	require.NoError(t, s.Put([]byte("k"), []byte("v2")))

	value, err := s.Get([]byte("k"))
	require.NoError(t, err)
	require.Equal(t, "v2", string(value))
}

func TestStore_DeleteRemovesKey(t *testing.T) {
	t.Parallel()

	s := openStore(t)

	require.NoError(t, s.Put([]byte("k"), []byte("v")))
	require.NoError(t, s.Delete([]byte("k")))

	_, err := s.Get([]byte("k"))
	require.True(t, errors.Is(err, kv.ErrNotFound))
}

func TestStore_DeleteMissingKeyReturnsErrNotFound(t *testing.T) {
	t.Parallel()

	s := openStore(t)

	err := s.Delete([]byte("missing"))
	require.True(t, errors.Is(err, kv.ErrNotFound))
}

func TestStore_GrowsAcrossPagesWhenFull(t *testing.T) {
	t.Parallel()

	s := openStore(t)

	const count = 500
	for i := 0; i < count; i++ {
		key := []byte{byte(i), byte(i >> 8)}
		value := make([]byte, 32)
		for j := range value {
			value[j] = byte(i)
		}
		require.NoError(t, s.Put(key, value))
	}

	for i := 0; i < count; i++ {
		key := []byte{byte(i), byte(i >> 8)}
		value, err := s.Get(key)
		require.NoError(t, err)
		require.Len(t, value, 32)
		require.Equal(t, byte(i), value[0])
	}
}
