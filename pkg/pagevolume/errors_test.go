package pagevolume_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jbstore/jbstore/pkg/pagevolume"
)

func TestVolumeError_ErrorIncludesCodeAndMessage(t *testing.T) {
	t.Parallel()

	err := &pagevolume.VolumeError{Code: pagevolume.IoError, Msg: "disk full"}
	assert.Equal(t, "io error: disk full", err.Error())
}

func TestVolumeError_EmptyMessageFallsBackToCode(t *testing.T) {
	t.Parallel()

	err := &pagevolume.VolumeError{Code: pagevolume.AlreadyInUse}
	assert.Equal(t, "already in use", err.Error())
}

func TestErrorSentinels_AreDistinct(t *testing.T) {
	t.Parallel()

	sentinels := []error{
		pagevolume.ErrPathError,
		pagevolume.ErrOpenError,
		pagevolume.ErrBusyError,
		pagevolume.ErrIoError,
		pagevolume.ErrLogicError,
		pagevolume.ErrExhausted,
		pagevolume.ErrAllocError,
	}

	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}
			assert.False(t, errors.Is(a, b), "sentinel %d should not match sentinel %d", i, j)
		}
	}
}
