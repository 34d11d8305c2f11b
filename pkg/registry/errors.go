package registry

import (
	"errors"
	"fmt"

	"github.com/jbstore/jbstore/pkg/pagevolume"
)

// ErrInvalidHandle is returned when a Handle does not refer to a
// currently open volume: it was never issued, or it was already closed.
var ErrInvalidHandle = errors.New("registry: invalid handle")

func invalidHandleError(handle Handle) error {
	ve := &pagevolume.VolumeError{
		Code: pagevolume.InvalidHandle,
		Msg:  fmt.Sprintf("handle %s not found", handle),
	}
	return fmt.Errorf("%w: %w", ErrInvalidHandle, ve)
}
