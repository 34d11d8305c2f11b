package pagevolume

import (
	"errors"
	"fmt"
)

// ErrorCode mirrors the small, stable result-code enumeration that every
// operation in this package reduces its failure to, independent of the
// platform it runs on.
type ErrorCode int

const (
	// Ok is never returned as an error; it exists so the zero value of
	// ErrorCode has a name.
	Ok ErrorCode = iota
	UnknownError
	InsufficientMemory
	InvalidHandle
	InvalidFilePath
	CannotOpenFile
	AlreadyInUse
	IoError
	Overloaded
)

func (c ErrorCode) String() string {
	switch c {
	case Ok:
		return "ok"
	case UnknownError:
		return "unknown error"
	case InsufficientMemory:
		return "insufficient memory"
	case InvalidHandle:
		return "invalid handle"
	case InvalidFilePath:
		return "invalid file path"
	case CannotOpenFile:
		return "cannot open file"
	case AlreadyInUse:
		return "already in use"
	case IoError:
		return "io error"
	case Overloaded:
		return "overloaded"
	default:
		return "unrecognized error code"
	}
}

// VolumeError is the error type returned by every exported operation in this
// package. It carries the stable ErrorCode alongside a human-readable
// message, mirroring the RetCode/exception split of the original
// implementation this package is derived from.
type VolumeError struct {
	Code ErrorCode
	Msg  string
}

func (e *VolumeError) Error() string {
	if e.Msg == "" {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func newError(code ErrorCode, msg string) *VolumeError {
	return &VolumeError{Code: code, Msg: msg}
}

// Sentinel errors for the seven error kinds in §7. Every VolumeError
// produced by this package also wraps exactly one of these, so callers can
// use errors.Is without switching on ErrorCode.
var (
	ErrPathError  = errors.New("pagevolume: path error")
	ErrOpenError  = errors.New("pagevolume: open error")
	ErrBusyError  = errors.New("pagevolume: busy")
	ErrIoError    = errors.New("pagevolume: io error")
	ErrLogicError = errors.New("pagevolume: logic error")
	ErrExhausted  = errors.New("pagevolume: exhausted")
	ErrAllocError = errors.New("pagevolume: allocation error")
)

// wrapKind produces a *VolumeError that also satisfies errors.Is(err, kind)
// for one of the Err* sentinels above, by joining it with the kind sentinel.
func wrapKind(kind error, code ErrorCode, format string, args ...any) error {
	ve := newError(code, fmt.Sprintf(format, args...))
	return fmt.Errorf("%w: %w", kind, ve)
}
