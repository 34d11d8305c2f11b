//go:build windows

package pagevolume

import "unsafe"

// unsafeViewFromAddr turns a raw MapViewOfFile address into a Go byte
// slice. The memory is owned by the OS mapping, not the Go allocator;
// it must be released via UnmapViewOfFile, never garbage collected.
func unsafeViewFromAddr(addr uintptr, length int) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), length)
}

func addrOfView(view []byte) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(view)))
}
