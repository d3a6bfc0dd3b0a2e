//go:build windows

package arena

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// mapChunk reserves and commits a region outside the Go heap.
// Pages are backed on first touch.
func mapChunk(size int) (chunk, error) {
	addr, err := windows.VirtualAlloc(0, uintptr(size),
		windows.MEM_RESERVE|windows.MEM_COMMIT, windows.PAGE_READWRITE)
	if err != nil {
		return chunk{}, fmt.Errorf("arena: map %d bytes: %w", size, err)
	}
	return chunk{
		buf: unsafe.Slice((*byte)(unsafe.Pointer(addr)), size),
		unmap: func() error {
			return windows.VirtualFree(addr, 0, windows.MEM_RELEASE)
		},
	}, nil
}
