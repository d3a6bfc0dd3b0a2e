//go:build unix

package arena

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// mapChunk maps an anonymous read-write region outside the Go heap.
func mapChunk(size int) (chunk, error) {
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return chunk{}, fmt.Errorf("arena: map %d bytes: %w", size, err)
	}
	return chunk{
		buf:   data,
		unmap: func() error { return unix.Munmap(data) },
	}, nil
}
