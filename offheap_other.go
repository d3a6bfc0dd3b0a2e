//go:build !unix && !windows

package arena

import "errors"

var errOffHeapUnsupported = errors.New("arena: off-heap chunks unsupported on this platform")

// mapChunk always fails; the arena falls back to heap chunks.
func mapChunk(size int) (chunk, error) {
	return chunk{}, errOffHeapUnsupported
}
