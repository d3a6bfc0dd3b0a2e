// Package arena implements a chunked bump allocator (memory arena) together
// with a scoped activation protocol and arena-backed containers.
package arena

import (
	"fmt"
	"math"
	"reflect"
	"sync"
	"unsafe"
)

// DefaultChunkSize is the default chunk size for new arenas (64 KiB).
const DefaultChunkSize = 1 << 16

// ptrAlign is the alignment used by AllocBytes.
const ptrAlign = int(unsafe.Sizeof(uintptr(0)))

// chunk represents a single memory chunk within an arena.
type chunk struct {
	buf    []byte       // backing memory
	offset uintptr      // allocation offset within buf
	unmap  func() error // non-nil for off-heap chunks
}

// Arena is a chunked bump allocator. Not goroutine-safe by default.
// Use NewSafeArena for concurrent access.
type Arena struct {
	chunks    []chunk
	chunkSize int
	current   int

	// typed slabs for element types the garbage collector has to scan
	slabs map[reflect.Type]any

	mu      sync.Locker
	offHeap bool
	onGrow  func(size int, offHeap bool)

	stats counters
}

// NewArena creates a new Arena with the specified chunk size.
// If chunkSize <= 0, DefaultChunkSize is used.
func NewArena(chunkSize int) *Arena {
	return newArena(chunkSize, false, noLock{})
}

func newArena(chunkSize int, offHeap bool, mu sync.Locker) *Arena {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	a := &Arena{
		chunkSize: chunkSize,
		slabs:     make(map[reflect.Type]any),
		mu:        mu,
		offHeap:   offHeap,
	}
	if err := a.grow(chunkSize); err != nil {
		panic(err)
	}
	return a
}

// AllocBytes returns a []byte slice pointing into the arena's backing chunk.
// The caller must ensure the arena remains reachable while the returned slice is in use.
// Returns nil if n <= 0.
func (a *Arena) AllocBytes(n int) []byte {
	return a.AllocAligned(n, ptrAlign)
}

// AllocAligned returns n bytes whose first byte is aligned to align, which
// must be a power of two. Returns nil if n <= 0. It panics with an error
// matching ErrTooLarge when no chunk can hold n bytes.
func (a *Arena) AllocAligned(n, align int) []byte {
	if n <= 0 {
		return nil
	}
	if align <= 0 || align&(align-1) != 0 {
		panic("arena: alignment must be a power of two")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	b, err := a.allocLocked(n, align)
	if err != nil {
		panic(err)
	}
	a.stats.allocs++
	return b
}

// allocLocked carves n aligned bytes, walking forward over chunks kept by
// Reset before growing.
func (a *Arena) allocLocked(n, align int) ([]byte, error) {
	a.panicIfReleased()

	// Fast path: use current chunk
	if b := a.chunks[a.current].carve(n, align); b != nil {
		return b, nil
	}
	for i := a.current + 1; i < len(a.chunks); i++ {
		if b := a.chunks[i].carve(n, align); b != nil {
			a.current = i
			return b, nil
		}
	}

	// Slow path: need new chunk
	if n > math.MaxInt-(align-1) {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, n)
	}
	if err := a.grow(n + align - 1); err != nil {
		return nil, err
	}
	if b := a.chunks[a.current].carve(n, align); b != nil {
		return b, nil
	}
	return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, n)
}

// carve bumps the chunk offset past n bytes aligned to align.
// Returns nil if the chunk has no room.
func (c *chunk) carve(n, align int) []byte {
	if len(c.buf) == 0 {
		return nil
	}
	base := uintptr(unsafe.Pointer(unsafe.SliceData(c.buf)))
	off := alignUp(base+c.offset, uintptr(align)) - base
	if off+uintptr(n) > uintptr(len(c.buf)) {
		return nil
	}
	c.offset = off + uintptr(n)
	return c.buf[off : off+uintptr(n) : off+uintptr(n)]
}

// EnsureCapacity makes the first chunk from the current one onward with at
// least n free bytes current. If none has room, it grows the arena.
func (a *Arena) EnsureCapacity(n int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.panicIfReleased()
	for i := a.current; i < len(a.chunks); i++ {
		c := &a.chunks[i]
		if uintptr(n)+alignPtr(c.offset) <= uintptr(len(c.buf)) {
			a.current = i
			return
		}
	}
	if err := a.grow(n); err != nil {
		panic(err)
	}
}

// Reset resets allocation offsets to zero but keeps allocated chunks for reuse.
// Typed slabs are cleared so they no longer keep heap objects alive.
func (a *Arena) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.panicIfReleased()
	for i := range a.chunks {
		a.chunks[i].offset = 0
	}
	a.current = 0
	for _, s := range a.slabs {
		s.(resetter).reset()
	}
	a.stats.typedInUse = 0
}

// Release drops all chunks and makes the arena unusable.
// Off-heap chunks are unmapped. Any subsequent allocation will panic.
func (a *Arena) Release() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, c := range a.chunks {
		if c.unmap != nil {
			_ = c.unmap()
		}
	}
	a.chunks = nil
	a.current = 0
	a.slabs = nil
}

// Released reports whether Release has been called.
func (a *Arena) Released() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.chunks == nil
}

// grow appends a new chunk of at least min bytes and makes it current.
func (a *Arena) grow(min int) error {
	size := a.chunkSize
	if min > size {
		size = min
	}
	c, mapped := chunk{}, false
	if a.offHeap {
		if m, err := mapChunk(size); err == nil {
			c, mapped = m, true
		} else {
			a.stats.offHeapFailures++
		}
	}
	if !mapped {
		buf, err := makeBuffer[byte](size)
		if err != nil {
			return err
		}
		c = chunk{buf: buf}
	}
	a.chunks = append(a.chunks, c)
	a.current = len(a.chunks) - 1
	if a.onGrow != nil {
		a.onGrow(size, mapped)
	}
	return nil
}

// makeBuffer is make([]T, n) reporting a length the runtime refuses as
// ErrTooLarge instead of panicking.
func makeBuffer[T any](n int) (buf []T, err error) {
	defer func() {
		if r := recover(); r != nil {
			buf, err = nil, fmt.Errorf("%w: %d elements: %v", ErrTooLarge, n, r)
		}
	}()
	return make([]T, n), nil
}

// setOnGrow replaces the chunk growth hook.
func (a *Arena) setOnGrow(fn func(size int, offHeap bool)) {
	a.mu.Lock()
	a.onGrow = fn
	a.mu.Unlock()
}

// panicIfReleased panics if the arena has been released.
func (a *Arena) panicIfReleased() {
	if a.chunks == nil {
		panic("arena: use after Release()")
	}
}

// alignPtr aligns the offset up to pointer size alignment.
func alignPtr(off uintptr) uintptr {
	return alignUp(off, uintptr(ptrAlign))
}

func alignUp(v, align uintptr) uintptr {
	mask := align - 1
	return (v + mask) & ^mask
}
