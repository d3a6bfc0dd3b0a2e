package arena

import (
	"fmt"
	"math"
	"runtime"
	"unsafe"
)

// Alloc returns a pointer to a T stored inside the arena with zeroed memory.
// The returned pointer is valid as long as the arena hasn't been released.
func Alloc[T any](a *Arena) *T {
	return &mustTyped[T](a, 1, true)[0]
}

// AllocZeroed is identical to Alloc - provided for API consistency.
func AllocZeroed[T any](a *Arena) *T {
	return Alloc[T](a)
}

// AllocUninitialized returns a *T located in the arena without zeroing memory.
// This is faster than Alloc but the memory contents are undefined for
// pointer-free types. Types holding pointers are always zeroed.
func AllocUninitialized[T any](a *Arena) *T {
	return &mustTyped[T](a, 1, false)[0]
}

// AllocSlice allocates a slice of n elements of type T inside the arena.
// The slice elements are not initialized (contain garbage data).
// Returns nil if n <= 0.
func AllocSlice[T any](a *Arena, n int) []T {
	if n <= 0 {
		return nil
	}
	return mustTyped[T](a, n, false)
}

// AllocSliceZeroed allocates a slice of n elements of type T with zeroed memory.
// This is slower than AllocSlice but ensures clean initialization.
func AllocSliceZeroed[T any](a *Arena, n int) []T {
	if n <= 0 {
		return nil
	}
	return mustTyped[T](a, n, true)
}

// PtrAndKeepAlive returns t and calls runtime.KeepAlive on the arena.
// This is useful to prevent the arena from being garbage collected
// while the pointer is still in use in unsafe code.
func PtrAndKeepAlive[T any](a *Arena, t *T) *T {
	runtime.KeepAlive(a)
	return t
}

// mustTyped is allocTyped for the typed helpers, which have no error result.
func mustTyped[T any](a *Arena, n int, zero bool) []T {
	s, err := allocTyped[T](a, n, zero)
	if err != nil {
		panic(err)
	}
	return s
}

// allocTyped returns n elements of T. Pointer-free types come from byte
// chunks, the rest from typed slabs. n must be positive.
func allocTyped[T any](a *Arena, n int, zero bool) ([]T, error) {
	var x T
	size, align := int(unsafe.Sizeof(x)), int(unsafe.Alignof(x))
	if size == 0 {
		return make([]T, n), nil
	}
	if n > math.MaxInt/size {
		return nil, fmt.Errorf("%w: %d elements of %d bytes", ErrCapacityOverflow, n, size)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if !pointerFree[T]() {
		s, err := carveLocked[T](a, n)
		if err != nil {
			return nil, err
		}
		a.stats.allocs++
		return s, nil
	}
	b, err := a.allocLocked(size*n, align)
	if err != nil {
		return nil, err
	}
	a.stats.allocs++
	if zero {
		clear(b)
	}
	return bytesAs[T](b, n), nil
}

// bytesAs reinterprets b as n elements of T.
func bytesAs[T any](b []byte, n int) []T {
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(b))), n)
}

// asBytes returns the bytes backing the full capacity of s.
func asBytes[T any](s []T) []byte {
	var x T
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(s))), cap(s)*int(unsafe.Sizeof(x)))
}
