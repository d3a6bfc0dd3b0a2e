package arena

import (
	"fmt"
	"math"
	"math/bits"
	"unsafe"
)

// Layout is the size and alignment of a block.
type Layout struct {
	Size  int
	Align int
}

// NewLayout returns a validated layout.
func NewLayout(size, align int) (Layout, error) {
	l := Layout{Size: size, Align: align}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// Validate reports whether the size is non-negative and the alignment a power of two.
func (l Layout) Validate() error {
	if l.Size < 0 {
		return fmt.Errorf("%w: negative size %d", ErrInvalidLayout, l.Size)
	}
	if l.Align <= 0 || l.Align&(l.Align-1) != 0 {
		return fmt.Errorf("%w: alignment %d is not a power of two", ErrInvalidLayout, l.Align)
	}
	return nil
}

// LayoutOf returns the layout of a single T.
func LayoutOf[T any]() Layout {
	var x T
	return Layout{Size: int(unsafe.Sizeof(x)), Align: int(unsafe.Alignof(x))}
}

// ArrayLayout returns the layout of n contiguous T.
func ArrayLayout[T any](n int) (Layout, error) {
	if n < 0 {
		return Layout{}, fmt.Errorf("%w: negative length %d", ErrInvalidLayout, n)
	}
	l := LayoutOf[T]()
	hi, lo := bits.Mul64(uint64(l.Size), uint64(n))
	if hi != 0 || lo > math.MaxInt {
		return Layout{}, fmt.Errorf("%w: %d elements of %d bytes", ErrCapacityOverflow, n, l.Size)
	}
	l.Size = int(lo)
	return l, nil
}
