package arena

import (
	"cmp"
	"fmt"
	"iter"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Box owns a single T stored in an arena. Dropping a Box never frees the
// slot; the memory goes back when the arena is reset or released.
//
// Formatting, JSON encoding, equality and ordering delegate to the boxed value.
type Box[T any] struct {
	ptr *T
	h   Handle
}

// NewBox moves v into the handle's arena. It panics with an *AllocError if
// the handle cannot allocate.
func NewBox[T any](h Handle, v T) *Box[T] {
	b, err := TryNewBox(h, v)
	if err != nil {
		panic(err)
	}
	return b
}

// TryNewBox is NewBox returning the allocation failure.
func TryNewBox[T any](h Handle, v T) (*Box[T], error) {
	s, err := makeSlice[T](h, "box", 1, false)
	if err != nil {
		return nil, err
	}
	s[0] = v
	return &Box[T]{ptr: &s[0], h: h}, nil
}

// DefaultBox boxes the zero value of T.
func DefaultBox[T any](h Handle) *Box[T] {
	var zero T
	return NewBox(h, zero)
}

// FromRaw adopts p, typically obtained from IntoRaw. The caller guarantees p
// points into an arena h allocates from and that nothing else owns it.
func FromRaw[T any](h Handle, p *T) *Box[T] {
	return &Box[T]{ptr: p, h: h}
}

// Handle returns the handle the box allocated from.
func (b *Box[T]) Handle() Handle {
	return b.h
}

// Get returns a pointer to the boxed value for reading and writing.
func (b *Box[T]) Get() *T {
	if b.ptr == nil {
		panic(ErrConsumed)
	}
	return b.ptr
}

// Value returns a copy of the boxed value.
func (b *Box[T]) Value() T {
	return *b.Get()
}

// Set replaces the boxed value.
func (b *Box[T]) Set(v T) {
	*b.Get() = v
}

// Consumed reports whether Unbox or IntoRaw was called.
func (b *Box[T]) Consumed() bool {
	return b.ptr == nil
}

// Unbox moves the value out and consumes the box. The arena slot is zeroed
// but not reclaimed.
func (b *Box[T]) Unbox() T {
	p := b.Get()
	v := *p
	var zero T
	*p = zero
	b.ptr = nil
	return v
}

// IntoRaw consumes the box and returns the bare pointer. Use FromRaw to
// re-adopt it.
func (b *Box[T]) IntoRaw() *T {
	p := b.Get()
	b.ptr = nil
	return p
}

func (b *Box[T]) String() string {
	if b == nil || b.ptr == nil {
		return "<consumed>"
	}
	return fmt.Sprint(*b.ptr)
}

// Format applies the verb and flags to the boxed value.
func (b *Box[T]) Format(f fmt.State, verb rune) {
	if b == nil || b.ptr == nil {
		fmt.Fprint(f, "<consumed>")
		return
	}
	fmt.Fprintf(f, fmt.FormatString(f, verb), *b.ptr)
}

// MarshalJSON encodes the boxed value.
func (b *Box[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Get())
}

// UnmarshalJSON decodes into the boxed value in place.
func (b *Box[T]) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, b.Get())
}

// Equal reports whether the boxed values are equal.
func Equal[T comparable](a, b *Box[T]) bool {
	return *a.Get() == *b.Get()
}

// Compare orders boxes by their values.
func Compare[T cmp.Ordered](a, b *Box[T]) int {
	return cmp.Compare(*a.Get(), *b.Get())
}

// Seq returns the boxed sequence so a boxed iterator can be ranged over directly.
func Seq[V any](b *Box[iter.Seq[V]]) iter.Seq[V] {
	return *b.Get()
}
