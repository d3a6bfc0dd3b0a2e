package arena

import (
	"fmt"
	"iter"
	"math"
	"slices"
	"unsafe"

	jsoniter "github.com/json-iterator/go"
)

// Vec is a growable contiguous sequence whose backing block lives in an
// arena. Growth and ShrinkToFit move the elements into a fresh block through
// the handle; old blocks are never reclaimed individually.
//
// Push, Reserve, Extend and ShrinkToFit panic with an *AllocError when the
// handle cannot allocate. The Try forms return it instead.
type Vec[T any] struct {
	h   Handle
	buf []T // len(buf) is the length, cap(buf) the capacity
}

// NewVec returns an empty Vec. Nothing is allocated until the first push.
func NewVec[T any](h Handle) *Vec[T] {
	return &Vec[T]{h: h}
}

// WithCapacity returns an empty Vec with room for n elements.
func WithCapacity[T any](h Handle, n int) *Vec[T] {
	v := NewVec[T](h)
	v.Reserve(n)
	return v
}

// FromSlice copies s into a new Vec.
func FromSlice[T any](h Handle, s []T) *Vec[T] {
	v := WithCapacity[T](h, len(s))
	v.buf = append(v.buf, s...)
	return v
}

// Collect drains seq into a new Vec.
func Collect[T any](h Handle, seq iter.Seq[T]) *Vec[T] {
	v := NewVec[T](h)
	v.Extend(seq)
	return v
}

// FromRawParts rebuilds a Vec from RawParts or Leak output. The caller
// guarantees ptr addresses capacity elements allocated through h, the first
// length of which are initialized.
func FromRawParts[T any](h Handle, ptr *T, length, capacity int) *Vec[T] {
	if length < 0 || length > capacity {
		panic(fmt.Sprintf("arena: FromRawParts length %d capacity %d", length, capacity))
	}
	v := NewVec[T](h)
	if ptr != nil && capacity > 0 {
		v.buf = unsafe.Slice(ptr, capacity)[:length]
	}
	return v
}

// Handle returns the handle the Vec allocates from.
func (v *Vec[T]) Handle() Handle {
	return v.h
}

// Len returns the number of elements.
func (v *Vec[T]) Len() int {
	return len(v.buf)
}

// Cap returns the number of elements the current block can hold.
func (v *Vec[T]) Cap() int {
	return cap(v.buf)
}

// IsEmpty reports whether the Vec holds no elements.
func (v *Vec[T]) IsEmpty() bool {
	return len(v.buf) == 0
}

// At returns element i.
func (v *Vec[T]) At(i int) T {
	return v.buf[i]
}

// Ptr returns a pointer to element i. It is invalidated by growth.
func (v *Vec[T]) Ptr(i int) *T {
	return &v.buf[i]
}

// Set replaces element i.
func (v *Vec[T]) Set(i int, x T) {
	v.buf[i] = x
}

// Slice returns the elements as a slice backed by the arena block. It is
// invalidated by growth and ShrinkToFit.
func (v *Vec[T]) Slice() []T {
	return v.buf
}

// RawParts returns the block address, length and capacity.
func (v *Vec[T]) RawParts() (ptr *T, length, capacity int) {
	return unsafe.SliceData(v.buf), len(v.buf), cap(v.buf)
}

// Push appends x, growing the block when full.
func (v *Vec[T]) Push(x T) {
	must(v.TryPush(x))
}

// TryPush is Push returning the allocation failure.
func (v *Vec[T]) TryPush(x T) error {
	if len(v.buf) == cap(v.buf) {
		if err := v.grow(1); err != nil {
			return err
		}
	}
	v.buf = append(v.buf, x)
	return nil
}

// Append pushes every element of xs.
func (v *Vec[T]) Append(xs ...T) {
	v.Reserve(len(xs))
	v.buf = append(v.buf, xs...)
}

// Extend pushes every element of seq.
func (v *Vec[T]) Extend(seq iter.Seq[T]) {
	for x := range seq {
		v.Push(x)
	}
}

// Pop removes and returns the last element.
func (v *Vec[T]) Pop() (T, bool) {
	var zero T
	if len(v.buf) == 0 {
		return zero, false
	}
	last := len(v.buf) - 1
	x := v.buf[last]
	v.buf[last] = zero
	v.buf = v.buf[:last]
	return x, true
}

// Truncate keeps the first n elements. It does nothing if n >= Len.
func (v *Vec[T]) Truncate(n int) {
	if n < 0 || n >= len(v.buf) {
		return
	}
	clear(v.buf[n:])
	v.buf = v.buf[:n]
}

// Clear removes all elements and keeps the capacity.
func (v *Vec[T]) Clear() {
	v.Truncate(0)
}

// Reserve ensures room for at least additional more elements.
func (v *Vec[T]) Reserve(additional int) {
	must(v.TryReserve(additional))
}

// TryReserve is Reserve returning the allocation failure.
func (v *Vec[T]) TryReserve(additional int) error {
	if additional <= cap(v.buf)-len(v.buf) {
		return nil
	}
	return v.grow(additional)
}

// ShrinkToFit moves the elements into a block of exactly Len elements.
func (v *Vec[T]) ShrinkToFit() {
	must(v.TryShrinkToFit())
}

// TryShrinkToFit is ShrinkToFit returning the allocation failure.
func (v *Vec[T]) TryShrinkToFit() error {
	if cap(v.buf) == len(v.buf) {
		return nil
	}
	buf, err := resizeSlice(v.h, v.buf, len(v.buf))
	if err != nil {
		return err
	}
	v.buf = buf
	return nil
}

// IntoBoxedSlice shrinks the block to fit and boxes the element slice.
// The Vec is left empty.
func (v *Vec[T]) IntoBoxedSlice() *Box[[]T] {
	v.ShrinkToFit()
	b := NewBox(v.h, v.buf)
	v.buf = nil
	return b
}

// Leak returns the elements and stops tracking them. The slice stays valid
// for as long as the arena does. The Vec is left empty.
func (v *Vec[T]) Leak() []T {
	buf := v.buf
	v.buf = nil
	return buf
}

// All returns index-value pairs in order. It can be ranged over repeatedly.
func (v *Vec[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, x := range v.buf {
			if !yield(i, x) {
				return
			}
		}
	}
}

// Values returns the elements in order. It can be ranged over repeatedly.
func (v *Vec[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, x := range v.buf {
			if !yield(x) {
				return
			}
		}
	}
}

// Backward returns index-value pairs from last to first.
func (v *Vec[T]) Backward() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, x := range slices.Backward(v.buf) {
			if !yield(i, x) {
				return
			}
		}
	}
}

// Pointers returns index-pointer pairs for in-place updates.
func (v *Vec[T]) Pointers() iter.Seq2[int, *T] {
	return func(yield func(int, *T) bool) {
		for i := range v.buf {
			if !yield(i, &v.buf[i]) {
				return
			}
		}
	}
}

// Drain moves the elements out. The Vec is empty as soon as Drain returns
// and the sequence can be ranged over only once.
func (v *Vec[T]) Drain() iter.Seq[T] {
	items := v.buf
	v.buf = nil
	return func(yield func(T) bool) {
		rest := items
		items = nil
		for _, x := range rest {
			if !yield(x) {
				return
			}
		}
	}
}

func (v *Vec[T]) String() string {
	return fmt.Sprint(v.buf)
}

// Format applies the verb and flags to the element slice.
func (v *Vec[T]) Format(f fmt.State, verb rune) {
	fmt.Fprintf(f, fmt.FormatString(f, verb), v.buf)
}

// MarshalJSON encodes the elements as a JSON array.
func (v *Vec[T]) MarshalJSON() ([]byte, error) {
	if v.buf == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(v.buf)
}

// UnmarshalJSON appends the elements of a JSON array, allocating from the
// Vec's handle.
func (v *Vec[T]) UnmarshalJSON(data []byte) error {
	it := jsoniter.ParseBytes(json, data)
	var err error
	it.ReadArrayCB(func(it *jsoniter.Iterator) bool {
		var x T
		it.ReadVal(&x)
		if it.Error != nil {
			return false
		}
		if err = v.TryPush(x); err != nil {
			return false
		}
		return true
	})
	if err != nil {
		return err
	}
	return it.Error
}

// grow moves the elements into a block with room for additional more.
func (v *Vec[T]) grow(additional int) error {
	if additional > math.MaxInt-len(v.buf) {
		l, _ := ArrayLayout[T](0)
		return allocErr("grow", l, ErrCapacityOverflow)
	}
	var x T
	newCap := nextCapacity(cap(v.buf), len(v.buf)+additional, int(unsafe.Sizeof(x)))
	buf, err := resizeSlice(v.h, v.buf, newCap)
	if err != nil {
		return err
	}
	v.buf = buf
	return nil
}

// nextCapacity returns the capacity after growing from capacity to hold
// at least need elements: doubling, never below need, with a small minimum
// for tiny element types.
func nextCapacity(capacity, need, elemSize int) int {
	next := need
	if capacity <= math.MaxInt/2 && 2*capacity > next {
		next = 2 * capacity
	}
	minCap := 4
	switch {
	case elemSize == 1:
		minCap = 8
	case elemSize > 1024:
		minCap = 1
	}
	return max(next, minCap)
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
