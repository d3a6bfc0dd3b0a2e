package arena

import "unsafe"

// makeSlice returns n elements of T from the handle's arena with length n.
func makeSlice[T any](h Handle, op string, n int, zero bool) ([]T, error) {
	l, err := ArrayLayout[T](n)
	if err != nil {
		return nil, allocErr(op, l, err)
	}
	if n == 0 {
		return nil, nil
	}
	if l.Size == 0 || !pointerFree[T]() {
		a, err := h.arena()
		if err != nil {
			return nil, allocErr(op, l, err)
		}
		s, err := allocTyped[T](a, n, zero)
		if err != nil {
			return nil, allocErr(op, l, err)
		}
		return s, nil
	}
	var b []byte
	if zero {
		b, err = h.AllocateZeroed(l)
	} else {
		b, err = h.Allocate(l)
	}
	if err != nil {
		return nil, err
	}
	return bytesAs[T](b, n), nil
}

// resizeSlice moves s into a block with capacity newCap, keeping
// min(len(s), newCap) elements. Growing goes through Handle.Grow and
// shrinking through Handle.Shrink.
func resizeSlice[T any](h Handle, s []T, newCap int) ([]T, error) {
	length := min(len(s), newCap)
	if cap(s) == 0 {
		out, err := makeSlice[T](h, "grow", newCap, false)
		return out[:0], err
	}
	old, _ := ArrayLayout[T](cap(s))
	nl, err := ArrayLayout[T](newCap)
	if err != nil {
		return nil, allocErr("grow", nl, err)
	}
	if newCap == 0 {
		h.Deallocate(asBytes(s), old)
		return nil, nil
	}

	if nl.Size == 0 || !pointerFree[T]() {
		op := "grow"
		if newCap < cap(s) {
			op = "shrink"
		}
		a, err := h.arena()
		if err != nil {
			return nil, allocErr(op, nl, err)
		}
		out, err := resizeTyped(a, s, newCap, length)
		if err != nil {
			return nil, allocErr(op, nl, err)
		}
		return out, nil
	}

	var b []byte
	if newCap >= cap(s) {
		b, err = h.Grow(asBytes(s), old, nl)
	} else {
		b, err = h.Shrink(asBytes(s), old, nl)
	}
	if err != nil {
		return nil, err
	}
	return bytesAs[T](b, newCap)[:length], nil
}

// resizeTyped is resizeSlice for zero-sized element types and those carved
// from typed slabs. The whole old capacity is copied, like Handle.Grow does.
func resizeTyped[T any](a *Arena, s []T, newCap, length int) ([]T, error) {
	var x T
	size := int(unsafe.Sizeof(x))
	if size == 0 {
		return make([]T, length, newCap), nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	out, err := carveLocked[T](a, newCap)
	if err != nil {
		return nil, err
	}
	n := copy(out, s[:min(cap(s), newCap)])
	a.stats.resizes++
	a.stats.bytesCopied += n * size
	return out[:length], nil
}
