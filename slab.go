package arena

import (
	"reflect"
	"sync"
)

// slab is a bump region of typed memory. Element types that hold pointers
// are carved from slabs instead of byte chunks so the garbage collector
// keeps scanning them.
type slab[T any] struct {
	buf []T
	off int
}

type resetter interface {
	reset()
}

func (s *slab[T]) reset() {
	clear(s.buf)
	s.off = 0
}

// carveLocked returns n elements of typed memory. The caller holds a.mu.
func carveLocked[T any](a *Arena, n int) ([]T, error) {
	a.panicIfReleased()
	key := reflect.TypeFor[T]()
	s, _ := a.slabs[key].(*slab[T])
	if s == nil {
		s = &slab[T]{}
		a.slabs[key] = s
	}
	if len(s.buf)-s.off < n {
		elem := int(key.Size())
		size := n
		if per := a.chunkSize / max(elem, 1); per > size {
			size = per
		}
		buf, err := makeBuffer[T](size)
		if err != nil {
			return nil, err
		}
		s.buf = buf
		s.off = 0
		a.stats.typedSlabs++
		a.stats.typedCapacity += size * elem
	}
	out := s.buf[s.off : s.off+n : s.off+n]
	s.off += n
	a.stats.typedInUse += n * int(key.Size())
	return out, nil
}

var pointerCache sync.Map // reflect.Type -> bool

// hasPointers reports whether values of type t contain pointers the garbage
// collector has to see.
func hasPointers(t reflect.Type) bool {
	if v, ok := pointerCache.Load(t); ok {
		return v.(bool)
	}
	p := scanPointers(t)
	pointerCache.Store(t, p)
	return p
}

func scanPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return false
	case reflect.Array:
		return t.Len() > 0 && scanPointers(t.Elem())
	case reflect.Struct:
		for i := range t.NumField() {
			if scanPointers(t.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		return true
	}
}

// pointerFree reports whether T can live in untyped byte chunks.
func pointerFree[T any]() bool {
	return !hasPointers(reflect.TypeFor[T]())
}
