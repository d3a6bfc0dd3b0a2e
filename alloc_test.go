package arena

import (
	"fmt"
	"reflect"
	"runtime"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testStruct struct {
	a int64
	b int32
	c int16
	d int8
}

type node struct {
	name string
	next *node
}

func TestAlloc(t *testing.T) {
	a := NewArena(1024)

	ptr := Alloc[int](a)
	require.NotNil(t, ptr)
	assert.Zero(t, *ptr)

	s := Alloc[testStruct](a)
	require.NotNil(t, s)
	assert.Equal(t, testStruct{}, *s)

	*ptr = 42
	s.a = 100
	assert.Equal(t, 42, *ptr)
	assert.Equal(t, int64(100), s.a)
}

func TestAllocZeroedAfterReset(t *testing.T) {
	a := NewArena(1024)
	p := AllocUninitialized[int64](a)
	*p = -1
	a.Reset()

	q := AllocZeroed[int64](a)
	assert.Equal(t, unsafe.Pointer(p), unsafe.Pointer(q), "reset reuses the first chunk")
	assert.Zero(t, *q)
}

func TestAllocSlice(t *testing.T) {
	a := NewArena(1024)

	slice := AllocSlice[int](a, 10)
	assert.Len(t, slice, 10)
	assert.Equal(t, 10, cap(slice))

	assert.Nil(t, AllocSlice[int](a, 0))
	assert.Nil(t, AllocSlice[int](a, -1))

	for i := range slice {
		slice[i] = i * 2
	}
	for i := range slice {
		assert.Equal(t, i*2, slice[i])
	}
}

func TestAllocSliceZeroed(t *testing.T) {
	a := NewArena(1024)
	slice := AllocSliceZeroed[int](a, 5)

	assert.Len(t, slice, 5)
	for i, v := range slice {
		assert.Zero(t, v, "slice[%d]", i)
	}
}

func TestAllocZeroSized(t *testing.T) {
	a := NewArena(1024)
	s := AllocSlice[struct{}](a, 100)
	assert.Len(t, s, 100)
	assert.Zero(t, a.SizeInUse())
}

func TestAllocPointerTypesUseTypedSlabs(t *testing.T) {
	a := NewArena(1024)

	var head *node
	for i := range 100 {
		n := Alloc[node](a)
		n.name = fmt.Sprintf("node-%d", i)
		n.next = head
		head = n
	}
	assert.Zero(t, a.SizeInUse(), "pointer types stay out of byte chunks")
	assert.NotZero(t, a.Metrics().TypedInUse)

	runtime.GC()

	count := 0
	for n := head; n != nil; n = n.next {
		assert.Equal(t, fmt.Sprintf("node-%d", 99-count), n.name)
		count++
	}
	assert.Equal(t, 100, count)
}

func TestHasPointers(t *testing.T) {
	tests := []struct {
		typ  reflect.Type
		want bool
	}{
		{reflect.TypeFor[int](), false},
		{reflect.TypeFor[float64](), false},
		{reflect.TypeFor[testStruct](), false},
		{reflect.TypeFor[[4]uint16](), false},
		{reflect.TypeFor[[0]*int](), false},
		{reflect.TypeFor[string](), true},
		{reflect.TypeFor[[]byte](), true},
		{reflect.TypeFor[*int](), true},
		{reflect.TypeFor[node](), true},
		{reflect.TypeFor[[2]node](), true},
		{reflect.TypeFor[any](), true},
		{reflect.TypeFor[func()](), true},
	}
	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, hasPointers(tt.typ))
		})
	}
}

func TestPtrAndKeepAlive(t *testing.T) {
	a := NewArena(1024)
	ptr := Alloc[int](a)
	*ptr = 42

	result := PtrAndKeepAlive(a, ptr)
	assert.Same(t, ptr, result)
	assert.Equal(t, 42, *result)
}

func TestAllocAlignment(t *testing.T) {
	a := NewArena(1024)

	Alloc[int8](a)
	for i := 0; i < 10; i++ {
		p := Alloc[int64](a)
		addr := uintptr(unsafe.Pointer(p))
		assert.Zero(t, addr%unsafe.Alignof(int64(0)), "pointer %d not aligned: %x", i, addr)
	}
}

func BenchmarkAlloc(b *testing.B) {
	a := NewArena(1024 * 1024)

	b.Run("Alloc[int]", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			Alloc[int](a)
			if i%1000 == 999 {
				a.Reset()
			}
		}
	})

	b.Run("AllocUninitialized[int]", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			AllocUninitialized[int](a)
			if i%1000 == 999 {
				a.Reset()
			}
		}
	})

	b.Run("Alloc[node]", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			Alloc[node](a)
			if i%1000 == 999 {
				a.Reset()
			}
		}
	})
}

func BenchmarkAllocSlice(b *testing.B) {
	a := NewArena(1024 * 1024)
	sizes := []int{10, 100, 1000}

	for _, size := range sizes {
		b.Run(fmt.Sprintf("AllocSlice-%d", size), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				AllocSlice[int](a, size)
				if i%100 == 99 {
					a.Reset()
				}
			}
		})

		b.Run(fmt.Sprintf("AllocSliceZeroed-%d", size), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				AllocSliceZeroed[int](a, size)
				if i%100 == 99 {
					a.Reset()
				}
			}
		})
	}
}
