package arena

// counters are updated under the arena lock.
type counters struct {
	allocs          int
	deallocs        int
	resizes         int
	bytesCopied     int
	typedSlabs      int
	typedCapacity   int
	typedInUse      int
	offHeapFailures int
}

// SizeInUse returns the total number of bytes currently allocated in the arena's
// byte chunks. This includes internal fragmentation due to alignment.
func (a *Arena) SizeInUse() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sizeInUse()
}

func (a *Arena) sizeInUse() int {
	sum := 0
	for _, c := range a.chunks {
		sum += int(c.offset)
	}
	return sum
}

// NumChunks returns the number of chunks currently allocated by the arena.
func (a *Arena) NumChunks() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.chunks)
}

// Capacity returns the total capacity (in bytes) of all chunks in the arena.
func (a *Arena) Capacity() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.capacity()
}

func (a *Arena) capacity() int {
	sum := 0
	for _, c := range a.chunks {
		sum += len(c.buf)
	}
	return sum
}

// Utilization returns the ratio of bytes in use to total capacity (0.0 to 1.0).
// Returns 0.0 if the arena has no capacity.
func (a *Arena) Utilization() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.utilization()
}

func (a *Arena) utilization() float64 {
	capacity := a.capacity()
	if capacity == 0 {
		return 0
	}
	return float64(a.sizeInUse()) / float64(capacity)
}

// ChunkSize returns the default chunk size used by this arena.
func (a *Arena) ChunkSize() int {
	return a.chunkSize
}

// Metrics returns a snapshot of arena statistics.
func (a *Arena) Metrics() ArenaMetrics {
	a.mu.Lock()
	defer a.mu.Unlock()
	offHeap := 0
	for _, c := range a.chunks {
		if c.unmap != nil {
			offHeap++
		}
	}
	return ArenaMetrics{
		SizeInUse:     a.sizeInUse(),
		Capacity:      a.capacity(),
		NumChunks:     len(a.chunks),
		ChunkSize:     a.chunkSize,
		Utilization:   a.utilization(),
		OffHeapChunks: offHeap,
		TypedSlabs:    a.stats.typedSlabs,
		TypedInUse:    a.stats.typedInUse,
		TypedCapacity: a.stats.typedCapacity,
		Allocs:        a.stats.allocs,
		Deallocs:      a.stats.deallocs,
		Resizes:       a.stats.resizes,
		BytesCopied:   a.stats.bytesCopied,
	}
}

// ArenaMetrics contains statistical information about an arena.
type ArenaMetrics struct {
	SizeInUse     int     // Bytes currently allocated from byte chunks
	Capacity      int     // Total capacity in bytes
	NumChunks     int     // Number of chunks
	ChunkSize     int     // Default chunk size
	Utilization   float64 // Ratio of used to total capacity (0.0-1.0)
	OffHeapChunks int     // Chunks mapped outside the Go heap

	TypedSlabs    int // Typed slabs created over the arena's lifetime
	TypedInUse    int // Bytes carved from typed slabs
	TypedCapacity int // Bytes reserved by typed slabs

	Allocs      int // Allocation calls served
	Deallocs    int // Deallocate calls (never reclaimed)
	Resizes     int // Grow and shrink calls served by copying
	BytesCopied int // Bytes moved by resizes
}
