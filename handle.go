package arena

import "fmt"

// Allocator is the block-level allocation contract containers build on.
// Blocks are byte slices whose length is the layout size.
type Allocator interface {
	Allocate(l Layout) ([]byte, error)
	AllocateZeroed(l Layout) ([]byte, error)
	Deallocate(block []byte, l Layout)
	Grow(block []byte, old, new Layout) ([]byte, error)
	GrowZeroed(block []byte, old, new Layout) ([]byte, error)
	Shrink(block []byte, old, new Layout) ([]byte, error)
}

var _ Allocator = Handle{}

// Handle grants allocation from the arena that was active when it was
// created. It is a small value and may be copied freely. The zero Handle
// captures no arena.
//
// Handles implement BumpPolicy: Deallocate never reclaims, Grow and Shrink
// always copy into a fresh block. The old block stays readable until the
// arena is reset or released but must not be used after a resize.
type Handle struct {
	reg *Registry
	id  ID
}

// NewHandle returns a handle bound to the arena id in r.
func NewHandle(r *Registry, id ID) Handle {
	return Handle{reg: r, id: id}
}

// ID returns the captured arena ID; the zero ID when nothing was captured.
func (h Handle) ID() ID {
	return h.id
}

// Valid reports whether the captured arena is still alive.
func (h Handle) Valid() bool {
	_, err := h.arena()
	return err == nil
}

// Policy returns the allocation policy of the handle.
func (h Handle) Policy() Policy {
	return BumpPolicy
}

// Metrics returns the statistics of the captured arena.
func (h Handle) Metrics() (ArenaMetrics, error) {
	a, err := h.arena()
	if err != nil {
		return ArenaMetrics{}, err
	}
	return a.Metrics(), nil
}

func (h Handle) arena() (*Arena, error) {
	if h.reg == nil {
		return nil, ErrNoActiveArena
	}
	return h.reg.lookup(h.id)
}

// Allocate returns a block of exactly l.Size bytes aligned to l.Align.
// Its contents are unspecified.
func (h Handle) Allocate(l Layout) ([]byte, error) {
	return h.allocate("allocate", l, false)
}

// AllocateZeroed is like Allocate but the block is zeroed.
func (h Handle) AllocateZeroed(l Layout) ([]byte, error) {
	return h.allocate("allocate_zeroed", l, true)
}

func (h Handle) allocate(op string, l Layout, zero bool) ([]byte, error) {
	a, err := h.arena()
	if err != nil {
		return nil, allocErr(op, l, err)
	}
	if err := l.Validate(); err != nil {
		return nil, allocErr(op, l, err)
	}
	b, err := a.allocBlock(l, zero)
	if err != nil {
		return nil, allocErr(op, l, err)
	}
	return b, nil
}

// Deallocate does nothing. Blocks are released only with their arena.
func (h Handle) Deallocate(block []byte, l Layout) {
	if a, err := h.arena(); err == nil {
		a.noteDealloc()
	}
}

// Grow copies block into a fresh block of new.Size bytes. The first
// old.Size bytes are preserved and the rest are unspecified.
func (h Handle) Grow(block []byte, old, new Layout) ([]byte, error) {
	return h.resize("grow", block, old, new, false)
}

// GrowZeroed is like Grow but the bytes past old.Size are zeroed.
func (h Handle) GrowZeroed(block []byte, old, new Layout) ([]byte, error) {
	return h.resize("grow_zeroed", block, old, new, true)
}

// Shrink copies the first new.Size bytes of block into a fresh block.
func (h Handle) Shrink(block []byte, old, new Layout) ([]byte, error) {
	return h.resize("shrink", block, old, new, false)
}

func (h Handle) resize(op string, block []byte, old, new Layout, zero bool) ([]byte, error) {
	a, err := h.arena()
	if err != nil {
		return nil, allocErr(op, new, err)
	}
	if err := checkResize(op, block, old, new); err != nil {
		return nil, allocErr(op, new, err)
	}
	b, err := a.resize(block, old, new, zero)
	if err != nil {
		return nil, allocErr(op, new, err)
	}
	return b, nil
}

func checkResize(op string, block []byte, old, new Layout) error {
	if err := old.Validate(); err != nil {
		return err
	}
	if err := new.Validate(); err != nil {
		return err
	}
	if len(block) < old.Size {
		return fmt.Errorf("%w: block of %d bytes smaller than layout %d", ErrInvalidLayout, len(block), old.Size)
	}
	if op == "shrink" {
		if new.Size > old.Size {
			return fmt.Errorf("%w: shrink from %d to %d bytes", ErrInvalidLayout, old.Size, new.Size)
		}
	} else if new.Size < old.Size {
		return fmt.Errorf("%w: grow from %d to %d bytes", ErrInvalidLayout, old.Size, new.Size)
	}
	return nil
}

// allocBlock carves a block for l. Zero-sized layouts get an empty block.
func (a *Arena) allocBlock(l Layout, zero bool) ([]byte, error) {
	if l.Size == 0 {
		return []byte{}, nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	b, err := a.allocLocked(l.Size, l.Align)
	if err != nil {
		return nil, err
	}
	a.stats.allocs++
	if zero {
		clear(b)
	}
	return b, nil
}

// resize moves block into a fresh block for new, copying the bytes both
// layouts share.
func (a *Arena) resize(block []byte, old, new Layout, zero bool) ([]byte, error) {
	if new.Size == 0 {
		return []byte{}, nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	b, err := a.allocLocked(new.Size, new.Align)
	if err != nil {
		return nil, err
	}
	n := copy(b, block[:min(old.Size, new.Size)])
	if zero {
		clear(b[n:])
	}
	a.stats.resizes++
	a.stats.bytesCopied += n
	return b, nil
}

func (a *Arena) noteDealloc() {
	a.mu.Lock()
	a.stats.deallocs++
	a.mu.Unlock()
}
