package arena

import (
	"fmt"
	"sync"

	"github.com/bits-and-blooms/bitset"
)

// ID identifies an arena registered in a Registry. The zero ID names no arena.
type ID struct {
	Index uint32
	Gen   uint32
}

// IsZero reports whether id names no arena.
func (id ID) IsZero() bool {
	return id.Gen == 0
}

func (id ID) String() string {
	return fmt.Sprintf("%d.%d", id.Index, id.Gen)
}

type slot struct {
	arena *Arena
	gen   uint32
}

// Registry indexes live arenas so handles can hold an ID instead of a
// pointer and detect when the arena behind it was reset or released.
// A Registry is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	slots []slot
	free  *bitset.BitSet // set bits are reusable slots
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{free: bitset.New(0)}
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the registry pools use unless WithRegistry is given.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

func (r *Registry) register(a *Arena) ID {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i, ok := r.free.NextSet(0); ok {
		r.free.Clear(i)
		s := &r.slots[i]
		s.arena = a
		s.gen = nextGen(s.gen)
		return ID{Index: uint32(i), Gen: s.gen}
	}
	r.slots = append(r.slots, slot{arena: a, gen: 1})
	return ID{Index: uint32(len(r.slots) - 1), Gen: 1}
}

// renew invalidates id and returns a fresh ID for the same arena.
func (r *Registry) renew(id ID) (ID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.slotLocked(id)
	if err != nil {
		return ID{}, err
	}
	s.gen = nextGen(s.gen)
	return ID{Index: id.Index, Gen: s.gen}, nil
}

// retire invalidates id and frees its slot for reuse.
func (r *Registry) retire(id ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.slotLocked(id)
	if err != nil {
		return err
	}
	s.arena = nil
	s.gen = nextGen(s.gen)
	r.free.Set(uint(id.Index))
	return nil
}

func (r *Registry) lookup(id ID) (*Arena, error) {
	if id.IsZero() {
		return nil, ErrNoActiveArena
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if int(id.Index) >= len(r.slots) {
		return nil, fmt.Errorf("%w: unknown arena %s", ErrArenaReleased, id)
	}
	s := r.slots[id.Index]
	if s.gen != id.Gen || s.arena == nil {
		return nil, fmt.Errorf("%w: arena %s is stale", ErrArenaReleased, id)
	}
	return s.arena, nil
}

func (r *Registry) slotLocked(id ID) (*slot, error) {
	if id.IsZero() {
		return nil, ErrNoActiveArena
	}
	if int(id.Index) >= len(r.slots) || r.slots[id.Index].gen != id.Gen || r.slots[id.Index].arena == nil {
		return nil, fmt.Errorf("%w: arena %s is stale", ErrArenaReleased, id)
	}
	return &r.slots[id.Index], nil
}

// Live returns the number of registered arenas.
func (r *Registry) Live() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.slots) - int(r.free.Count())
}

// Alive reports whether id still names a registered arena.
func (r *Registry) Alive(id ID) bool {
	_, err := r.lookup(id)
	return err == nil
}

func nextGen(gen uint32) uint32 {
	gen++
	if gen == 0 {
		gen = 1
	}
	return gen
}
