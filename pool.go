package arena

import (
	"context"
	"errors"
	"sync"
)

// Pool owns exactly one Arena and registers it so handles can refer to it
// by ID. A Pool must outlive every container built from its handles; Reset
// and Close make outstanding handles fail with ErrArenaReleased.
//
// Pool methods are not synchronized. WithLocking only covers the arena.
type Pool struct {
	arena  *Arena
	reg    *Registry
	id     ID
	base   *Logger // without the arena field
	logger *Logger
	closed bool
}

// NewPool creates an empty arena and registers it.
func NewPool(opts ...Option) *Pool {
	cfg := defaultPoolConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	var mu sync.Locker = noLock{}
	if cfg.locking {
		mu = &sync.Mutex{}
	}
	a := newArena(cfg.chunkSize, cfg.offHeap, mu)

	p := &Pool{arena: a, reg: cfg.registry, base: cfg.logger}
	p.bind(p.reg.register(a))
	p.logger.LogLifecycle("created", a.Metrics())
	return p
}

// ID returns the registry ID of the pool's arena. It changes on Reset.
func (p *Pool) ID() ID {
	return p.id
}

// Registry returns the registry the pool's arena lives in.
func (p *Pool) Registry() *Registry {
	return p.reg
}

// Arena returns the pool's arena.
func (p *Pool) Arena() *Arena {
	return p.arena
}

// Handle returns a handle bound to this pool without activating it.
func (p *Pool) Handle() Handle {
	return Handle{reg: p.reg, id: p.id}
}

// Activate makes p the active pool of s until the returned Guard is released.
func (p *Pool) Activate(s *Scope) *Guard {
	if s == nil {
		panic("arena: Activate with nil Scope")
	}
	return s.push(p)
}

// Scoped runs fn with p active on the scope carried by ctx, creating a
// scope when ctx carries none. The guard is released when fn returns or panics.
func (p *Pool) Scoped(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	s := FromContext(ctx)
	if s == nil {
		s = NewScope()
		ctx = NewContext(ctx, s)
	}
	g := p.Activate(s)
	defer func() {
		if rerr := g.Release(); rerr != nil {
			err = errors.Join(err, rerr)
		}
	}()
	return fn(ctx)
}

// Reset recycles the arena's memory. Handles taken before Reset fail with
// ErrArenaReleased afterwards.
func (p *Pool) Reset() error {
	if p.closed {
		return ErrArenaReleased
	}
	id, err := p.reg.renew(p.id)
	if err != nil {
		return err
	}
	p.logger.LogLifecycle("reset", p.arena.Metrics())
	p.arena.Reset()
	p.bind(id)
	return nil
}

// bind makes id the pool's arena ID and tags later log records with it.
func (p *Pool) bind(id ID) {
	p.id = id
	p.logger = p.base.WithArena(id)
	p.arena.setOnGrow(p.logger.LogChunk)
}

// Close releases the arena and retires its registry slot.
// Closing a closed pool is a no-op.
func (p *Pool) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	p.logger.LogLifecycle("closed", p.arena.Metrics())
	err := p.reg.retire(p.id)
	p.arena.Release()
	return err
}

// Closed reports whether Close has been called.
func (p *Pool) Closed() bool {
	return p.closed
}

// Metrics returns a snapshot of the arena statistics.
func (p *Pool) Metrics() ArenaMetrics {
	return p.arena.Metrics()
}
