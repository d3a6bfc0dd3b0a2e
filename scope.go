package arena

import (
	"context"
	"fmt"
)

// Scope is the stack of pools activated by one goroutine. Handles created
// from a Scope capture whichever pool is on top at that moment; later
// activations do not affect them. A Scope is not safe for concurrent use;
// give each goroutine its own.
type Scope struct {
	stack  []*Guard
	logger *Logger
}

// NewScope creates a scope with no active pool.
func NewScope(opts ...ScopeOption) *Scope {
	cfg := scopeConfig{logger: NoopLogger()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Scope{logger: cfg.logger}
}

// Active returns the pool on top of the scope, or nil.
func (s *Scope) Active() *Pool {
	if s == nil || len(s.stack) == 0 {
		return nil
	}
	return s.stack[len(s.stack)-1].pool
}

// Depth returns the number of live guards.
func (s *Scope) Depth() int {
	if s == nil {
		return 0
	}
	return len(s.stack)
}

// Handle snapshots the active pool. With no active pool the handle captures
// nothing and every allocation fails with ErrNoActiveArena.
func (s *Scope) Handle() Handle {
	if p := s.Active(); p != nil {
		return p.Handle()
	}
	return Handle{}
}

func (s *Scope) push(p *Pool) *Guard {
	g := &Guard{scope: s, pool: p, depth: len(s.stack)}
	s.stack = append(s.stack, g)
	return g
}

// Guard marks its pool active on a Scope. Guards must be released in the
// reverse order of activation.
type Guard struct {
	scope    *Scope
	pool     *Pool
	depth    int
	released bool
}

// Pool returns the pool the guard activated.
func (g *Guard) Pool() *Pool {
	return g.pool
}

// Handle returns a handle bound to the guard's pool.
func (g *Guard) Handle() Handle {
	return g.pool.Handle()
}

// Release pops the guard and restores the previously active pool. A guard
// that is not on top of its scope is left in place and ErrGuardOrder is
// returned.
func (g *Guard) Release() error {
	if g.released {
		return ErrGuardReleased
	}
	s := g.scope
	top := len(s.stack) - 1
	if top < 0 || s.stack[top] != g {
		s.logger.LogGuardOrder(g.pool.id, g.depth, len(s.stack))
		return fmt.Errorf("%w: guard at depth %d, scope depth %d", ErrGuardOrder, g.depth, len(s.stack))
	}
	s.stack[top] = nil
	s.stack = s.stack[:top]
	g.released = true
	return nil
}

type scopeKey struct{}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s *Scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, s)
}

// FromContext returns the scope carried by ctx, or nil.
func FromContext(ctx context.Context) *Scope {
	s, _ := ctx.Value(scopeKey{}).(*Scope)
	return s
}

// HandleFromContext snapshots the active pool of the scope carried by ctx.
func HandleFromContext(ctx context.Context) Handle {
	return FromContext(ctx).Handle()
}
