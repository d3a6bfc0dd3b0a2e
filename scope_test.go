package arena

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestScopeEmpty(t *testing.T) {
	s := NewScope()
	assert.Nil(t, s.Active())
	assert.Zero(t, s.Depth())

	h := s.Handle()
	_, err := h.Allocate(Layout{Size: 8, Align: 8})
	assert.ErrorIs(t, err, ErrNoActiveArena)

	var nilScope *Scope
	assert.Nil(t, nilScope.Active())
	assert.False(t, nilScope.Handle().Valid())
}

func TestGuardActivateRelease(t *testing.T) {
	p := newTestPool(t)
	s := NewScope()

	g := p.Activate(s)
	assert.Same(t, p, s.Active())
	assert.Same(t, p, g.Pool())
	assert.Equal(t, p.ID(), s.Handle().ID())
	assert.Equal(t, p.ID(), g.Handle().ID())

	v := NewVec[int](s.Handle())
	v.Push(1)
	v.Push(2)
	v.Push(3)
	assert.Equal(t, 3, v.Len())
	assert.Equal(t, []int{1, 2, 3}, v.Slice())

	require.NoError(t, g.Release())
	assert.Nil(t, s.Active())
	assert.ErrorIs(t, g.Release(), ErrGuardReleased)
}

func TestGuardNestingRestoresPrevious(t *testing.T) {
	outer, inner := newTestPool(t), newTestPool(t)
	s := NewScope()

	gOuter := outer.Activate(s)
	gInner := inner.Activate(s)
	assert.Same(t, inner, s.Active())
	assert.Equal(t, 2, s.Depth())

	require.NoError(t, gInner.Release())
	assert.Same(t, outer, s.Active(), "release restores the outer pool")

	require.NoError(t, gOuter.Release())
	assert.Nil(t, s.Active())
}

func TestGuardOutOfOrderRelease(t *testing.T) {
	var logs bytes.Buffer
	logger := NewLogger(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelWarn}))

	outer, inner := newTestPool(t), newTestPool(t)
	s := NewScope(WithScopeLogger(logger))

	g1 := outer.Activate(s)
	g2 := inner.Activate(s)

	err := g1.Release()
	require.ErrorIs(t, err, ErrGuardOrder)
	assert.Same(t, inner, s.Active(), "a rejected release leaves the scope unchanged")
	assert.Equal(t, 2, s.Depth())
	assert.Contains(t, logs.String(), "guard released out of order")

	require.NoError(t, g2.Release())
	require.NoError(t, g1.Release())
	assert.Zero(t, s.Depth())
}

func TestActivateNilScopePanics(t *testing.T) {
	p := newTestPool(t)
	assert.Panics(t, func() { p.Activate(nil) })
}

func TestHandleSnapshotIsFixed(t *testing.T) {
	a, b := newTestPool(t), newTestPool(t)
	s := NewScope()

	before := s.Handle()
	ga := a.Activate(s)
	ha := s.Handle()
	gb := b.Activate(s)

	assert.False(t, before.Valid(), "activation does not reach back into older handles")
	assert.Equal(t, a.ID(), ha.ID(), "later activations do not change a handle")
	assert.Equal(t, b.ID(), s.Handle().ID())

	require.NoError(t, gb.Release())
	require.NoError(t, ga.Release())
	assert.True(t, ha.Valid(), "handles outlive the guard while the pool lives")
}

func TestArenaSwitchIsolation(t *testing.T) {
	a, b := newTestPool(t), newTestPool(t)
	s := NewScope()

	ga := a.Activate(s)
	boxA := NewBox(s.Handle(), [4]int64{1, 2, 3, 4})
	require.NoError(t, ga.Release())
	usedA := a.Metrics().SizeInUse

	gb := b.Activate(s)
	boxB := NewBox(s.Handle(), [4]int64{5, 6, 7, 8})
	boxB.Get()[0] = 50
	require.NoError(t, gb.Release())

	assert.Equal(t, [4]int64{1, 2, 3, 4}, boxA.Value())
	assert.Equal(t, [4]int64{50, 6, 7, 8}, boxB.Value())
	assert.Equal(t, usedA, a.Metrics().SizeInUse, "allocations after the switch do not touch arena A")
	assert.Equal(t, 32, b.Metrics().SizeInUse)
}

func TestContextScope(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, FromContext(ctx))
	assert.False(t, HandleFromContext(ctx).Valid())

	p := newTestPool(t)
	s := NewScope()
	ctx = NewContext(ctx, s)
	assert.Same(t, s, FromContext(ctx))

	g := p.Activate(s)
	defer g.Release()
	assert.Equal(t, p.ID(), HandleFromContext(ctx).ID())
}

func TestPoolScoped(t *testing.T) {
	p := newTestPool(t)

	var captured Handle
	err := p.Scoped(context.Background(), func(ctx context.Context) error {
		s := FromContext(ctx)
		require.NotNil(t, s)
		assert.Same(t, p, s.Active())
		captured = HandleFromContext(ctx)
		v := NewVec[int](captured)
		v.Append(1, 2, 3)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, p.ID(), captured.ID())
}

func TestPoolScopedReusesContextScope(t *testing.T) {
	outer, inner := newTestPool(t), newTestPool(t)
	s := NewScope()
	ctx := NewContext(context.Background(), s)
	g := outer.Activate(s)
	defer g.Release()

	errBoom := errors.New("boom")
	err := inner.Scoped(ctx, func(ctx context.Context) error {
		assert.Same(t, inner, FromContext(ctx).Active())
		assert.Equal(t, 2, s.Depth())
		return errBoom
	})
	assert.ErrorIs(t, err, errBoom)
	assert.Same(t, outer, s.Active())
}

func TestPoolScopedReleasesOnPanic(t *testing.T) {
	p := newTestPool(t)
	s := NewScope()
	ctx := NewContext(context.Background(), s)

	assert.Panics(t, func() {
		_ = p.Scoped(ctx, func(ctx context.Context) error {
			panic("boom")
		})
	})
	assert.Zero(t, s.Depth())
}

func TestPoolScopedReportsOrderViolation(t *testing.T) {
	outer, inner := newTestPool(t), newTestPool(t)
	s := NewScope()
	ctx := NewContext(context.Background(), s)

	var leaked *Guard
	err := outer.Scoped(ctx, func(ctx context.Context) error {
		leaked = inner.Activate(FromContext(ctx))
		return nil
	})
	assert.ErrorIs(t, err, ErrGuardOrder)
	require.NoError(t, leaked.Release())
}

func TestScopesPerGoroutine(t *testing.T) {
	var g errgroup.Group
	for w := 0; w < 8; w++ {
		g.Go(func() error {
			p := NewPool(WithRegistry(NewRegistry()), WithChunkSize(1024))
			defer p.Close()
			return p.Scoped(context.Background(), func(ctx context.Context) error {
				v := NewVec[int](HandleFromContext(ctx))
				for i := range 500 {
					if err := v.TryPush(w*10000 + i); err != nil {
						return err
					}
				}
				for i, x := range v.All() {
					if x != w*10000+i {
						return errors.New("cross-goroutine contamination")
					}
				}
				if HandleFromContext(ctx).ID() != p.ID() {
					return errors.New("wrong arena captured")
				}
				return nil
			})
		})
	}
	require.NoError(t, g.Wait())
}

func TestPoolResetTagsLogsWithNewID(t *testing.T) {
	var logs bytes.Buffer
	logger := NewLogger(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	p := newTestPool(t, WithLogger(logger), WithChunkSize(64))
	require.Equal(t, "0.1", p.ID().String())

	require.NoError(t, p.Reset())
	require.Equal(t, "0.2", p.ID().String())
	assert.Contains(t, logs.String(), "arena=0.1", "the reset record carries the retired ID")

	logs.Reset()
	_, err := p.Handle().Allocate(Layout{Size: 200, Align: 8})
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "arena chunk added")
	assert.Contains(t, logs.String(), "arena=0.2")
	assert.NotContains(t, logs.String(), "arena=0.1")
}
