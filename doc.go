// Package arena implements a chunked bump allocator (memory arena) for Go,
// a scoped activation protocol that decides which arena new containers draw
// from, and two arena-backed containers.
//
// # Overview
//
// Arenas suit short-lived work such as parsing, batch jobs and
// request-scoped buffers: many allocations, one bulk release.
//
//   - Arena: append-only chunks, aligned carving, no individual free
//   - Pool: owns one Arena and registers it in a Registry
//   - Scope and Guard: the per-goroutine stack of active pools
//   - Handle: a copyable capability that snapshots the active pool
//   - Box and Vec: containers that allocate only through their Handle
//
// # Basic Usage
//
//	pool := arena.NewPool()
//	defer pool.Close()
//
//	scope := arena.NewScope()
//	guard := pool.Activate(scope)
//	defer guard.Release()
//
//	h := scope.Handle()
//	v := arena.NewVec[int](h)
//	v.Push(1)
//	b := arena.NewBox(h, 42)
//
// Pool.Scoped does the same with the scope carried by a context.Context:
//
//	err := pool.Scoped(ctx, func(ctx context.Context) error {
//		v := arena.NewVec[int](arena.HandleFromContext(ctx))
//		v.Push(1)
//		return nil
//	})
//
// # Scoping
//
// A Scope is a stack. Activate pushes, Guard.Release pops and restores the
// previously active pool. Releasing a guard that is not on top returns
// ErrGuardOrder and leaves the scope unchanged. Scopes are not shared
// between goroutines, so each goroutine decides its own active arena.
//
// A Handle stores the registry ID of the arena it captured. After
// Pool.Reset or Pool.Close every such handle fails with ErrArenaReleased
// instead of touching recycled memory.
//
// # Allocation Policy
//
// Handles follow BumpPolicy. Deallocate is a no-op; Grow, GrowZeroed and
// Shrink always carve a fresh block and copy. Every failure, including a
// shrink with no captured arena, is an *AllocError matching ErrAllocFailed.
//
// # Memory Layout
//
// Pointer-free values are carved from byte chunks (64 KiB by default,
// optionally mapped off-heap with WithOffHeap). Values holding pointers are
// carved from typed slabs so the garbage collector still sees them.
//
// # Thread Safety
//
// Arenas take no lock by default. NewSafeArena and WithLocking serialize
// every operation when an arena is shared between goroutines.
//
// # Important Notes
//
//   - Allocated memory is only valid while the arena exists
//   - No individual deallocation - use Reset() or Close() for bulk cleanup
//   - Memory is not zeroed unless requested
//   - Do not use a block after growing or shrinking it
package arena
