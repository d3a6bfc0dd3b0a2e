package arena

import "sync"

// NewSafeArena creates a mutex-protected arena for concurrent access.
// All operations are thread-safe but come with the overhead of mutex locking.
// If chunkSize <= 0, DefaultChunkSize is used.
func NewSafeArena(chunkSize int) *Arena {
	return newArena(chunkSize, false, &sync.Mutex{})
}

// Locking reports whether the arena serializes its operations.
func (a *Arena) Locking() bool {
	_, ok := a.mu.(noLock)
	return !ok
}

// noLock is the locker of arenas used by a single goroutine.
type noLock struct{}

func (noLock) Lock()   {}
func (noLock) Unlock() {}
