package arena

import (
	"errors"
	"fmt"
)

var (
	// ErrAllocFailed is matched by every allocation failure returned by a Handle.
	ErrAllocFailed = errors.New("arena: allocation failed")
	// ErrNoActiveArena is returned when a Handle captured no arena.
	ErrNoActiveArena = errors.New("arena: no active arena")
	// ErrArenaReleased is returned when a Handle outlived a Reset or Close of its pool.
	ErrArenaReleased = errors.New("arena: arena released")
	// ErrInvalidLayout is returned for malformed layouts and for grows that
	// shrink or shrinks that grow.
	ErrInvalidLayout = errors.New("arena: invalid layout")
	// ErrCapacityOverflow is returned when a requested capacity does not fit in an int.
	ErrCapacityOverflow = errors.New("arena: capacity overflow")
	// ErrTooLarge is returned when no chunk can be obtained for a block.
	ErrTooLarge = errors.New("arena: block too large")

	// ErrGuardOrder is returned when a Guard is released while a guard
	// activated after it is still live.
	ErrGuardOrder = errors.New("arena: guard released out of order")
	// ErrGuardReleased is returned when a Guard is released twice.
	ErrGuardReleased = errors.New("arena: guard already released")

	// ErrConsumed is the panic value for use of a Box after Unbox or IntoRaw.
	ErrConsumed = errors.New("arena: box already consumed")
)

// AllocError describes a failed allocator operation.
type AllocError struct {
	Op     string
	Layout Layout
	Err    error
}

func (e *AllocError) Error() string {
	return fmt.Sprintf("arena: %s %d bytes (align %d): %v", e.Op, e.Layout.Size, e.Layout.Align, e.Err)
}

func (e *AllocError) Unwrap() error {
	return e.Err
}

// Is makes every AllocError match ErrAllocFailed.
func (e *AllocError) Is(target error) bool {
	return target == ErrAllocFailed
}

func allocErr(op string, l Layout, err error) error {
	return &AllocError{Op: op, Layout: l, Err: err}
}
