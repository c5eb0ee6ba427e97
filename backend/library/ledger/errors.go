package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a component or slot is absent from the snapshot.
	ErrNotFound = errors.New("not found")
	// ErrComponentNotFound and ErrSlotNotFound both match ErrNotFound.
	ErrComponentNotFound = fmt.Errorf("component %w", ErrNotFound)
	ErrSlotNotFound      = fmt.Errorf("slot %w", ErrNotFound)
	// ErrCapacityExceeded is returned when assigning a component with no servings left.
	ErrCapacityExceeded = errors.New("no servings available")
	// ErrIndexOutOfRange is returned for a stale index into a slot list.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrInvariantViolation is returned when serving bounds or references are broken.
	ErrInvariantViolation = errors.New("invariant violation")
	// ErrConcurrentModification is returned by stores when an upsert carries a stale version.
	ErrConcurrentModification = errors.New("concurrent modification")
)
