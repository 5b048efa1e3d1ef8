package domain

import "errors"

var (
	// ErrInvalidTransition is returned when the target status is not an
	// allowed successor of the order's current status.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrNotFound is returned when the entity vanished between read and write.
	ErrNotFound = errors.New("not found")
	// ErrStoreUnavailable wraps network or backend failures on reads and writes.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrGenerationFailure is returned when the text-generation call failed
	// or produced an empty result.
	ErrGenerationFailure = errors.New("text generation failed")
)
