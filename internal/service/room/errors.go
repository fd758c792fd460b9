package room

import "errors"

var (
	// ErrRoomNotFound marks a stateful event that arrived for a room the
	// registry no longer holds. Callers treat it as a silent drop.
	ErrRoomNotFound = errors.New("room not found")

	ErrValidationError = errors.New("validation error")
)
