package session

import "errors"

// Walk errors.
var (
	// ErrAlreadyWalking is returned when StartWalk is called with an
	// active walk.
	ErrAlreadyWalking = errors.New("session: already walking")

	// ErrNotWalking is returned when MoveTo or StopWalk is called without
	// an active walk.
	ErrNotWalking = errors.New("session: not walking")
)
