package equipment

import "errors"

// Domain errors for the equipment package.
var (
	// ErrInvalidType is returned when an equipment type is not recognised.
	ErrInvalidType = errors.New("equipment: invalid type")

	// ErrInvalidState is returned when a state is outside the equipment
	// type's vocabulary.
	ErrInvalidState = errors.New("equipment: invalid state")

	// ErrNotFound is returned when an equipment id does not exist in a cache.
	ErrNotFound = errors.New("equipment: not found")
)
