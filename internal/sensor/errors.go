package sensor

import "errors"

// Domain errors for the sensor package.
var (
	// ErrInvalidType is returned when a sensor type is not recognised.
	ErrInvalidType = errors.New("sensor: invalid type")

	// ErrInvalidValue is returned when a binary sensor carries a value
	// outside {0,1}.
	ErrInvalidValue = errors.New("sensor: invalid value")

	// ErrNotFound is returned when a sensor id does not exist in a cache.
	ErrNotFound = errors.New("sensor: not found")
)
