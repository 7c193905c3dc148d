package grid

import "errors"

// Domain errors for the grid package.
var (
	// ErrRaggedGrid is returned when rows of a decoded grid differ in length.
	ErrRaggedGrid = errors.New("grid: rows differ in length")
)
