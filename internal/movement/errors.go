package movement

import "errors"

// Domain errors for the movement package.
var (
	// ErrOutOfBounds is returned when a move targets a cell outside the grid.
	ErrOutOfBounds = errors.New("movement: target outside grid")

	// ErrBlocked is returned when a closed door separates the current cell
	// from the target cell.
	ErrBlocked = errors.New("movement: blocked by closed door")
)
