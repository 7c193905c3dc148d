// Package movement implements avatar movement over the floor-plan grid.
//
// Validator applies the closed-door rule: a step is legal when the closed
// doors of the target cell are exactly the closed doors of the current
// cell, compared as sets. Tracker mirrors the live positions of every
// user in the house as the backend broadcasts them.
package movement
