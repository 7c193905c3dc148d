package movement

import (
	"fmt"
	"sort"

	"github.com/avencall/homegrid-core/internal/equipment"
	"github.com/avencall/homegrid-core/internal/grid"
)

// EquipmentLookup resolves an equipment id placed on the grid to its
// current entity, if known. Unknown ids are skipped rather than treated
// as obstacles.
type EquipmentLookup func(id int) (equipment.Equipment, bool)

// Validator decides whether avatar movement between two cells is legal.
//
// The model has a single obstacle rule: a move is allowed when the set of
// closed doors on the destination cell equals the set on the current cell.
// Walking within a space, or through an open door, changes nothing; a
// closed door appearing on (or disappearing from) the path blocks it.
type Validator struct {
	lookup EquipmentLookup
}

// NewValidator returns a validator resolving cell equipment through lookup.
func NewValidator(lookup EquipmentLookup) *Validator {
	return &Validator{lookup: lookup}
}

// ClosedDoors returns the ids of closed doors on the cell at (x, y),
// sorted ascending. Out-of-bounds and legacy cells have no equipment
// layer and yield an empty set.
func (v *Validator) ClosedDoors(g grid.Grid, x, y int) []int {
	var ids []int
	for _, id := range g.At(x, y).Equipments() {
		e, ok := v.lookup(id)
		if !ok {
			continue
		}
		if e.IsClosedDoor() {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids
}

// CanMove validates a step from the current position to the target cell.
// A nil current position means the avatar has not been placed yet and the
// first move is always allowed, bounds permitting.
func (v *Validator) CanMove(g grid.Grid, from *grid.Coord, to grid.Coord) error {
	if !g.InBounds(to.X, to.Y) {
		return fmt.Errorf("%w: (%d, %d)", ErrOutOfBounds, to.X, to.Y)
	}
	if from == nil {
		return nil
	}

	current := v.ClosedDoors(g, from.X, from.Y)
	target := v.ClosedDoors(g, to.X, to.Y)
	if !equalIDSets(current, target) {
		return fmt.Errorf("%w: closed doors %v at (%d, %d)", ErrBlocked, diffIDs(target, current), to.X, to.Y)
	}
	return nil
}

// equalIDSets compares two sorted id slices for set equality.
func equalIDSets(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// diffIDs returns the ids in a that are absent from b. Both inputs are
// sorted; used only to name the blocking doors in error messages.
func diffIDs(a, b []int) []int {
	present := make(map[int]bool, len(b))
	for _, id := range b {
		present[id] = true
	}
	var out []int
	for _, id := range a {
		if !present[id] {
			out = append(out, id)
		}
	}
	if len(out) == 0 {
		return a
	}
	return out
}
