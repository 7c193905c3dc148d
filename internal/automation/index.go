package automation

import (
	"github.com/avencall/homegrid-core/internal/equipment"
)

// Index is an in-memory view over a house's automation rules with lookups
// by the entities a rule references. It is a value snapshot; callers
// rebuild it from the authoritative rule list after CRUD notifications.
type Index struct {
	rules       []Rule
	byEquipment map[int][]int
	bySensor    map[int][]int
}

// NewIndex builds an index over a copy of the given rules, ordered by id.
func NewIndex(rules []Rule) *Index {
	idx := &Index{
		rules:       make([]Rule, len(rules)),
		byEquipment: make(map[int][]int),
		bySensor:    make(map[int][]int),
	}
	copy(idx.rules, rules)
	SortByID(idx.rules)

	for i, r := range idx.rules {
		idx.byEquipment[r.EquipmentID] = append(idx.byEquipment[r.EquipmentID], i)
		idx.bySensor[r.SensorID] = append(idx.bySensor[r.SensorID], i)
	}
	return idx
}

// Len returns the number of indexed rules.
func (idx *Index) Len() int {
	return len(idx.rules)
}

// All returns the indexed rules ordered by id.
func (idx *Index) All() []Rule {
	out := make([]Rule, len(idx.rules))
	copy(out, idx.rules)
	return out
}

// ByID returns the rule with the given id.
func (idx *Index) ByID(id int) (Rule, error) {
	for _, r := range idx.rules {
		if r.ID == id {
			return r, nil
		}
	}
	return Rule{}, ErrNotFound
}

// ByEquipment returns the rules targeting the given equipment, ordered by id.
func (idx *Index) ByEquipment(equipmentID int) []Rule {
	return idx.collect(idx.byEquipment[equipmentID])
}

// BySensor returns the rules conditioned on the given sensor, ordered by id.
func (idx *Index) BySensor(sensorID int) []Rule {
	return idx.collect(idx.bySensor[sensorID])
}

// IncompatibleWith returns the rules whose action_state falls outside the
// vocabulary the equipment would have after changing to newType. These are
// the rules that must be deleted, or knowingly kept broken, before the
// type change goes through.
func (idx *Index) IncompatibleWith(equipmentID int, newType equipment.EquipmentType) []Rule {
	var out []Rule
	for _, r := range idx.ByEquipment(equipmentID) {
		if !equipment.IsCompatible(newType, r.ActionState) {
			out = append(out, r)
		}
	}
	return out
}

func (idx *Index) collect(positions []int) []Rule {
	if len(positions) == 0 {
		return nil
	}
	out := make([]Rule, 0, len(positions))
	for _, i := range positions {
		out = append(out, idx.rules[i])
	}
	return out
}
