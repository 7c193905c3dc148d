package grid

import "encoding/json"

// Base value bands. A cell base is a tagged integer: 0 is empty space,
// 1 is exterior (outside the house, walkable), and [2000,3000) encodes
// interior room membership as 2000 + room id.
const (
	BaseEmpty    = 0
	BaseExterior = 1

	roomBaseOffset = 2000
	roomBaseLimit  = 3000
)

// Cell is one position of the floor-plan grid.
//
// Two wire formats exist. The legacy format is a bare integer holding only
// the base value. The layered format is an object carrying the base plus
// sensor and equipment occupancy lists:
//
//	{"base": 2003, "sensors": [4], "equipments": [7, 9]}
//
// Cell normalises both behind one accessor set. The zero value is an empty
// layered cell.
type Cell struct {
	legacy     bool
	base       int
	sensors    []int
	equipments []int
}

// layeredCell is the wire shape of the post-migration format.
// Empty occupancy lists are omitted on output, matching the backend's
// simplified export format.
type layeredCell struct {
	Base       int   `json:"base"`
	Sensors    []int `json:"sensors,omitempty"`
	Equipments []int `json:"equipments,omitempty"`
}

// LegacyCell builds a cell in the legacy scalar format.
func LegacyCell(base int) Cell {
	return Cell{legacy: true, base: base}
}

// LayeredCell builds a cell in the layered format.
func LayeredCell(base int, sensors, equipments []int) Cell {
	return Cell{base: base, sensors: sensors, equipments: equipments}
}

// Base returns the cell's base value. Legacy cells return their scalar
// value; layered cells return the base field (0 when absent).
func (c Cell) Base() int {
	return c.base
}

// Sensors returns the sensor ids occupying the cell.
// Always empty for legacy cells.
func (c Cell) Sensors() []int {
	return c.sensors
}

// Equipments returns the equipment ids occupying the cell.
// Always empty for legacy cells.
func (c Cell) Equipments() []int {
	return c.equipments
}

// IsLegacy reports whether the cell was decoded from the scalar format.
func (c Cell) IsLegacy() bool {
	return c.legacy
}

// RoomID returns the room id encoded in the base value. The second return
// is false when the base is outside the room band.
func (c Cell) RoomID() (int, bool) {
	return RoomIDOf(c.base)
}

// IsExterior reports whether the cell is outside the house. Exterior cells
// are walkable; there is no wall concept beyond closed doors.
func (c Cell) IsExterior() bool {
	return c.base == BaseExterior
}

// RoomIDOf decodes a room id from a base value.
// Valid only for bases in [2000,3000); returns (0, false) otherwise.
func RoomIDOf(base int) (int, bool) {
	if base < roomBaseOffset || base >= roomBaseLimit {
		return 0, false
	}
	return base - roomBaseOffset, true
}

// RoomBase encodes a room id into a base value.
func RoomBase(roomID int) int {
	return roomBaseOffset + roomID
}

// UnmarshalJSON accepts both wire formats. A bare number decodes as a
// legacy cell; an object decodes as a layered cell. Anything else decodes
// as an empty layered cell: one corrupt cell must never abort decoding of
// a whole floor.
func (c *Cell) UnmarshalJSON(data []byte) error {
	var base int
	if err := json.Unmarshal(data, &base); err == nil {
		*c = Cell{legacy: true, base: base}
		return nil
	}

	var layered layeredCell
	if err := json.Unmarshal(data, &layered); err == nil {
		*c = Cell{
			base:       layered.Base,
			sensors:    layered.Sensors,
			equipments: layered.Equipments,
		}
		return nil
	}

	*c = Cell{}
	return nil
}

// MarshalJSON writes the cell back in the format it was decoded from, so a
// round trip never migrates a grid behind the backend's back.
func (c Cell) MarshalJSON() ([]byte, error) {
	if c.legacy {
		return json.Marshal(c.base)
	}
	return json.Marshal(layeredCell{
		Base:       c.base,
		Sensors:    c.sensors,
		Equipments: c.equipments,
	})
}

// withoutSensor returns a copy of the cell with the sensor id removed.
func (c Cell) withoutSensor(id int) Cell {
	c.sensors = removeID(c.sensors, id)
	return c
}

// withoutEquipment returns a copy of the cell with the equipment id removed.
func (c Cell) withoutEquipment(id int) Cell {
	c.equipments = removeID(c.equipments, id)
	return c
}

func removeID(ids []int, id int) []int {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
