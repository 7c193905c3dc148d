package grid

import "encoding/json"

// Grid is the floor plan: a rectangular 2-D array of cells, indexed
// grid[y][x] to match the backend's row-major wire encoding.
//
// Grid values are treated as immutable snapshots by callers; realtime
// grid updates replace the whole value rather than patching cells.
type Grid [][]Cell

// Decode parses a grid from its JSON wire form. Both cell formats may be
// mixed within one grid. Malformed individual cells decode as empty cells;
// only a structurally broken document (not a 2-D array) is an error.
func Decode(data []byte) (Grid, error) {
	var g Grid
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, err
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Height returns the number of rows.
func (g Grid) Height() int {
	return len(g)
}

// Width returns the number of columns, taken from the first row.
// Zero for an empty grid.
func (g Grid) Width() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// Validate checks the rectangular invariant: every row has the same length.
func (g Grid) Validate() error {
	w := g.Width()
	for _, row := range g {
		if len(row) != w {
			return ErrRaggedGrid
		}
	}
	return nil
}

// InBounds reports whether (x, y) addresses a cell of the grid. Bounds come
// from the grid actually in use, never from externally stored house
// dimensions, which may be stale.
func (g Grid) InBounds(x, y int) bool {
	return y >= 0 && y < g.Height() && x >= 0 && x < g.Width()
}

// At returns the cell at (x, y). Out-of-bounds coordinates return an empty
// cell; bounds checking belongs to the caller via InBounds.
func (g Grid) At(x, y int) Cell {
	if !g.InBounds(x, y) {
		return Cell{}
	}
	return g[y][x]
}

// IsLegacy reports whether the grid is in the pre-migration scalar format,
// judged by its first cell as the backend does.
func (g Grid) IsLegacy() bool {
	if g.Height() == 0 || g.Width() == 0 {
		return false
	}
	return g[0][0].IsLegacy()
}

// MigrateToLayers converts a legacy grid to the layered format, carrying
// base values over with empty occupancy lists. Layered grids are returned
// unchanged.
func (g Grid) MigrateToLayers() Grid {
	if !g.IsLegacy() {
		return g
	}
	out := make(Grid, len(g))
	for y, row := range g {
		out[y] = make([]Cell, len(row))
		for x, cell := range row {
			out[y][x] = LayeredCell(cell.Base(), nil, nil)
		}
	}
	return out
}

// SensorCoverage returns the coordinates of every cell occupied by the
// sensor, in row-major order. Legacy grids have no occupancy and return nil.
func (g Grid) SensorCoverage(sensorID int) []Coord {
	var coords []Coord
	for y, row := range g {
		for x, cell := range row {
			if containsID(cell.Sensors(), sensorID) {
				coords = append(coords, Coord{X: x, Y: y})
			}
		}
	}
	return coords
}

// EquipmentCoverage returns the coordinates of every cell occupied by the
// equipment, in row-major order.
func (g Grid) EquipmentCoverage(equipmentID int) []Coord {
	var coords []Coord
	for y, row := range g {
		for x, cell := range row {
			if containsID(cell.Equipments(), equipmentID) {
				coords = append(coords, Coord{X: x, Y: y})
			}
		}
	}
	return coords
}

// ClearSensor returns a copy of the grid with the sensor id removed from
// every cell. Used when a sensor_crud delete arrives so the occupancy lists
// cannot keep a dangling id while the collection reload races the event.
func (g Grid) ClearSensor(sensorID int) Grid {
	out := make(Grid, len(g))
	for y, row := range g {
		out[y] = make([]Cell, len(row))
		for x, cell := range row {
			out[y][x] = cell.withoutSensor(sensorID)
		}
	}
	return out
}

// ClearEquipment returns a copy of the grid with the equipment id removed
// from every cell.
func (g Grid) ClearEquipment(equipmentID int) Grid {
	out := make(Grid, len(g))
	for y, row := range g {
		out[y] = make([]Cell, len(row))
		for x, cell := range row {
			out[y][x] = cell.withoutEquipment(equipmentID)
		}
	}
	return out
}

// Coord is a grid position. X is the column, Y the row.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func containsID(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
