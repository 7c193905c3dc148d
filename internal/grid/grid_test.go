package grid

import (
	"errors"
	"reflect"
	"testing"
)

func testGrid() Grid {
	// 3x2 layered grid: exterior border on the left, room 1 on the right.
	return Grid{
		{LayeredCell(BaseExterior, nil, nil), LayeredCell(RoomBase(1), []int{4}, nil), LayeredCell(RoomBase(1), nil, []int{7})},
		{LayeredCell(BaseExterior, nil, nil), LayeredCell(RoomBase(1), nil, []int{7}), LayeredCell(RoomBase(1), []int{4, 5}, nil)},
	}
}

func TestDecodeMixedFormats(t *testing.T) {
	data := []byte(`[[1, {"base": 2001, "sensors": [4]}], [0, 2002]]`)
	g, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}

	if g.Width() != 2 || g.Height() != 2 {
		t.Fatalf("dimensions = %dx%d, want 2x2", g.Width(), g.Height())
	}
	if !g.At(0, 0).IsLegacy() || g.At(0, 0).Base() != BaseExterior {
		t.Errorf("cell (0,0) = %+v, want legacy exterior", g.At(0, 0))
	}
	if got := g.At(1, 0).Sensors(); !reflect.DeepEqual(got, []int{4}) {
		t.Errorf("cell (1,0) sensors = %v, want [4]", got)
	}
	if id, ok := g.At(1, 1).RoomID(); !ok || id != 2 {
		t.Errorf("cell (1,1) room = (%d, %v), want (2, true)", id, ok)
	}
}

func TestDecodeRaggedGrid(t *testing.T) {
	_, err := Decode([]byte(`[[1, 2], [1]]`))
	if !errors.Is(err, ErrRaggedGrid) {
		t.Errorf("Decode() error = %v, want ErrRaggedGrid", err)
	}
}

func TestDecodeNotAnArray(t *testing.T) {
	if _, err := Decode([]byte(`{"grid": []}`)); err == nil {
		t.Error("Decode() of object: expected error, got nil")
	}
}

func TestInBounds(t *testing.T) {
	g := testGrid()

	tests := []struct {
		x, y int
		want bool
	}{
		{0, 0, true},
		{2, 1, true},
		{3, 0, false},
		{0, 2, false},
		{-1, 0, false},
		{0, -1, false},
	}

	for _, tt := range tests {
		if got := g.InBounds(tt.x, tt.y); got != tt.want {
			t.Errorf("InBounds(%d, %d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestAtOutOfBoundsReturnsEmpty(t *testing.T) {
	g := testGrid()
	c := g.At(99, 99)
	if c.Base() != 0 || len(c.Sensors()) != 0 {
		t.Errorf("At(99,99) = %+v, want empty cell", c)
	}
}

func TestMigrateToLayers(t *testing.T) {
	legacy := Grid{
		{LegacyCell(1), LegacyCell(2001)},
		{LegacyCell(0), LegacyCell(2001)},
	}

	migrated := legacy.MigrateToLayers()
	if migrated.IsLegacy() {
		t.Fatal("migrated grid still legacy")
	}
	if migrated.At(1, 0).Base() != 2001 {
		t.Errorf("base not carried over: %d", migrated.At(1, 0).Base())
	}

	// Already-layered grids pass through untouched.
	layered := testGrid()
	if got := layered.MigrateToLayers(); !reflect.DeepEqual(got, layered) {
		t.Error("MigrateToLayers() modified a layered grid")
	}
}

func TestSensorCoverage(t *testing.T) {
	g := testGrid()

	got := g.SensorCoverage(4)
	want := []Coord{{X: 1, Y: 0}, {X: 2, Y: 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SensorCoverage(4) = %v, want %v", got, want)
	}

	if got := g.SensorCoverage(99); got != nil {
		t.Errorf("SensorCoverage(99) = %v, want nil", got)
	}
}

func TestClearSensor(t *testing.T) {
	g := testGrid().ClearSensor(4)

	if got := g.SensorCoverage(4); got != nil {
		t.Errorf("sensor 4 still present after ClearSensor: %v", got)
	}
	// Other sensors survive.
	if got := g.SensorCoverage(5); len(got) != 1 {
		t.Errorf("sensor 5 coverage = %v, want one cell", got)
	}
	// Original untouched.
	if got := testGrid().SensorCoverage(4); len(got) != 2 {
		t.Error("ClearSensor mutated its receiver")
	}
}

func TestClearEquipment(t *testing.T) {
	g := testGrid().ClearEquipment(7)
	if got := g.EquipmentCoverage(7); got != nil {
		t.Errorf("equipment 7 still present after ClearEquipment: %v", got)
	}
}
