package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/avencall/homegrid-core/internal/automation"
	"github.com/avencall/homegrid-core/internal/equipment"
	"github.com/avencall/homegrid-core/internal/grid"
	"github.com/avencall/homegrid-core/internal/movement"
	"github.com/avencall/homegrid-core/internal/sensor"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// fakeBackend is an in-memory stand-in for the house API.
type fakeBackend struct {
	grid       grid.Grid
	sensors    []sensor.Sensor
	equipments []equipment.Equipment
	rules      []automation.Rule
	positions  []movement.UserPosition

	triggerCalls  int
	positionCalls []string
	valueWrites   map[int]float64
	failDeleteOf  map[int]bool
	deletedRules  []int
}

func newFakeBackend() *fakeBackend {
	g, _ := grid.Decode(json.RawMessage(`[
		[{"base": 2000, "sensors": [7], "equipments": [5]}, {"base": 2000}],
		[{"base": 2001, "sensors": [2]}, 1]
	]`))
	return &fakeBackend{
		grid: g,
		sensors: []sensor.Sensor{
			{ID: 2, HouseID: 4, Type: sensor.TypePresence, Value: 0},
			{ID: 7, HouseID: 4, Type: sensor.TypeTemperature, Value: 20},
		},
		equipments: []equipment.Equipment{
			{ID: 5, HouseID: 4, Name: "Porte salon", Type: equipment.TypeDoor, State: equipment.StateOpen},
			{ID: 9, HouseID: 4, Name: "Lampe cuisine", Type: equipment.TypeLight, State: equipment.StateOff,
				AllowedRoles: []string{"parent"}},
		},
		rules: []automation.Rule{
			{ID: 11, HouseID: 4, SensorID: 7, ConditionOperator: automation.OpGreater, ConditionValue: 25,
				EquipmentID: 5, ActionState: equipment.StateClosed},
		},
		valueWrites:  make(map[int]float64),
		failDeleteOf: make(map[int]bool),
	}
}

func (f *fakeBackend) Grid(context.Context, int) (grid.Grid, error) { return f.grid, nil }
func (f *fakeBackend) SaveGrid(_ context.Context, _ int, g grid.Grid) error {
	f.grid = g
	return nil
}
func (f *fakeBackend) Sensors(context.Context, int) ([]sensor.Sensor, error) {
	return f.sensors, nil
}
func (f *fakeBackend) SetSensorValue(_ context.Context, id int, value float64) (sensor.Sensor, error) {
	f.valueWrites[id] = value
	for i, sn := range f.sensors {
		if sn.ID == id {
			f.sensors[i].Value = value
			return f.sensors[i], nil
		}
	}
	return sensor.Sensor{}, sensor.ErrNotFound
}
func (f *fakeBackend) Equipments(context.Context, int) ([]equipment.Equipment, error) {
	return f.equipments, nil
}
func (f *fakeBackend) SetEquipmentState(_ context.Context, id int, state equipment.State) (equipment.Equipment, error) {
	for i, e := range f.equipments {
		if e.ID == id {
			f.equipments[i].State = state
			return f.equipments[i], nil
		}
	}
	return equipment.Equipment{}, equipment.ErrNotFound
}
func (f *fakeBackend) SetEquipmentType(_ context.Context, id int, newType equipment.EquipmentType) (equipment.Equipment, error) {
	for i, e := range f.equipments {
		if e.ID == id {
			f.equipments[i].Type = newType
			f.equipments[i].State = newType.States()[1]
			return f.equipments[i], nil
		}
	}
	return equipment.Equipment{}, equipment.ErrNotFound
}
func (f *fakeBackend) Rules(context.Context, int) ([]automation.Rule, error) { return f.rules, nil }
func (f *fakeBackend) DeleteRule(_ context.Context, id int) error {
	if f.failDeleteOf[id] {
		return fmt.Errorf("rule %d is locked", id)
	}
	f.deletedRules = append(f.deletedRules, id)
	kept := f.rules[:0]
	for _, r := range f.rules {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	f.rules = kept
	return nil
}
func (f *fakeBackend) Trigger(context.Context) (automation.TriggerResult, error) {
	f.triggerCalls++
	return automation.TriggerResult{}, nil
}
func (f *fakeBackend) Positions(context.Context, int) ([]movement.UserPosition, error) {
	return f.positions, nil
}
func (f *fakeBackend) SetPosition(_ context.Context, _ int, x, y int) error {
	f.positionCalls = append(f.positionCalls, fmt.Sprintf("set %d,%d", x, y))
	return nil
}
func (f *fakeBackend) ClearPosition(context.Context, int) error {
	f.positionCalls = append(f.positionCalls, "clear")
	return nil
}

func testSession(t *testing.T, backend *fakeBackend) *Session {
	t.Helper()
	s := New(Options{
		HouseID:     4,
		Role:        "parent",
		AutoTrigger: true,
		Backend:     backend,
		Logger:      nopLogger{},
	})
	if err := s.Resync(context.Background()); err != nil {
		t.Fatalf("Resync() error = %v", err)
	}
	return s
}

func TestResyncPopulatesMirror(t *testing.T) {
	backend := newFakeBackend()
	backend.positions = []movement.UserPosition{{UserID: 3, Username: "ines", X: 1, Y: 0}}
	s := testSession(t, backend)

	if got := len(s.Sensors()); got != 2 {
		t.Errorf("sensors = %d, want 2", got)
	}
	if got := len(s.Rules()); got != 1 {
		t.Errorf("rules = %d, want 1", got)
	}
	if got := len(s.Positions()); got != 1 {
		t.Errorf("positions = %d, want 1", got)
	}
	if s.Grid().Height() != 2 {
		t.Errorf("grid height = %d, want 2", s.Grid().Height())
	}
	if s.LastSync().IsZero() {
		t.Error("LastSync() is zero after Resync")
	}
}

func TestEquipmentsVisibilityFilter(t *testing.T) {
	backend := newFakeBackend()

	parent := New(Options{HouseID: 4, Role: "parent", Backend: backend, Logger: nopLogger{}})
	parent.Resync(context.Background())
	if got := len(parent.Equipments()); got != 2 {
		t.Errorf("parent sees %d equipments, want 2", got)
	}

	child := New(Options{HouseID: 4, Role: "child", Backend: backend, Logger: nopLogger{}})
	child.Resync(context.Background())
	if got := len(child.Equipments()); got != 1 {
		t.Errorf("child sees %d equipments, want 1", got)
	}

	owner := New(Options{HouseID: 4, Role: "child", IsOwner: true, Backend: backend, Logger: nopLogger{}})
	owner.Resync(context.Background())
	if got := len(owner.Equipments()); got != 2 {
		t.Errorf("owner sees %d equipments, want 2", got)
	}
}

func TestSetSensorValueNormalizesBinary(t *testing.T) {
	backend := newFakeBackend()
	s := testSession(t, backend)

	updated, err := s.SetSensorValue(context.Background(), 2, 0.7)
	if err != nil {
		t.Fatalf("SetSensorValue() error = %v", err)
	}
	if updated.Value != 1 {
		t.Errorf("presence value = %v, want 1", updated.Value)
	}
	if backend.valueWrites[2] != 1 {
		t.Errorf("backend saw %v, want normalised 1", backend.valueWrites[2])
	}

	// Auto-trigger follows the write.
	if backend.triggerCalls != 1 {
		t.Errorf("trigger calls = %d, want one round", backend.triggerCalls)
	}
}

func TestToggleEquipment(t *testing.T) {
	backend := newFakeBackend()
	s := testSession(t, backend)

	updated, err := s.ToggleEquipment(context.Background(), 5)
	if err != nil {
		t.Fatalf("ToggleEquipment() error = %v", err)
	}
	if updated.State != equipment.StateClosed {
		t.Errorf("state = %s, want closed", updated.State)
	}

	cached, _ := s.Equipment(5)
	if cached.State != equipment.StateClosed {
		t.Errorf("mirror state = %s, want closed", cached.State)
	}
}

func TestToggleHiddenEquipmentRefused(t *testing.T) {
	backend := newFakeBackend()
	s := New(Options{HouseID: 4, Role: "child", Backend: backend, Logger: nopLogger{}})
	s.Resync(context.Background())

	if _, err := s.ToggleEquipment(context.Background(), 9); !errors.Is(err, equipment.ErrNotFound) {
		t.Errorf("ToggleEquipment(hidden) error = %v, want ErrNotFound", err)
	}
}

func TestChangeEquipmentTypeDeletesIncompatibleRules(t *testing.T) {
	backend := newFakeBackend()
	s := testSession(t, backend)

	// Door 5 has rule 11 closing it; a light cannot be "closed".
	outcome, err := s.ChangeEquipmentType(context.Background(), 5, equipment.TypeLight, automation.ResolveDelete)
	if err != nil {
		t.Fatalf("ChangeEquipmentType() error = %v", err)
	}

	if len(outcome.Plan.Incompatible) != 1 || outcome.Plan.Incompatible[0].ID != 11 {
		t.Fatalf("plan incompatible = %+v, want rule 11", outcome.Plan.Incompatible)
	}
	if len(outcome.Result.Deleted) != 1 || outcome.Result.Deleted[0] != 11 {
		t.Errorf("deleted = %v, want [11]", outcome.Result.Deleted)
	}
	if outcome.Equipment.Type != equipment.TypeLight {
		t.Errorf("type = %s, want light", outcome.Equipment.Type)
	}
	if got := len(s.Rules()); got != 0 {
		t.Errorf("rules after change = %d, want 0", got)
	}
}

func TestChangeEquipmentTypePartialDeleteFailure(t *testing.T) {
	backend := newFakeBackend()
	backend.rules = append(backend.rules, automation.Rule{
		ID: 12, HouseID: 4, SensorID: 7, ConditionOperator: automation.OpLess, ConditionValue: 5,
		EquipmentID: 5, ActionState: equipment.StateOpen,
	})
	backend.failDeleteOf[11] = true
	s := testSession(t, backend)

	outcome, err := s.ChangeEquipmentType(context.Background(), 5, equipment.TypeLight, automation.ResolveDelete)
	if err != nil {
		t.Fatalf("ChangeEquipmentType() error = %v", err)
	}

	if len(outcome.Result.Failed) != 1 || outcome.Result.Failed[0] != 11 {
		t.Errorf("failed = %v, want [11]", outcome.Result.Failed)
	}
	if len(outcome.Result.Deleted) != 1 || outcome.Result.Deleted[0] != 12 {
		t.Errorf("deleted = %v, want [12]", outcome.Result.Deleted)
	}
	// The type change goes through regardless of the partial failure.
	if outcome.Equipment.Type != equipment.TypeLight {
		t.Errorf("type = %s, want light", outcome.Equipment.Type)
	}
}

func TestMigrateGrid(t *testing.T) {
	backend := newFakeBackend()
	legacy, _ := grid.Decode(json.RawMessage(`[[0, 2000], [1, 2001]]`))
	backend.grid = legacy
	s := testSession(t, backend)

	migrated, err := s.MigrateGrid(context.Background())
	if err != nil {
		t.Fatalf("MigrateGrid() error = %v", err)
	}
	if !migrated {
		t.Fatal("legacy grid should migrate")
	}
	if s.Grid().IsLegacy() {
		t.Error("mirror grid still legacy after migration")
	}
	if backend.grid.IsLegacy() {
		t.Error("saved grid still legacy")
	}

	// Idempotent: a layered grid is left alone.
	migrated, err = s.MigrateGrid(context.Background())
	if err != nil {
		t.Fatalf("second MigrateGrid() error = %v", err)
	}
	if migrated {
		t.Error("layered grid must not migrate again")
	}
}

func TestChangeEquipmentTypeKeepPolicy(t *testing.T) {
	backend := newFakeBackend()
	s := testSession(t, backend)

	outcome, err := s.ChangeEquipmentType(context.Background(), 5, equipment.TypeLight, automation.ResolveKeep)
	if err != nil {
		t.Fatalf("ChangeEquipmentType() error = %v", err)
	}
	if len(backend.deletedRules) != 0 {
		t.Errorf("keep policy deleted %v", backend.deletedRules)
	}
	if len(outcome.Plan.Incompatible) != 1 {
		t.Errorf("plan should still report the incompatible rule")
	}
	if got := len(s.Rules()); got != 1 {
		t.Errorf("rules after keep = %d, want 1", got)
	}
}
