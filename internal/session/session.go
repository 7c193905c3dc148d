package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/avencall/homegrid-core/internal/automation"
	"github.com/avencall/homegrid-core/internal/equipment"
	"github.com/avencall/homegrid-core/internal/grid"
	"github.com/avencall/homegrid-core/internal/history"
	"github.com/avencall/homegrid-core/internal/movement"
	"github.com/avencall/homegrid-core/internal/sensor"
)

// Backend is the slice of the house API the session needs. Satisfied by
// apiclient.Client.
type Backend interface {
	Grid(ctx context.Context, houseID int) (grid.Grid, error)
	SaveGrid(ctx context.Context, houseID int, g grid.Grid) error
	Sensors(ctx context.Context, houseID int) ([]sensor.Sensor, error)
	SetSensorValue(ctx context.Context, sensorID int, value float64) (sensor.Sensor, error)
	Equipments(ctx context.Context, houseID int) ([]equipment.Equipment, error)
	SetEquipmentState(ctx context.Context, equipmentID int, state equipment.State) (equipment.Equipment, error)
	SetEquipmentType(ctx context.Context, equipmentID int, newType equipment.EquipmentType) (equipment.Equipment, error)
	Rules(ctx context.Context, houseID int) ([]automation.Rule, error)
	DeleteRule(ctx context.Context, id int) error
	Trigger(ctx context.Context) (automation.TriggerResult, error)
	Positions(ctx context.Context, houseID int) ([]movement.UserPosition, error)
	SetPosition(ctx context.Context, houseID, x, y int) error
	ClearPosition(ctx context.Context, houseID int) error
}

// Logger is the logging surface the session needs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Recorder appends events to the local history store. Satisfied by
// history.Store.
type Recorder interface {
	Record(ctx context.Context, ev history.Event) error
}

// Metrics receives telemetry points. Satisfied by telemetry.Client.
type Metrics interface {
	WriteSensorReading(houseID int, s sensor.Sensor)
	WriteEquipmentState(houseID int, e equipment.Equipment)
	WriteAutomationRound(houseID, actionsCount int)
}

// Publisher fans state changes out to the local MQTT bridge. Satisfied by
// bridge.Bridge.
type Publisher interface {
	PublishSensorState(houseID int, s sensor.Sensor)
	PublishEquipmentState(houseID int, e equipment.Equipment)
	PublishEvent(houseID int, category string, payload any)
}

// Sinks bundles the optional fan-out targets. Any field may be nil.
type Sinks struct {
	Recorder  Recorder
	Metrics   Metrics
	Publisher Publisher
}

// Options configures a Session.
type Options struct {
	HouseID int

	// Role and IsOwner shape equipment visibility for the status API.
	Role    string
	IsOwner bool

	// AutoTrigger runs an automation round after each sensor write the
	// agent itself performs; round failures are logged, not surfaced.
	AutoTrigger bool

	Backend Backend
	Logger  Logger
	Sinks   Sinks
}

// Session is the agent's live mirror of one house: the floor-plan grid,
// the sensor and equipment caches, the rule index and the position
// tracker, kept current by the realtime dispatcher and resynchronised
// from the REST API after every (re)connect.
type Session struct {
	houseID     int
	role        string
	isOwner     bool
	autoTrigger bool
	backend     Backend
	logger      Logger
	sinks       Sinks

	mu         sync.RWMutex
	grid       grid.Grid
	sensors    map[int]sensor.Sensor
	equipments map[int]equipment.Equipment
	rules      *automation.Index
	lastSync   time.Time

	tracker   *movement.Tracker
	validator *movement.Validator

	walkMu sync.Mutex
	walk   *grid.Coord
}

// New builds an empty session; Resync populates it.
func New(opts Options) *Session {
	s := &Session{
		houseID:     opts.HouseID,
		role:        opts.Role,
		isOwner:     opts.IsOwner,
		autoTrigger: opts.AutoTrigger,
		backend:     opts.Backend,
		logger:      opts.Logger,
		sinks:       opts.Sinks,
		sensors:     make(map[int]sensor.Sensor),
		equipments:  make(map[int]equipment.Equipment),
		rules:       automation.NewIndex(nil),
		tracker:     movement.NewTracker(),
	}
	s.validator = movement.NewValidator(s.lookupEquipment)
	return s
}

// HouseID returns the mirrored house's id.
func (s *Session) HouseID() int {
	return s.houseID
}

// Resync replaces the whole mirror with the backend's authoritative
// state. Called at startup and after every realtime reconnect, since
// messages may have been missed while disconnected.
func (s *Session) Resync(ctx context.Context) error {
	g, err := s.backend.Grid(ctx, s.houseID)
	if err != nil {
		return fmt.Errorf("resync grid: %w", err)
	}
	sensors, err := s.backend.Sensors(ctx, s.houseID)
	if err != nil {
		return fmt.Errorf("resync sensors: %w", err)
	}
	equipments, err := s.backend.Equipments(ctx, s.houseID)
	if err != nil {
		return fmt.Errorf("resync equipments: %w", err)
	}
	rules, err := s.backend.Rules(ctx, s.houseID)
	if err != nil {
		return fmt.Errorf("resync rules: %w", err)
	}
	positions, err := s.backend.Positions(ctx, s.houseID)
	if err != nil {
		return fmt.Errorf("resync positions: %w", err)
	}

	s.mu.Lock()
	s.grid = g
	s.sensors = make(map[int]sensor.Sensor, len(sensors))
	for _, sn := range sensors {
		s.sensors[sn.ID] = sn
	}
	s.equipments = make(map[int]equipment.Equipment, len(equipments))
	for _, e := range equipments {
		s.equipments[e.ID] = e
	}
	s.rules = automation.NewIndex(rules)
	s.lastSync = time.Now().UTC()
	s.mu.Unlock()

	s.tracker.Reset()
	for _, pos := range positions {
		s.tracker.Set(pos)
	}

	s.logger.Info("mirror synchronised",
		"house_id", s.houseID,
		"sensors", len(sensors),
		"equipments", len(equipments),
		"rules", len(rules),
		"positions", len(positions))
	return nil
}

// Grid returns the current floor-plan grid.
func (s *Session) Grid() grid.Grid {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.grid
}

// LastSync returns when the mirror was last rebuilt from the backend.
func (s *Session) LastSync() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSync
}

// Sensor returns one sensor from the mirror.
func (s *Session) Sensor(id int) (sensor.Sensor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sn, ok := s.sensors[id]
	if !ok {
		return sensor.Sensor{}, sensor.ErrNotFound
	}
	return sn, nil
}

// Sensors returns the mirrored sensors ordered by id.
func (s *Session) Sensors() []sensor.Sensor {
	s.mu.RLock()
	out := make([]sensor.Sensor, 0, len(s.sensors))
	for _, sn := range s.sensors {
		out = append(out, sn)
	}
	s.mu.RUnlock()

	sensor.SortByID(out)
	return out
}

// Equipment returns one equipment from the mirror.
func (s *Session) Equipment(id int) (equipment.Equipment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.equipments[id]
	if !ok {
		return equipment.Equipment{}, equipment.ErrNotFound
	}
	return e, nil
}

// Equipments returns the mirrored equipments the session's role may see,
// ordered by id.
func (s *Session) Equipments() []equipment.Equipment {
	s.mu.RLock()
	out := make([]equipment.Equipment, 0, len(s.equipments))
	for _, e := range s.equipments {
		if e.VisibleTo(s.role, s.isOwner) {
			out = append(out, e)
		}
	}
	s.mu.RUnlock()

	equipment.SortByID(out)
	return out
}

// Rules returns the mirrored automation rules ordered by id.
func (s *Session) Rules() []automation.Rule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rules.All()
}

// Positions returns the live user positions ordered by user id.
func (s *Session) Positions() []movement.UserPosition {
	return s.tracker.All()
}

// lookupEquipment feeds the movement validator from the mirror.
func (s *Session) lookupEquipment(id int) (equipment.Equipment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.equipments[id]
	return e, ok
}

// record appends an event to the history store if one is attached.
func (s *Session) record(ctx context.Context, ev history.Event) {
	if s.sinks.Recorder == nil {
		return
	}
	ev.HouseID = s.houseID
	if err := s.sinks.Recorder.Record(ctx, ev); err != nil {
		s.logger.Warn("event history write failed", "category", ev.Category, "error", err)
	}
}
