package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/avencall/homegrid-core/internal/automation"
	"github.com/avencall/homegrid-core/internal/equipment"
	"github.com/avencall/homegrid-core/internal/grid"
	"github.com/avencall/homegrid-core/internal/history"
	"github.com/avencall/homegrid-core/internal/movement"
	"github.com/avencall/homegrid-core/internal/realtime"
	"github.com/avencall/homegrid-core/internal/sensor"
)

// BindDispatcher registers the session's handlers on a realtime
// dispatcher. Updates apply in arrival order with last-write-wins
// semantics; the backend is the single authority, so no merge is
// attempted.
func (s *Session) BindDispatcher(ctx context.Context, d *realtime.Dispatcher) {
	d.Handle(realtime.TypeSensorUpdate, func(env realtime.Envelope) { s.applySensorUpdate(ctx, env) })
	d.Handle(realtime.TypeEquipmentUpdate, func(env realtime.Envelope) { s.applyEquipmentUpdate(ctx, env) })
	d.Handle(realtime.TypeGridUpdate, func(env realtime.Envelope) { s.applyGridUpdate(ctx, env) })
	d.Handle(realtime.TypeSensorCRUD, func(env realtime.Envelope) { s.applySensorCRUD(ctx, env) })
	d.Handle(realtime.TypeEquipmentCRUD, func(env realtime.Envelope) { s.applyEquipmentCRUD(ctx, env) })
	d.Handle(realtime.TypeRoomCRUD, func(env realtime.Envelope) { s.applyRoomCRUD(ctx, env) })
	d.Handle(realtime.TypeRuleCRUD, func(env realtime.Envelope) { s.applyRuleCRUD(ctx, env) })
	d.Handle(realtime.TypePositionChanged, func(env realtime.Envelope) { s.applyPositionChanged(ctx, env) })
	d.Handle(realtime.TypePositionStopped, func(env realtime.Envelope) { s.applyPositionStopped(ctx, env) })
}

func (s *Session) applySensorUpdate(ctx context.Context, env realtime.Envelope) {
	var sn sensor.Sensor
	if err := json.Unmarshal(env.Data, &sn); err != nil {
		s.logger.Warn("malformed sensor update dropped", "error", err)
		return
	}

	s.mu.Lock()
	// Partial updates keep the cached identity fields.
	if cached, ok := s.sensors[sn.ID]; ok {
		cached.Value = sn.Value
		cached.IsActive = sn.IsActive
		if sn.LastUpdate != nil {
			cached.LastUpdate = sn.LastUpdate
		}
		sn = cached
	}
	s.sensors[sn.ID] = sn
	s.mu.Unlock()

	s.logger.Debug("sensor updated", "sensor_id", sn.ID, "value", sn.Value)
	s.fanOutSensor(ctx, sn)
}

func (s *Session) applyEquipmentUpdate(ctx context.Context, env realtime.Envelope) {
	var e equipment.Equipment
	if err := json.Unmarshal(env.Data, &e); err != nil {
		s.logger.Warn("malformed equipment update dropped", "error", err)
		return
	}

	s.mu.Lock()
	if cached, ok := s.equipments[e.ID]; ok {
		cached.State = e.State
		cached.IsActive = e.IsActive
		if e.Type != "" {
			cached.Type = e.Type
		}
		if e.LastUpdate != nil {
			cached.LastUpdate = e.LastUpdate
		}
		e = cached
	}
	s.equipments[e.ID] = e
	s.mu.Unlock()

	s.logger.Debug("equipment updated", "equipment_id", e.ID, "state", e.State)
	s.fanOutEquipment(ctx, e)
}

// applyGridUpdate replaces the mirror's grid. The backend wraps the
// floor plan in the payload: {"grid": [[...]]}.
func (s *Session) applyGridUpdate(ctx context.Context, env realtime.Envelope) {
	var payload struct {
		Grid json.RawMessage `json:"grid"`
	}
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		s.logger.Warn("malformed grid update dropped", "error", err)
		return
	}
	g, err := grid.Decode(payload.Grid)
	if err != nil {
		s.logger.Warn("malformed grid update dropped", "error", err)
		return
	}

	s.mu.Lock()
	s.grid = g
	s.mu.Unlock()

	s.logger.Info("grid replaced", "rows", g.Height(), "cols", g.Width())
	s.record(ctx, history.Event{Category: history.CategoryGrid, Summary: "floor plan replaced"})
	if s.sinks.Publisher != nil {
		s.sinks.Publisher.PublishEvent(s.houseID, "grid", map[string]any{
			"rows": g.Height(),
			"cols": g.Width(),
		})
	}
}

// applySensorCRUD reloads the sensor list. A delete also clears the
// sensor's grid placements so the mirror never references a ghost id.
func (s *Session) applySensorCRUD(ctx context.Context, env realtime.Envelope) {
	sensors, err := s.backend.Sensors(ctx, s.houseID)
	if err != nil {
		s.logger.Error("sensor reload after crud failed", "action", env.Action, "error", err)
		return
	}

	s.mu.Lock()
	s.sensors = make(map[int]sensor.Sensor, len(sensors))
	for _, sn := range sensors {
		s.sensors[sn.ID] = sn
	}
	if env.Action == realtime.ActionDelete {
		if id, ok := crudRefID(env.Data); ok {
			s.grid = s.grid.ClearSensor(id)
		}
	}
	s.mu.Unlock()

	s.logger.Debug("sensors reloaded", "action", env.Action, "count", len(sensors))
	s.record(ctx, history.Event{Category: history.CategorySensor, Summary: fmt.Sprintf("sensor %s", env.Action)})
}

func (s *Session) applyEquipmentCRUD(ctx context.Context, env realtime.Envelope) {
	equipments, err := s.backend.Equipments(ctx, s.houseID)
	if err != nil {
		s.logger.Error("equipment reload after crud failed", "action", env.Action, "error", err)
		return
	}

	s.mu.Lock()
	s.equipments = make(map[int]equipment.Equipment, len(equipments))
	for _, e := range equipments {
		s.equipments[e.ID] = e
	}
	if env.Action == realtime.ActionDelete {
		if id, ok := crudRefID(env.Data); ok {
			s.grid = s.grid.ClearEquipment(id)
		}
	}
	s.mu.Unlock()

	s.logger.Debug("equipments reloaded", "action", env.Action, "count", len(equipments))
	s.record(ctx, history.Event{Category: history.CategoryEquipment, Summary: fmt.Sprintf("equipment %s", env.Action)})
}

// applyRoomCRUD refetches the grid: room changes rewrite cell base tags.
func (s *Session) applyRoomCRUD(ctx context.Context, env realtime.Envelope) {
	g, err := s.backend.Grid(ctx, s.houseID)
	if err != nil {
		s.logger.Error("grid reload after room crud failed", "action", env.Action, "error", err)
		return
	}

	s.mu.Lock()
	s.grid = g
	s.mu.Unlock()

	s.logger.Debug("grid reloaded after room change", "action", env.Action)
	s.record(ctx, history.Event{Category: history.CategoryGrid, Summary: fmt.Sprintf("room %s", env.Action)})
}

func (s *Session) applyRuleCRUD(ctx context.Context, env realtime.Envelope) {
	rules, err := s.backend.Rules(ctx, s.houseID)
	if err != nil {
		s.logger.Error("rule reload after crud failed", "action", env.Action, "error", err)
		return
	}

	s.mu.Lock()
	s.rules = automation.NewIndex(rules)
	s.mu.Unlock()

	s.logger.Debug("rules reloaded", "action", env.Action, "count", len(rules))
	s.record(ctx, history.Event{Category: history.CategoryRule, Summary: fmt.Sprintf("automation rule %s", env.Action)})
}

// positionPayload is the top-level shape of position messages.
type positionPayload struct {
	UserID       int    `json:"user_id"`
	Username     string `json:"username"`
	ProfileImage string `json:"profile_image"`
	X            int    `json:"x"`
	Y            int    `json:"y"`
}

func (s *Session) applyPositionChanged(ctx context.Context, env realtime.Envelope) {
	var p positionPayload
	if err := json.Unmarshal(env.Raw, &p); err != nil {
		s.logger.Warn("malformed position update dropped", "error", err)
		return
	}

	s.tracker.Set(movement.UserPosition{
		UserID:       p.UserID,
		Username:     p.Username,
		ProfileImage: p.ProfileImage,
		X:            p.X,
		Y:            p.Y,
		LastUpdate:   time.Now().UTC(),
	})

	s.logger.Debug("user position changed", "user_id", p.UserID, "x", p.X, "y", p.Y)
	s.record(ctx, history.Event{
		Category: history.CategoryPosition,
		RefID:    p.UserID,
		Summary:  fmt.Sprintf("%s moved to (%d, %d)", p.Username, p.X, p.Y),
	})
}

func (s *Session) applyPositionStopped(ctx context.Context, env realtime.Envelope) {
	var p positionPayload
	if err := json.Unmarshal(env.Raw, &p); err != nil {
		s.logger.Warn("malformed position removal dropped", "error", err)
		return
	}

	s.tracker.Remove(p.UserID)
	s.logger.Debug("user position removed", "user_id", p.UserID)
	s.record(ctx, history.Event{
		Category: history.CategoryPosition,
		RefID:    p.UserID,
		Summary:  "user stopped walking",
	})
}

// fanOutSensor pushes one sensor state to every attached sink.
func (s *Session) fanOutSensor(ctx context.Context, sn sensor.Sensor) {
	s.record(ctx, history.Event{
		Category: history.CategorySensor,
		RefID:    sn.ID,
		Summary:  fmt.Sprintf("%s reading %g", sn.Type, sn.Value),
	})
	if s.sinks.Metrics != nil {
		s.sinks.Metrics.WriteSensorReading(s.houseID, sn)
	}
	if s.sinks.Publisher != nil {
		s.sinks.Publisher.PublishSensorState(s.houseID, sn)
	}
}

// fanOutEquipment pushes one equipment state to every attached sink.
func (s *Session) fanOutEquipment(ctx context.Context, e equipment.Equipment) {
	s.record(ctx, history.Event{
		Category: history.CategoryEquipment,
		RefID:    e.ID,
		Summary:  fmt.Sprintf("%s %s", e.Type, e.State),
	})
	if s.sinks.Metrics != nil {
		s.sinks.Metrics.WriteEquipmentState(s.houseID, e)
	}
	if s.sinks.Publisher != nil {
		s.sinks.Publisher.PublishEquipmentState(s.houseID, e)
	}
}

// crudRefID extracts the entity id from a CRUD payload.
func crudRefID(data json.RawMessage) (int, bool) {
	var payload struct {
		ID int `json:"id"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || payload.ID == 0 {
		return 0, false
	}
	return payload.ID, true
}
