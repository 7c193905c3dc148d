package session

import (
	"context"
	"fmt"

	"github.com/avencall/homegrid-core/internal/automation"
	"github.com/avencall/homegrid-core/internal/equipment"
	"github.com/avencall/homegrid-core/internal/history"
	"github.com/avencall/homegrid-core/internal/sensor"
)

// SetSensorValue writes a sensor reading through the backend and applies
// the result to the mirror. Binary sensor values are normalised to 0/1
// before the write. With auto-trigger enabled, an automation round
// follows; its failure is logged, not returned, since the write itself
// succeeded.
func (s *Session) SetSensorValue(ctx context.Context, sensorID int, value float64) (sensor.Sensor, error) {
	cached, err := s.Sensor(sensorID)
	if err != nil {
		return sensor.Sensor{}, err
	}
	value = cached.Type.NormalizeValue(value)

	updated, err := s.backend.SetSensorValue(ctx, sensorID, value)
	if err != nil {
		return sensor.Sensor{}, err
	}

	s.mu.Lock()
	s.sensors[updated.ID] = updated
	s.mu.Unlock()
	s.fanOutSensor(ctx, updated)

	if s.autoTrigger {
		s.runAutoTrigger(ctx)
	}
	return updated, nil
}

// ToggleEquipment flips an equipment to its opposite state through the
// backend: open/closed for doors and shutters, on/off for the rest.
func (s *Session) ToggleEquipment(ctx context.Context, equipmentID int) (equipment.Equipment, error) {
	cached, err := s.Equipment(equipmentID)
	if err != nil {
		return equipment.Equipment{}, err
	}
	if !cached.VisibleTo(s.role, s.isOwner) {
		return equipment.Equipment{}, equipment.ErrNotFound
	}

	next, err := equipment.Toggle(&cached)
	if err != nil {
		return equipment.Equipment{}, err
	}

	updated, err := s.backend.SetEquipmentState(ctx, equipmentID, next)
	if err != nil {
		return equipment.Equipment{}, err
	}

	s.mu.Lock()
	s.equipments[updated.ID] = updated
	s.mu.Unlock()
	s.fanOutEquipment(ctx, updated)

	return updated, nil
}

// TypeChangeOutcome reports a completed equipment type change.
type TypeChangeOutcome struct {
	Equipment equipment.Equipment
	Plan      *automation.TypeChangePlan
	Result    *automation.TypeChangeResult
}

// PlanEquipmentTypeChange previews a type change without committing
// anything: which automation rules would be incompatible with the new
// type's state vocabulary.
func (s *Session) PlanEquipmentTypeChange(equipmentID int, newType equipment.EquipmentType) (*automation.TypeChangePlan, error) {
	if _, err := s.Equipment(equipmentID); err != nil {
		return nil, err
	}

	s.mu.RLock()
	idx := s.rules
	s.mu.RUnlock()
	return automation.PlanTypeChange(equipmentID, newType, idx)
}

// ChangeEquipmentType executes the type-change protocol: resolve
// incompatible rules under the chosen policy, then apply the new type.
// With the delete policy, rules are removed one by one and a partial
// failure never aborts the type change; the outcome lists what was
// deleted and what was not. Keeping the rules is an explicit choice that
// leaves them inert until edited.
func (s *Session) ChangeEquipmentType(ctx context.Context, equipmentID int, newType equipment.EquipmentType, policy automation.ResolutionPolicy) (*TypeChangeOutcome, error) {
	plan, err := s.PlanEquipmentTypeChange(equipmentID, newType)
	if err != nil {
		return nil, err
	}

	result, err := plan.Resolve(ctx, policy, s.backend)
	if err != nil {
		return nil, err
	}
	for _, id := range result.Failed {
		s.logger.Warn("incompatible rule not deleted", "rule_id", id, "equipment_id", equipmentID)
	}

	updated, err := s.backend.SetEquipmentType(ctx, equipmentID, newType)
	if err != nil {
		return nil, fmt.Errorf("apply type change: %w", err)
	}

	s.mu.Lock()
	s.equipments[updated.ID] = updated
	s.mu.Unlock()

	// Rule deletions changed the authoritative rule set.
	if rules, err := s.backend.Rules(ctx, s.houseID); err == nil {
		s.mu.Lock()
		s.rules = automation.NewIndex(rules)
		s.mu.Unlock()
	} else {
		s.logger.Warn("rule reload after type change failed", "error", err)
	}

	s.record(ctx, history.Event{
		Category: history.CategoryEquipment,
		RefID:    equipmentID,
		Summary: fmt.Sprintf("type changed to %s (%d rules deleted, %d kept)",
			newType, len(result.Deleted), len(plan.Incompatible)-len(result.Deleted)),
	})
	return &TypeChangeOutcome{Equipment: updated, Plan: plan, Result: result}, nil
}

// TriggerAutomation asks the backend for one evaluation round over every
// active rule and fans the outcome out to the sinks.
func (s *Session) TriggerAutomation(ctx context.Context) (automation.TriggerResult, error) {
	result, err := s.backend.Trigger(ctx)
	if err != nil {
		return automation.TriggerResult{}, err
	}

	if s.sinks.Metrics != nil {
		s.sinks.Metrics.WriteAutomationRound(s.houseID, result.ActionsCount)
	}
	if result.Fired() {
		for _, a := range result.Actions {
			s.logger.Info("automation action",
				"action", a.Action, "equipment", a.EquipmentName, "reason", a.Reason)
		}
		s.record(ctx, history.Event{
			Category: history.CategoryAutomation,
			Summary:  fmt.Sprintf("trigger round fired %d actions", result.ActionsCount),
		})
		if s.sinks.Publisher != nil {
			s.sinks.Publisher.PublishEvent(s.houseID, "automation", result)
		}
	}
	return result, nil
}

// MigrateGrid upgrades a legacy scalar-format grid to the layered format
// and saves it back. A grid already in layered form is left alone.
func (s *Session) MigrateGrid(ctx context.Context) (bool, error) {
	g := s.Grid()
	if !g.IsLegacy() {
		return false, nil
	}

	migrated := g.MigrateToLayers()
	if err := s.backend.SaveGrid(ctx, s.houseID, migrated); err != nil {
		return false, fmt.Errorf("migrate grid: %w", err)
	}

	s.mu.Lock()
	s.grid = migrated
	s.mu.Unlock()

	s.logger.Info("grid migrated to layered format", "rows", migrated.Height(), "cols", migrated.Width())
	s.record(ctx, history.Event{Category: history.CategoryGrid, Summary: "floor plan migrated to layered format"})
	return true, nil
}

// runAutoTrigger performs the round that follows a sensor write. Failures
// are logged, not surfaced, since the write itself succeeded.
func (s *Session) runAutoTrigger(ctx context.Context) {
	if _, err := s.TriggerAutomation(ctx); err != nil {
		s.logger.Warn("auto trigger round failed", "error", err)
	}
}
