package session

import (
	"context"
	"fmt"

	"github.com/avencall/homegrid-core/internal/grid"
	"github.com/avencall/homegrid-core/internal/history"
	"github.com/avencall/homegrid-core/internal/sensor"
)

// StartWalk places the agent's avatar on the floor plan. The first
// placement is bound only by the grid's dimensions; subsequent steps go
// through MoveTo and the closed-door rule.
func (s *Session) StartWalk(ctx context.Context, x, y int) error {
	s.walkMu.Lock()
	defer s.walkMu.Unlock()

	if s.walk != nil {
		return ErrAlreadyWalking
	}
	if err := s.validator.CanMove(s.Grid(), nil, grid.Coord{X: x, Y: y}); err != nil {
		return err
	}
	if err := s.backend.SetPosition(ctx, s.houseID, x, y); err != nil {
		return err
	}

	s.walk = &grid.Coord{X: x, Y: y}
	s.logger.Info("walk started", "x", x, "y", y)
	s.record(ctx, history.Event{Category: history.CategoryPosition, Summary: fmt.Sprintf("walk started at (%d, %d)", x, y)})
	s.activatePresenceSensors(ctx, x, y)
	return nil
}

// MoveTo steps the avatar to the target cell. The step is legal when the
// target's closed-door set equals the current cell's; crossing a closed
// door is refused locally before the backend sees anything.
func (s *Session) MoveTo(ctx context.Context, x, y int) error {
	s.walkMu.Lock()
	defer s.walkMu.Unlock()

	if s.walk == nil {
		return ErrNotWalking
	}
	if err := s.validator.CanMove(s.Grid(), s.walk, grid.Coord{X: x, Y: y}); err != nil {
		return err
	}
	if err := s.backend.SetPosition(ctx, s.houseID, x, y); err != nil {
		return err
	}

	s.walk = &grid.Coord{X: x, Y: y}
	s.logger.Debug("moved", "x", x, "y", y)
	s.activatePresenceSensors(ctx, x, y)
	return nil
}

// StopWalk withdraws the avatar. The backend recomputes presence sensor
// occupancy from the remaining users.
func (s *Session) StopWalk(ctx context.Context) error {
	s.walkMu.Lock()
	defer s.walkMu.Unlock()

	if s.walk == nil {
		return ErrNotWalking
	}
	if err := s.backend.ClearPosition(ctx, s.houseID); err != nil {
		return err
	}

	s.walk = nil
	s.logger.Info("walk stopped")
	s.record(ctx, history.Event{Category: history.CategoryPosition, Summary: "walk stopped"})
	return nil
}

// Position returns the avatar's current cell, or nil when not walking.
func (s *Session) Position() *grid.Coord {
	s.walkMu.Lock()
	defer s.walkMu.Unlock()
	if s.walk == nil {
		return nil
	}
	pos := *s.walk
	return &pos
}

// activatePresenceSensors writes value 1 to every presence sensor placed
// on the cell just entered. Best effort: a failed write is logged and the
// walk continues, matching the fire-and-forget contract.
func (s *Session) activatePresenceSensors(ctx context.Context, x, y int) {
	for _, id := range s.Grid().At(x, y).Sensors() {
		sn, err := s.Sensor(id)
		if err != nil || sn.Type != sensor.TypePresence {
			continue
		}
		if _, err := s.backend.SetSensorValue(ctx, id, 1); err != nil {
			s.logger.Warn("presence sensor activation failed", "sensor_id", id, "error", err)
		}
	}
}
