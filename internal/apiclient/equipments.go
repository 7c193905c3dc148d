package apiclient

import (
	"context"
	"fmt"
	"strconv"

	"github.com/avencall/homegrid-core/internal/equipment"
)

// Equipments lists the equipments of a house.
func (c *Client) Equipments(ctx context.Context, houseID int) ([]equipment.Equipment, error) {
	var equipments []equipment.Equipment
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("house_id", strconv.Itoa(houseID)).
		SetResult(&equipments).
		Get("/api/equipments")
	if err != nil {
		return nil, fmt.Errorf("list equipments: %w", err)
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	equipment.SortByID(equipments)
	return equipments, nil
}

type equipmentStateRequest struct {
	State equipment.State `json:"state"`
}

// SetEquipmentState drives one equipment to the given state.
func (c *Client) SetEquipmentState(ctx context.Context, equipmentID int, state equipment.State) (equipment.Equipment, error) {
	var updated equipment.Equipment
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(equipmentStateRequest{State: state}).
		SetResult(&updated).
		Put(fmt.Sprintf("/api/equipments/%d", equipmentID))
	if err != nil {
		return equipment.Equipment{}, fmt.Errorf("set equipment state: %w", err)
	}
	if err := checkStatus(resp); err != nil {
		return equipment.Equipment{}, err
	}
	c.logger.Debug("equipment state set", "equipment_id", equipmentID, "state", state)
	return updated, nil
}

type equipmentTypeRequest struct {
	Type equipment.EquipmentType `json:"type"`
}

// SetEquipmentType changes one equipment's type. Callers resolve
// incompatible automation rules first; the backend accepts the change
// regardless.
func (c *Client) SetEquipmentType(ctx context.Context, equipmentID int, newType equipment.EquipmentType) (equipment.Equipment, error) {
	var updated equipment.Equipment
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(equipmentTypeRequest{Type: newType}).
		SetResult(&updated).
		Put(fmt.Sprintf("/api/equipments/%d", equipmentID))
	if err != nil {
		return equipment.Equipment{}, fmt.Errorf("set equipment type: %w", err)
	}
	if err := checkStatus(resp); err != nil {
		return equipment.Equipment{}, err
	}
	return updated, nil
}
