package apiclient

import (
	"context"
	"fmt"

	"github.com/avencall/homegrid-core/internal/movement"
)

// Positions lists the live user positions of a house.
func (c *Client) Positions(ctx context.Context, houseID int) ([]movement.UserPosition, error) {
	var positions []movement.UserPosition
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&positions).
		Get(fmt.Sprintf("/api/houses/%d/positions", houseID))
	if err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	return positions, nil
}

type positionRequest struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// SetPosition publishes the agent user's position on the floor plan.
func (c *Client) SetPosition(ctx context.Context, houseID, x, y int) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(positionRequest{X: x, Y: y}).
		Post(fmt.Sprintf("/api/houses/%d/positions", houseID))
	if err != nil {
		return fmt.Errorf("set position: %w", err)
	}
	return checkStatus(resp)
}

// ClearPosition withdraws the agent user's position, ending the walk.
func (c *Client) ClearPosition(ctx context.Context, houseID int) error {
	resp, err := c.http.R().
		SetContext(ctx).
		Delete(fmt.Sprintf("/api/houses/%d/positions", houseID))
	if err != nil {
		return fmt.Errorf("clear position: %w", err)
	}
	return checkStatus(resp)
}
