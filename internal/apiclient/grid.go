package apiclient

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/avencall/homegrid-core/internal/grid"
)

type gridResponse struct {
	Grid json.RawMessage `json:"grid"`
}

// Grid fetches and decodes a house's floor-plan grid. Both the legacy
// scalar format and the layered format decode transparently.
func (c *Client) Grid(ctx context.Context, houseID int) (grid.Grid, error) {
	var payload gridResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&payload).
		Get(fmt.Sprintf("/api/houses/%d/grid", houseID))
	if err != nil {
		return nil, fmt.Errorf("fetch grid: %w", err)
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	g, err := grid.Decode(payload.Grid)
	if err != nil {
		return nil, fmt.Errorf("decode grid: %w", err)
	}
	c.logger.Debug("grid fetched", "house_id", houseID, "rows", g.Height(), "cols", g.Width())
	return g, nil
}

// SaveGrid uploads a full grid replacement for the house.
func (c *Client) SaveGrid(ctx context.Context, houseID int, g grid.Grid) error {
	raw, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("encode grid: %w", err)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(gridResponse{Grid: raw}).
		Put(fmt.Sprintf("/api/houses/%d/grid", houseID))
	if err != nil {
		return fmt.Errorf("save grid: %w", err)
	}
	return checkStatus(resp)
}
