package apiclient

import (
	"context"
	"fmt"
	"strconv"

	"github.com/avencall/homegrid-core/internal/sensor"
)

// Sensors lists the sensors of a house.
func (c *Client) Sensors(ctx context.Context, houseID int) ([]sensor.Sensor, error) {
	var sensors []sensor.Sensor
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("house_id", strconv.Itoa(houseID)).
		SetResult(&sensors).
		Get("/api/sensors")
	if err != nil {
		return nil, fmt.Errorf("list sensors: %w", err)
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	sensor.SortByID(sensors)
	return sensors, nil
}

type sensorValueRequest struct {
	Value float64 `json:"value"`
}

// SetSensorValue pushes a new reading for one sensor. The backend treats
// the write as authoritative and broadcasts the update to every client,
// including this one.
func (c *Client) SetSensorValue(ctx context.Context, sensorID int, value float64) (sensor.Sensor, error) {
	var updated sensor.Sensor
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(sensorValueRequest{Value: value}).
		SetResult(&updated).
		Put(fmt.Sprintf("/api/sensors/%d/value", sensorID))
	if err != nil {
		return sensor.Sensor{}, fmt.Errorf("set sensor value: %w", err)
	}
	if err := checkStatus(resp); err != nil {
		return sensor.Sensor{}, err
	}
	c.logger.Debug("sensor value set", "sensor_id", sensorID, "value", value)
	return updated, nil
}
