package telemetry

import (
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/avencall/homegrid-core/internal/equipment"
	"github.com/avencall/homegrid-core/internal/sensor"
)

// WriteSensorReading records one sensor reading. Binary sensor types land
// as 0/1 like any other value, which keeps queries uniform.
func (c *Client) WriteSensorReading(houseID int, s sensor.Sensor) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"sensor_readings",
		map[string]string{
			"house_id":  strconv.Itoa(houseID),
			"sensor_id": strconv.Itoa(s.ID),
			"type":      string(s.Type),
		},
		map[string]interface{}{
			"value": s.Value,
		},
		time.Now(),
	)
	c.writeAPI.WritePoint(point)
}

// WriteEquipmentState records an equipment state transition as a 0/1
// series: 1 for open/on, 0 for closed/off.
func (c *Client) WriteEquipmentState(houseID int, e equipment.Equipment) {
	if !c.IsConnected() {
		return
	}

	active := 0.0
	if e.State == equipment.StateOpen || e.State == equipment.StateOn {
		active = 1.0
	}

	point := write.NewPoint(
		"equipment_states",
		map[string]string{
			"house_id":     strconv.Itoa(houseID),
			"equipment_id": strconv.Itoa(e.ID),
			"type":         string(e.Type),
		},
		map[string]interface{}{
			"active": active,
			"state":  string(e.State),
		},
		time.Now(),
	)
	c.writeAPI.WritePoint(point)
}

// WriteAutomationRound records the size of one trigger evaluation round.
func (c *Client) WriteAutomationRound(houseID, actionsCount int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"automation_rounds",
		map[string]string{
			"house_id": strconv.Itoa(houseID),
		},
		map[string]interface{}{
			"actions_count": actionsCount,
		},
		time.Now(),
	)
	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point for measurements the helpers do not
// cover.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(write.NewPoint(measurement, tags, fields, time.Now()))
}
