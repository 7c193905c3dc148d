package realtime

import "encoding/json"

// Message types broadcast by the backend over the realtime channel.
const (
	TypeSensorUpdate    = "sensor_update"
	TypeEquipmentUpdate = "equipment_update"
	TypeGridUpdate      = "grid_update"
	TypeSensorCRUD      = "sensor_crud"
	TypeEquipmentCRUD   = "equipment_crud"
	TypeRoomCRUD        = "room_crud"
	TypeRuleCRUD        = "automation_rule_crud"
	TypePositionChanged = "user_position_changed"
	TypePositionStopped = "user_position_deactivated"
	TypePing            = "ping"
	TypePong            = "pong"
)

// CRUD actions carried by *_crud messages.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Envelope is the wire frame of every realtime message. HouseID scopes
// the message to one house; zero means unscoped. Data carries the
// type-specific payload and stays raw until a handler decodes it.
type Envelope struct {
	Type    string          `json:"type"`
	HouseID int             `json:"house_id,omitempty"`
	Action  string          `json:"action,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`

	// Raw is the complete frame as received. Position messages carry
	// their payload at the top level rather than under data; handlers
	// decode Raw for those.
	Raw json.RawMessage `json:"-"`
}
