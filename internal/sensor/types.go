package sensor

import (
	"sort"
	"time"
)

// SensorType identifies what a sensor measures.
type SensorType string //nolint:revive // sensor.SensorType is clearer than sensor.Type in calling code

// Sensor type constants.
const (
	TypeTemperature SensorType = "temperature"
	TypeLuminosity  SensorType = "luminosity"
	TypeRain        SensorType = "rain"
	TypePresence    SensorType = "presence"
)

// AllTypes returns all valid sensor types.
func AllTypes() []SensorType {
	return []SensorType{TypeTemperature, TypeLuminosity, TypeRain, TypePresence}
}

// Sensor represents one measuring point of a house.
//
// Value is numeric on the wire for every type; rain and presence sensors
// are booleans encoded as 0/1.
type Sensor struct {
	ID       int        `json:"id"`
	HouseID  int        `json:"house_id"`
	RoomID   *int       `json:"room_id,omitempty"`
	Name     string     `json:"name"`
	Type     SensorType `json:"type"`
	Value    float64    `json:"value"`
	Unit     string     `json:"unit"`
	IsActive bool       `json:"is_active"`

	LastUpdate *time.Time `json:"last_update,omitempty"`
}

// IsBinary reports whether the sensor's value is constrained to {0,1}.
func (t SensorType) IsBinary() bool {
	return t == TypeRain || t == TypePresence
}

// IsValid reports whether the type is one of the known sensor types.
func (t SensorType) IsValid() bool {
	for _, v := range AllTypes() {
		if t == v {
			return true
		}
	}
	return false
}

// Validate checks the sensor's type and value constraints.
func (s *Sensor) Validate() error {
	if !s.Type.IsValid() {
		return ErrInvalidType
	}
	if s.Type.IsBinary() && s.Value != 0 && s.Value != 1 {
		return ErrInvalidValue
	}
	return nil
}

// NormalizeValue clamps a candidate value into the type's legal range.
// Binary types coerce any non-zero value to 1; other types pass through.
func (t SensorType) NormalizeValue(value float64) float64 {
	if t.IsBinary() && value != 0 {
		return 1
	}
	return value
}

// SortByID orders sensors by ascending id in place. Listings are kept in
// this order so UI and automation references stay deterministic across
// reloads.
func SortByID(sensors []Sensor) {
	sort.Slice(sensors, func(i, j int) bool {
		return sensors[i].ID < sensors[j].ID
	})
}
