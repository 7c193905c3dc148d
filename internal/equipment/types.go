package equipment

import (
	"sort"
	"time"
)

// EquipmentType identifies the kind of equipment.
type EquipmentType string

// Equipment type constants.
const (
	TypeShutter     EquipmentType = "shutter"
	TypeDoor        EquipmentType = "door"
	TypeLight       EquipmentType = "light"
	TypeSoundSystem EquipmentType = "sound_system"
)

// AllTypes returns all valid equipment types.
func AllTypes() []EquipmentType {
	return []EquipmentType{TypeShutter, TypeDoor, TypeLight, TypeSoundSystem}
}

// State is an equipment state value. Each type has a two-state vocabulary;
// see States.
type State string

// State constants.
const (
	StateOpen   State = "open"
	StateClosed State = "closed"
	StateOn     State = "on"
	StateOff    State = "off"
)

// Equipment represents one controllable device of a house.
type Equipment struct {
	ID       int           `json:"id"`
	HouseID  int           `json:"house_id"`
	RoomID   *int          `json:"room_id,omitempty"`
	Name     string        `json:"name"`
	Type     EquipmentType `json:"type"`
	State    State         `json:"state"`
	IsActive bool          `json:"is_active"`

	// AllowedRoles restricts visibility and control to holders of one of
	// the listed roles. Nil or empty means unrestricted. The owning role
	// always has full access regardless.
	AllowedRoles []string `json:"allowed_roles,omitempty"`

	LastUpdate *time.Time `json:"last_update,omitempty"`
}

// IsValid reports whether the type is one of the known equipment types.
func (t EquipmentType) IsValid() bool {
	for _, v := range AllTypes() {
		if t == v {
			return true
		}
	}
	return false
}

// States returns the type's legal state vocabulary. Every vocabulary has
// exactly two states and every state may transition to the other,
// indefinitely; there are no terminal states.
func (t EquipmentType) States() []State {
	switch t {
	case TypeShutter, TypeDoor:
		return []State{StateOpen, StateClosed}
	case TypeLight, TypeSoundSystem:
		return []State{StateOn, StateOff}
	default:
		return nil
	}
}

// IsClosedDoor reports whether the equipment is a door in the closed state.
// Closed doors are the only movement obstacle in the floor-plan model.
func (e *Equipment) IsClosedDoor() bool {
	return e.Type == TypeDoor && e.State == StateClosed
}

// VisibleTo reports whether a holder of the given role may see and act on
// the equipment. An empty AllowedRoles set means unrestricted; the owner
// role bypasses the check entirely.
func (e *Equipment) VisibleTo(role string, isOwner bool) bool {
	if isOwner || len(e.AllowedRoles) == 0 {
		return true
	}
	for _, r := range e.AllowedRoles {
		if r == role {
			return true
		}
	}
	return false
}

// SortByID orders equipments by ascending id in place.
func SortByID(equipments []Equipment) {
	sort.Slice(equipments, func(i, j int) bool {
		return equipments[i].ID < equipments[j].ID
	})
}
