package equipment

import "fmt"

// IsCompatible reports whether a state belongs to a type's vocabulary.
//
// Used both for validating direct state changes and for detecting
// automation rules whose action becomes meaningless after an equipment
// type change.
func IsCompatible(t EquipmentType, s State) bool {
	for _, v := range t.States() {
		if v == s {
			return true
		}
	}
	return false
}

// Toggle returns the equipment's opposite state: open/closed for doors and
// shutters, on/off for lights and sound systems.
//
// Toggling is the only state mutation entry point for interactive callers;
// direct state assignment is reserved for applying automation results and
// authoritative realtime updates.
func Toggle(e *Equipment) (State, error) {
	switch e.State {
	case StateOpen:
		if IsCompatible(e.Type, StateClosed) {
			return StateClosed, nil
		}
	case StateClosed:
		if IsCompatible(e.Type, StateOpen) {
			return StateOpen, nil
		}
	case StateOn:
		if IsCompatible(e.Type, StateOff) {
			return StateOff, nil
		}
	case StateOff:
		if IsCompatible(e.Type, StateOn) {
			return StateOn, nil
		}
	}
	return "", fmt.Errorf("%w: %q is not a %s state", ErrInvalidState, e.State, e.Type)
}
