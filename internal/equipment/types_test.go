package equipment

import (
	"errors"
	"testing"
)

func TestStatesVocabulary(t *testing.T) {
	tests := []struct {
		typ  EquipmentType
		want []State
	}{
		{TypeShutter, []State{StateOpen, StateClosed}},
		{TypeDoor, []State{StateOpen, StateClosed}},
		{TypeLight, []State{StateOn, StateOff}},
		{TypeSoundSystem, []State{StateOn, StateOff}},
	}

	for _, tt := range tests {
		got := tt.typ.States()
		if len(got) != 2 || got[0] != tt.want[0] || got[1] != tt.want[1] {
			t.Errorf("%s.States() = %v, want %v", tt.typ, got, tt.want)
		}
	}

	if got := EquipmentType("toaster").States(); got != nil {
		t.Errorf("unknown type States() = %v, want nil", got)
	}
}

func TestIsCompatible(t *testing.T) {
	tests := []struct {
		typ   EquipmentType
		state State
		want  bool
	}{
		{TypeDoor, StateOpen, true},
		{TypeDoor, StateClosed, true},
		{TypeDoor, StateOn, false},
		{TypeLight, StateOn, true},
		{TypeLight, StateOpen, false},
		{TypeShutter, StateOff, false},
		{TypeSoundSystem, StateOff, true},
	}

	for _, tt := range tests {
		if got := IsCompatible(tt.typ, tt.state); got != tt.want {
			t.Errorf("IsCompatible(%s, %s) = %v, want %v", tt.typ, tt.state, got, tt.want)
		}
	}
}

func TestToggle(t *testing.T) {
	tests := []struct {
		name string
		e    Equipment
		want State
	}{
		{"door open to closed", Equipment{Type: TypeDoor, State: StateOpen}, StateClosed},
		{"door closed to open", Equipment{Type: TypeDoor, State: StateClosed}, StateOpen},
		{"shutter open to closed", Equipment{Type: TypeShutter, State: StateOpen}, StateClosed},
		{"light on to off", Equipment{Type: TypeLight, State: StateOn}, StateOff},
		{"sound system off to on", Equipment{Type: TypeSoundSystem, State: StateOff}, StateOn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Toggle(&tt.e)
			if err != nil {
				t.Fatalf("Toggle() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Toggle() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestToggleTwiceIsIdentity(t *testing.T) {
	for _, typ := range AllTypes() {
		for _, start := range typ.States() {
			e := Equipment{Type: typ, State: start}

			first, err := Toggle(&e)
			if err != nil {
				t.Fatalf("Toggle(%s %s) error = %v", typ, start, err)
			}
			e.State = first

			second, err := Toggle(&e)
			if err != nil {
				t.Fatalf("Toggle(%s %s) error = %v", typ, first, err)
			}
			if second != start {
				t.Errorf("double toggle of %s from %s ended at %s", typ, start, second)
			}
		}
	}
}

func TestToggleInvalidState(t *testing.T) {
	e := Equipment{Type: TypeLight, State: StateOpen}
	if _, err := Toggle(&e); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Toggle() error = %v, want ErrInvalidState", err)
	}

	e = Equipment{Type: TypeDoor, State: "ajar"}
	if _, err := Toggle(&e); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Toggle() error = %v, want ErrInvalidState", err)
	}
}

func TestIsClosedDoor(t *testing.T) {
	tests := []struct {
		name string
		e    Equipment
		want bool
	}{
		{"closed door", Equipment{Type: TypeDoor, State: StateClosed}, true},
		{"open door", Equipment{Type: TypeDoor, State: StateOpen}, false},
		{"closed shutter", Equipment{Type: TypeShutter, State: StateClosed}, false},
	}

	for _, tt := range tests {
		if got := tt.e.IsClosedDoor(); got != tt.want {
			t.Errorf("%s: IsClosedDoor() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestVisibleTo(t *testing.T) {
	restricted := Equipment{AllowedRoles: []string{"parent", "admin"}}
	open := Equipment{}

	tests := []struct {
		name    string
		e       Equipment
		role    string
		isOwner bool
		want    bool
	}{
		{"unrestricted any role", open, "child", false, true},
		{"restricted allowed role", restricted, "parent", false, true},
		{"restricted denied role", restricted, "child", false, false},
		{"owner bypasses restriction", restricted, "child", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.e.VisibleTo(tt.role, tt.isOwner); got != tt.want {
				t.Errorf("VisibleTo(%q, %v) = %v, want %v", tt.role, tt.isOwner, got, tt.want)
			}
		})
	}
}
