package sensor

import (
	"errors"
	"testing"
)

func TestTypeIsBinary(t *testing.T) {
	tests := []struct {
		typ  SensorType
		want bool
	}{
		{TypeTemperature, false},
		{TypeLuminosity, false},
		{TypeRain, true},
		{TypePresence, true},
	}

	for _, tt := range tests {
		if got := tt.typ.IsBinary(); got != tt.want {
			t.Errorf("%s.IsBinary() = %v, want %v", tt.typ, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		s       Sensor
		wantErr error
	}{
		{"valid temperature", Sensor{Type: TypeTemperature, Value: 21.5}, nil},
		{"valid presence on", Sensor{Type: TypePresence, Value: 1}, nil},
		{"valid rain off", Sensor{Type: TypeRain, Value: 0}, nil},
		{"binary out of range", Sensor{Type: TypePresence, Value: 0.5}, ErrInvalidValue},
		{"unknown type", Sensor{Type: "humidity", Value: 40}, ErrInvalidType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.s.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNormalizeValue(t *testing.T) {
	if got := TypePresence.NormalizeValue(0.7); got != 1 {
		t.Errorf("presence normalize(0.7) = %v, want 1", got)
	}
	if got := TypeRain.NormalizeValue(0); got != 0 {
		t.Errorf("rain normalize(0) = %v, want 0", got)
	}
	if got := TypeTemperature.NormalizeValue(21.5); got != 21.5 {
		t.Errorf("temperature normalize(21.5) = %v, want 21.5", got)
	}
}

func TestSortByID(t *testing.T) {
	sensors := []Sensor{{ID: 9}, {ID: 2}, {ID: 5}}
	SortByID(sensors)

	for i, want := range []int{2, 5, 9} {
		if sensors[i].ID != want {
			t.Fatalf("sorted ids = %v, want [2 5 9]", []int{sensors[0].ID, sensors[1].ID, sensors[2].ID})
		}
	}
}
