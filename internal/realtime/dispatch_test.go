package realtime

import (
	"encoding/json"
	"testing"
)

type testLogger struct {
	warns []string
}

func (l *testLogger) Debug(string, ...any) {}
func (l *testLogger) Info(string, ...any)  {}
func (l *testLogger) Warn(msg string, _ ...any) {
	l.warns = append(l.warns, msg)
}
func (l *testLogger) Error(string, ...any) {}

func TestDispatchRouting(t *testing.T) {
	d := NewDispatcher(4, &testLogger{})

	var got Envelope
	d.Handle(TypeSensorUpdate, func(env Envelope) { got = env })

	d.Dispatch(Envelope{Type: TypeSensorUpdate, HouseID: 4, Data: json.RawMessage(`{"id": 7}`)})
	if got.Type != TypeSensorUpdate || string(got.Data) != `{"id": 7}` {
		t.Errorf("handler saw %+v", got)
	}
}

func TestDispatchHouseScope(t *testing.T) {
	d := NewDispatcher(4, &testLogger{})

	called := false
	d.Handle(TypeEquipmentUpdate, func(Envelope) { called = true })

	d.Dispatch(Envelope{Type: TypeEquipmentUpdate, HouseID: 9})
	if called {
		t.Error("handler ran for another house's message")
	}

	// Unscoped messages pass.
	d.Dispatch(Envelope{Type: TypeEquipmentUpdate})
	if !called {
		t.Error("handler did not run for unscoped message")
	}
}

func TestDispatchUnknownTypeIgnored(t *testing.T) {
	logger := &testLogger{}
	d := NewDispatcher(4, logger)

	d.Dispatch(Envelope{Type: "house_renamed", HouseID: 4})
	if len(logger.warns) != 1 {
		t.Errorf("warns = %v, want one unknown-type warning", logger.warns)
	}
}

func TestDispatchPongAbsorbed(t *testing.T) {
	logger := &testLogger{}
	d := NewDispatcher(4, logger)

	d.Dispatch(Envelope{Type: TypePong})
	if len(logger.warns) != 0 {
		t.Errorf("pong produced warnings: %v", logger.warns)
	}
}
