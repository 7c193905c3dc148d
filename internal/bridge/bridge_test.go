package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/avencall/homegrid-core/internal/equipment"
	"github.com/avencall/homegrid-core/internal/infrastructure/mqtt"
	"github.com/avencall/homegrid-core/internal/sensor"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

type published struct {
	topic    string
	payload  []byte
	retained bool
}

type fakeBroker struct {
	published []published
	handlers  map[string]mqtt.MessageHandler
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{handlers: make(map[string]mqtt.MessageHandler)}
}

func (f *fakeBroker) Publish(topic string, payload []byte, _ byte, retained bool) error {
	f.published = append(f.published, published{topic: topic, payload: payload, retained: retained})
	return nil
}

func (f *fakeBroker) Subscribe(topic string, _ byte, handler mqtt.MessageHandler) error {
	f.handlers[topic] = handler
	return nil
}

// deliver routes a message the way the broker would, matching the single
// wildcard level used by the command subscription.
func (f *fakeBroker) deliver(topic string, payload []byte) error {
	for _, handler := range f.handlers {
		return handler(topic, payload)
	}
	return errors.New("no subscription")
}

type fakeDriver struct {
	equipments map[int]equipment.Equipment
	toggled    []int
}

func (f *fakeDriver) Equipment(id int) (equipment.Equipment, error) {
	e, ok := f.equipments[id]
	if !ok {
		return equipment.Equipment{}, equipment.ErrNotFound
	}
	return e, nil
}

func (f *fakeDriver) ToggleEquipment(_ context.Context, id int) (equipment.Equipment, error) {
	e, ok := f.equipments[id]
	if !ok {
		return equipment.Equipment{}, equipment.ErrNotFound
	}
	f.toggled = append(f.toggled, id)
	return e, nil
}

func testBridge(t *testing.T) (*Bridge, *fakeBroker, *fakeDriver) {
	t.Helper()
	broker := newFakeBroker()
	driver := &fakeDriver{equipments: map[int]equipment.Equipment{
		5: {ID: 5, Type: equipment.TypeDoor, State: equipment.StateOpen},
	}}
	b := New(Options{HouseID: 4, QoS: 1, Broker: broker, Driver: driver, Logger: nopLogger{}})
	if err := b.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	return b, broker, driver
}

func TestStartSubscribesToCommandTopic(t *testing.T) {
	_, broker, _ := testBridge(t)
	if _, ok := broker.handlers["homegrid/house/4/equipment/+/set"]; !ok {
		t.Errorf("subscriptions = %v, want equipment set pattern", broker.handlers)
	}
}

func TestPublishSensorStateRetained(t *testing.T) {
	b, broker, _ := testBridge(t)

	b.PublishSensorState(4, sensor.Sensor{ID: 7, Type: sensor.TypeTemperature, Value: 21.5, IsActive: true})

	if len(broker.published) != 1 {
		t.Fatalf("published %d messages, want 1", len(broker.published))
	}
	msg := broker.published[0]
	if msg.topic != "homegrid/house/4/sensor/7/state" {
		t.Errorf("topic = %q", msg.topic)
	}
	if !msg.retained {
		t.Error("state topics must be retained")
	}

	var state sensorState
	if err := json.Unmarshal(msg.payload, &state); err != nil {
		t.Fatalf("payload not JSON: %v", err)
	}
	if state.Value != 21.5 || state.Type != "temperature" {
		t.Errorf("payload = %+v", state)
	}
}

func TestPublishEquipmentStateRetained(t *testing.T) {
	b, broker, _ := testBridge(t)

	b.PublishEquipmentState(4, equipment.Equipment{
		ID: 5, Name: "Porte salon", Type: equipment.TypeDoor, State: equipment.StateClosed, IsActive: true,
	})

	msg := broker.published[0]
	if msg.topic != "homegrid/house/4/equipment/5/state" || !msg.retained {
		t.Errorf("message = %+v", msg)
	}
}

func TestPublishEventNotRetained(t *testing.T) {
	b, broker, _ := testBridge(t)

	b.PublishEvent(4, "automation", map[string]any{"actions_count": 2})

	msg := broker.published[0]
	if msg.topic != "homegrid/house/4/event/automation" {
		t.Errorf("topic = %q", msg.topic)
	}
	if msg.retained {
		t.Error("event topics must not be retained")
	}
}

func TestToggleCommand(t *testing.T) {
	_, broker, driver := testBridge(t)

	err := broker.deliver("homegrid/house/4/equipment/5/set", []byte(`{"action": "toggle"}`))
	if err != nil {
		t.Fatalf("deliver error = %v", err)
	}
	if len(driver.toggled) != 1 || driver.toggled[0] != 5 {
		t.Errorf("toggled = %v, want [5]", driver.toggled)
	}
}

func TestStateCommand(t *testing.T) {
	_, broker, driver := testBridge(t)

	// Door is open; asking for closed flips it.
	if err := broker.deliver("homegrid/house/4/equipment/5/set", []byte(`{"state": "closed"}`)); err != nil {
		t.Fatalf("deliver error = %v", err)
	}
	if len(driver.toggled) != 1 {
		t.Fatalf("toggled = %v, want one toggle", driver.toggled)
	}
}

func TestStateCommandNoOp(t *testing.T) {
	_, broker, driver := testBridge(t)

	// Door is already open; a retained "open" command must not flap it.
	if err := broker.deliver("homegrid/house/4/equipment/5/set", []byte(`{"state": "open"}`)); err != nil {
		t.Fatalf("deliver error = %v", err)
	}
	if len(driver.toggled) != 0 {
		t.Errorf("toggled = %v, want none", driver.toggled)
	}
}

func TestCommandErrors(t *testing.T) {
	tests := []struct {
		name    string
		topic   string
		payload string
		wantErr error
	}{
		{"bad topic", "homegrid/house/4/equipment/set", `{"action": "toggle"}`, ErrUnexpectedTopic},
		{"non-numeric id", "homegrid/house/4/equipment/abc/set", `{"action": "toggle"}`, ErrUnexpectedTopic},
		{"bad json", "homegrid/house/4/equipment/5/set", `nope`, ErrMalformedCommand},
		{"empty command", "homegrid/house/4/equipment/5/set", `{}`, ErrMalformedCommand},
		{"wrong vocabulary", "homegrid/house/4/equipment/5/set", `{"state": "on"}`, ErrMalformedCommand},
		{"unknown equipment", "homegrid/house/4/equipment/42/set", `{"action": "toggle"}`, equipment.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, broker, _ := testBridge(t)
			err := broker.deliver(tt.topic, []byte(tt.payload))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("deliver error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
