package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/avencall/homegrid-core/internal/equipment"
	"github.com/avencall/homegrid-core/internal/infrastructure/mqtt"
	"github.com/avencall/homegrid-core/internal/sensor"
)

// Broker is the slice of the MQTT client the bridge needs. Satisfied by
// mqtt.Client.
type Broker interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// EquipmentDriver executes equipment commands received over MQTT.
// Satisfied by session.Session.
type EquipmentDriver interface {
	Equipment(id int) (equipment.Equipment, error)
	ToggleEquipment(ctx context.Context, equipmentID int) (equipment.Equipment, error)
}

// Logger is the logging surface the bridge needs.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Options configures a Bridge.
type Options struct {
	HouseID int
	QoS     byte
	Broker  Broker
	Driver  EquipmentDriver
	Logger  Logger
}

// Bridge mirrors house state onto local MQTT topics and accepts equipment
// commands back. State topics are retained so late subscribers see the
// current value immediately; command topics are not.
type Bridge struct {
	houseID int
	qos     byte
	broker  Broker
	driver  EquipmentDriver
	logger  Logger
	topics  mqtt.Topics
}

// New builds a bridge; Start wires the command subscription.
func New(opts Options) *Bridge {
	return &Bridge{
		houseID: opts.HouseID,
		qos:     opts.QoS,
		broker:  opts.Broker,
		driver:  opts.Driver,
		logger:  opts.Logger,
	}
}

// SetDriver attaches the command executor. The bridge publishes for the
// session and the session drives commands through the bridge's broker, so
// one of the two is wired after construction. Must be called before Start.
func (b *Bridge) SetDriver(driver EquipmentDriver) {
	b.driver = driver
}

// Start subscribes to the house's equipment command topics. ctx bounds the
// command executions, not the subscription itself; the broker client owns
// reconnect handling.
func (b *Bridge) Start(ctx context.Context) error {
	topic := b.topics.AllEquipmentSets(b.houseID)
	return b.broker.Subscribe(topic, b.qos, func(topic string, payload []byte) error {
		return b.handleCommand(ctx, topic, payload)
	})
}

// sensorState is the wire shape of sensor state topics.
type sensorState struct {
	ID       int     `json:"id"`
	Type     string  `json:"type"`
	Value    float64 `json:"value"`
	IsActive bool    `json:"is_active"`
}

// PublishSensorState publishes one sensor reading, retained.
func (b *Bridge) PublishSensorState(houseID int, sn sensor.Sensor) {
	payload, err := json.Marshal(sensorState{
		ID:       sn.ID,
		Type:     string(sn.Type),
		Value:    sn.Value,
		IsActive: sn.IsActive,
	})
	if err != nil {
		return
	}
	topic := b.topics.SensorState(houseID, sn.ID)
	if err := b.broker.Publish(topic, payload, b.qos, true); err != nil {
		b.logger.Warn("sensor state publish failed", "topic", topic, "error", err)
	}
}

// equipmentState is the wire shape of equipment state topics.
type equipmentState struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	State    string `json:"state"`
	IsActive bool   `json:"is_active"`
}

// PublishEquipmentState publishes one equipment state, retained.
func (b *Bridge) PublishEquipmentState(houseID int, e equipment.Equipment) {
	payload, err := json.Marshal(equipmentState{
		ID:       e.ID,
		Name:     e.Name,
		Type:     string(e.Type),
		State:    string(e.State),
		IsActive: e.IsActive,
	})
	if err != nil {
		return
	}
	topic := b.topics.EquipmentState(houseID, e.ID)
	if err := b.broker.Publish(topic, payload, b.qos, true); err != nil {
		b.logger.Warn("equipment state publish failed", "topic", topic, "error", err)
	}
}

// PublishEvent publishes a house event. Events are transient, not retained.
func (b *Bridge) PublishEvent(houseID int, category string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		b.logger.Warn("event payload not serialisable", "category", category, "error", err)
		return
	}
	topic := b.topics.HouseEvent(houseID, category)
	if err := b.broker.Publish(topic, body, b.qos, false); err != nil {
		b.logger.Warn("event publish failed", "topic", topic, "error", err)
	}
}

// command is the wire shape accepted on equipment set topics. "toggle"
// flips the state; a target state is applied only when it differs from the
// current one, so retained commands cannot flap an equipment.
type command struct {
	Action string `json:"action,omitempty"`
	State  string `json:"state,omitempty"`
}

func (b *Bridge) handleCommand(ctx context.Context, topic string, payload []byte) error {
	id, err := equipmentIDFromTopic(topic)
	if err != nil {
		return err
	}

	var cmd command
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedCommand, err)
	}

	switch {
	case cmd.Action == "toggle":
		_, err := b.driver.ToggleEquipment(ctx, id)
		return err
	case cmd.State != "":
		current, err := b.driver.Equipment(id)
		if err != nil {
			return err
		}
		if string(current.State) == cmd.State {
			b.logger.Debug("command is a no-op", "equipment_id", id, "state", cmd.State)
			return nil
		}
		if !equipment.IsCompatible(current.Type, equipment.State(cmd.State)) {
			return fmt.Errorf("%w: %q is not a %s state", ErrMalformedCommand, cmd.State, current.Type)
		}
		_, err = b.driver.ToggleEquipment(ctx, id)
		return err
	default:
		return ErrMalformedCommand
	}
}

// equipmentIDFromTopic extracts the equipment id from a command topic of
// the form homegrid/house/<house>/equipment/<id>/set.
func equipmentIDFromTopic(topic string) (int, error) {
	parts := strings.Split(topic, "/")
	if len(parts) != 6 || parts[3] != "equipment" || parts[5] != "set" {
		return 0, fmt.Errorf("%w: %q", ErrUnexpectedTopic, topic)
	}
	id, err := strconv.Atoi(parts[4])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnexpectedTopic, topic)
	}
	return id, nil
}
