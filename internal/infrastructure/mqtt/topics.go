package mqtt

import "fmt"

// Topic prefixes. The bridge uses a flat scheme rooted at homegrid/:
// house-scoped topics carry the house id, agent topics describe this
// process.
const (
	// TopicPrefix is the base for all bridge topics.
	TopicPrefix = "homegrid"

	// TopicPrefixAgent is the base for agent lifecycle topics.
	TopicPrefixAgent = "homegrid/agent"
)

// Topics provides builders for the bridge's MQTT topics. Using the
// helpers keeps topic naming consistent across publishers and subscribers.
type Topics struct{}

// SensorState returns the topic carrying one sensor's readings.
//
// Example: homegrid/house/4/sensor/7/state
func (Topics) SensorState(houseID, sensorID int) string {
	return fmt.Sprintf("%s/house/%d/sensor/%d/state", TopicPrefix, houseID, sensorID)
}

// EquipmentState returns the topic carrying one equipment's state.
//
// Example: homegrid/house/4/equipment/5/state
func (Topics) EquipmentState(houseID, equipmentID int) string {
	return fmt.Sprintf("%s/house/%d/equipment/%d/state", TopicPrefix, houseID, equipmentID)
}

// EquipmentSet returns the topic local integrations publish to in order
// to drive an equipment through the agent.
//
// Example: homegrid/house/4/equipment/5/set
func (Topics) EquipmentSet(houseID, equipmentID int) string {
	return fmt.Sprintf("%s/house/%d/equipment/%d/set", TopicPrefix, houseID, equipmentID)
}

// HouseEvent returns the topic for house events of one category.
//
// Example: homegrid/house/4/event/automation
func (Topics) HouseEvent(houseID int, category string) string {
	return fmt.Sprintf("%s/house/%d/event/%s", TopicPrefix, houseID, category)
}

// GridUpdated returns the topic announcing floor-plan replacements.
//
// Example: homegrid/house/4/grid
func (Topics) GridUpdated(houseID int) string {
	return fmt.Sprintf("%s/house/%d/grid", TopicPrefix, houseID)
}

// AgentStatus returns the agent lifecycle topic carrying online/offline
// status, including the LWT.
//
// Example: homegrid/agent/status
func (Topics) AgentStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixAgent)
}

// AllSensorStates returns a pattern matching every sensor state topic of
// a house.
//
// Pattern: homegrid/house/4/sensor/+/state
func (Topics) AllSensorStates(houseID int) string {
	return fmt.Sprintf("%s/house/%d/sensor/+/state", TopicPrefix, houseID)
}

// AllEquipmentSets returns a pattern matching every equipment command
// topic of a house.
//
// Pattern: homegrid/house/4/equipment/+/set
func (Topics) AllEquipmentSets(houseID int) string {
	return fmt.Sprintf("%s/house/%d/equipment/+/set", TopicPrefix, houseID)
}

// AllHouseEvents returns a pattern matching every event topic of a house.
//
// Pattern: homegrid/house/4/event/+
func (Topics) AllHouseEvents(houseID int) string {
	return fmt.Sprintf("%s/house/%d/event/+", TopicPrefix, houseID)
}
