// Package bridge exposes the mirrored house on local MQTT topics.
//
// State flows outward: sensor readings, equipment states and house events
// are published under homegrid/house/<id>/ as they reach the session.
// Commands flow inward: messages on the equipment set topics drive
// equipments through the backend, so local integrations never talk to the
// cloud API directly.
package bridge
