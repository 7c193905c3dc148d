// Package session holds the agent's live mirror of one house and the
// operations over it.
//
// The mirror (grid, sensors, equipments, rules, user positions) is
// rebuilt from the REST API on every realtime (re)connect and then kept
// current by applying broadcast messages in arrival order. All writes go
// through the backend first; the mirror only ever reflects acknowledged
// state. State changes fan out to the optional sinks: the local event
// history, InfluxDB telemetry and the MQTT bridge.
package session
