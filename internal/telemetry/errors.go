package telemetry

import "errors"

// Telemetry errors.
var (
	// ErrDisabled is returned by Connect when telemetry is turned off in
	// the configuration.
	ErrDisabled = errors.New("telemetry: influxdb disabled in configuration")

	// ErrConnectionFailed is returned when the InfluxDB server cannot be
	// reached at startup.
	ErrConnectionFailed = errors.New("telemetry: influxdb connection failed")

	// ErrNotConnected is returned when an operation requires an active
	// connection.
	ErrNotConnected = errors.New("telemetry: not connected to influxdb")
)
