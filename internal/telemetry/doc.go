// Package telemetry streams house measurements to InfluxDB: sensor
// readings, equipment state transitions and automation round sizes.
// Writes are batched and asynchronous so a slow or absent InfluxDB never
// stalls the realtime pipeline.
package telemetry
