// Package sensor defines the sensor entity and its value constraints.
package sensor
