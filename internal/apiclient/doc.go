// Package apiclient is the HTTP client for the backend's house API.
//
// It covers the resources the agent mirrors: the floor-plan grid, sensors,
// equipments, automation rules, user positions and the trigger endpoint.
// Realtime notifications tell the agent when to call back in; this client
// is how it does so.
package apiclient
