// Package realtime maintains the websocket session with the backend.
//
// The backend broadcasts state changes (sensor and equipment updates, grid
// replacements, CRUD notifications, user positions) to every client of a
// house. Client keeps one such session alive: a 30s application-level
// ping, exponential-backoff reconnection capped at a fixed attempt budget,
// and a deliberate-close path that suppresses reconnection. Dispatcher
// fans inbound envelopes out to per-type handlers after house scoping.
package realtime
