// Package database opens and manages the agent's local SQLite store.
//
// The store is a cache-side artifact: it records the event history the
// agent observes (see the history package) and can be deleted without
// losing authoritative state, which lives on the backend.
package database
