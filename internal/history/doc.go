// Package history records the house events the agent observes into the
// local SQLite store, giving operators a queryable timeline independent
// of the backend.
package history
