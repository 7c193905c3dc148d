// Package api serves the local read-only status API.
//
// It exposes the session's mirrored house state, component health and the
// event history over HTTP for tools on the same network. All writes keep
// going through the backend; nothing here mutates the mirror.
package api
