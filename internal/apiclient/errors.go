package apiclient

import "errors"

// Client errors. Transport failures are wrapped as-is; HTTP error statuses
// map onto these sentinels so callers can branch with errors.Is.
var (
	// ErrUnauthorized is returned on 401 and 403 responses.
	ErrUnauthorized = errors.New("apiclient: unauthorized")

	// ErrNotFound is returned on 404 responses.
	ErrNotFound = errors.New("apiclient: not found")

	// ErrBackend is returned on any other non-success response.
	ErrBackend = errors.New("apiclient: backend error")
)
