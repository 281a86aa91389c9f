package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the referenced
// trip or activity does not exist.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing title, unparsable time of day).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrTransport is returned by client-side code when the store or real-time
// channel is unreachable. The sync agent preserves its last-known-good state
// and flags itself stale rather than retrying automatically.
var ErrTransport = errors.New("transport failure")
