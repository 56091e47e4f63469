package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing origin, unknown weekday name, acting on a
// resource owned by someone else).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrConflict is returned when a write loses a race against current state:
// booking more seats than remain, or acting on an already-settled offer.
// Handlers should map this to HTTP 409 Conflict.
var ErrConflict = errors.New("conflict")
