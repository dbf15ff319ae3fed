// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// inspecting raw backend error strings. For example, ErrNoInventory
// signals the expected "flight is sold out" outcome of a reservation,
// while ErrConflict signals a duplicate unique key (an email, flight
// number or airplane id that already exists).
package repository

import (
	"errors"
	"strings"
)

// ErrNoInventory is returned when a flight has no unsold ticket left.
// This is an expected business outcome, reported to the caller and
// never retried automatically.
var ErrNoInventory = errors.New("no tickets available")

// ErrNotFound is returned when a lookup yields no rows. Handlers
// should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when an insert violates a unique key, such
// as signing up with an email that is already registered or creating a
// flight number that already exists for the airline. Handlers should
// translate this into an HTTP 409 response.
var ErrConflict = errors.New("already exists")

// ErrForbidden is returned when the caller attempts an operation their
// role or permissions do not allow. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// isDuplicateKey reports whether err is a unique-constraint violation
// on either backend (MySQL error 1062, SQLite "UNIQUE constraint
// failed").
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "1062") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
