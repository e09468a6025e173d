package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when an insert collides with an existing key.
	ErrDuplicate = errors.New("persistence: duplicate record")
	// ErrConflict is returned when a reservation would overlap an active
	// reservation for the same room.
	ErrConflict = errors.New("persistence: overlapping reservation")
	// ErrConstraintViolation is returned when stored data would violate a
	// schema-level check, such as start >= end.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
	// ErrForeignKeyViolation is returned when a referenced room, group or
	// user is missing.
	ErrForeignKeyViolation = errors.New("persistence: foreign key violation")
	// ErrUnavailable is returned when the store itself failed (I/O error,
	// aborted transaction) rather than the request being invalid.
	ErrUnavailable = errors.New("persistence: store unavailable")
)
