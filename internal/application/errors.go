package application

import "errors"

var (
	// ErrNotFound is returned when a referenced room, group, user or
	// reservation does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrConflict is returned when a requested range overlaps an active
	// reservation for the same room.
	ErrConflict = errors.New("application: reservation conflict")
	// ErrAlreadyExists is returned when a create collides with an existing
	// record, such as a duplicate email at sign-up.
	ErrAlreadyExists = errors.New("application: already exists")
	// ErrStoreUnavailable is returned when the persistence layer failed for
	// reasons unrelated to the request. Reads are safe to retry; writes must
	// re-check existence by id first.
	ErrStoreUnavailable = errors.New("application: store unavailable")
)

// ValidationError captures field level validation issues that callers can
// surface to users. Malformed or inverted time ranges are reported this way.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// Add records a field level validation error.
func (v *ValidationError) Add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}
