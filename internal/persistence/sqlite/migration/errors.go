package migration

import (
	"errors"
	"fmt"
)

var (
	// ErrMigrationFailed indicates that executing a migration's SQL failed.
	ErrMigrationFailed = errors.New("migration execution failed")

	// ErrInvalidVersion indicates a migration version that is not numeric.
	ErrInvalidVersion = errors.New("invalid migration version")

	// ErrDuplicateVersion indicates two registered migrations share a version.
	ErrDuplicateVersion = errors.New("duplicate migration version")

	// ErrVersionConflict indicates a gap in the version sequence or an applied
	// version with no registered migration.
	ErrVersionConflict = errors.New("migration version conflict")

	// ErrVersionTableCorrupt indicates the schema_migrations table holds
	// versions that cannot be interpreted.
	ErrVersionTableCorrupt = errors.New("schema_migrations table is corrupted")
)

// Error wraps a migration failure with the version and operation that caused it.
type Error struct {
	Version   string
	Operation string
	Err       error
}

func (e *Error) Error() string {
	if e.Version != "" {
		return fmt.Sprintf("migration %s: %s: %v", e.Version, e.Operation, e.Err)
	}
	return fmt.Sprintf("migration: %s: %v", e.Operation, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(version, operation string, err error) *Error {
	return &Error{Version: version, Operation: operation, Err: err}
}
