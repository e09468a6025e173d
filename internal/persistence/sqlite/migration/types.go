package migration

import (
	"context"
	"time"
)

// Migration is a versioned schema change. Versions are zero-padded numeric
// strings ("001", "002") and must form a gapless sequence.
type Migration struct {
	Version     string
	Description string
	Statements  []string
}

// AppliedMigration records a migration that has been executed against the
// database, as read back from the schema_migrations table.
type AppliedMigration struct {
	Version       string
	AppliedAt     time.Time
	ExecutionTime time.Duration
}

// Status summarizes the migration state of a database.
type Status struct {
	CurrentVersion string
	Applied        []AppliedMigration
	Pending        []Migration
}

// Executor runs individual migrations and maintains the version table.
type Executor interface {
	// InitializeVersionTable creates the schema_migrations table if absent.
	InitializeVersionTable(ctx context.Context) error

	// ExecuteMigration runs a single migration's statements in one transaction.
	ExecuteMigration(ctx context.Context, m Migration) error

	// RecordMigration marks a migration as applied.
	RecordMigration(ctx context.Context, version string, executionTime time.Duration) error

	// AppliedMigrations returns applied migrations ordered by version.
	AppliedMigrations(ctx context.Context) ([]AppliedMigration, error)
}
