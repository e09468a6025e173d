package migration

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// SQLiteExecutor implements Executor against a SQLite database handle.
type SQLiteExecutor struct {
	db *sql.DB
}

// NewSQLiteExecutor creates an executor bound to db.
func NewSQLiteExecutor(db *sql.DB) *SQLiteExecutor {
	return &SQLiteExecutor{db: db}
}

// InitializeVersionTable creates the schema_migrations table if absent.
func (e *SQLiteExecutor) InitializeVersionTable(ctx context.Context) error {
	_, err := e.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version           TEXT PRIMARY KEY,
			applied_at        TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
			execution_time_ms INTEGER
		)`)
	if err != nil {
		return newError("", "create schema_migrations table", err)
	}
	return nil
}

// ExecuteMigration runs the migration's statements inside one transaction, so
// a failing statement leaves the schema at the previous version.
func (e *SQLiteExecutor) ExecuteMigration(ctx context.Context, m Migration) error {
	if len(m.Statements) == 0 {
		return newError(m.Version, "execute", errors.New("migration has no statements"))
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return newError(m.Version, "begin transaction", err)
	}

	for _, stmt := range m.Statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			tx.Rollback()
			return newError(m.Version, "execute statement", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return newError(m.Version, "commit transaction", err)
	}
	return nil
}

// RecordMigration marks a version as applied in the tracking table.
func (e *SQLiteExecutor) RecordMigration(ctx context.Context, version string, executionTime time.Duration) error {
	_, err := e.db.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, applied_at, execution_time_ms) VALUES (?, ?, ?)",
		version,
		time.Now().UTC().Format(time.RFC3339),
		executionTime.Milliseconds(),
	)
	if err != nil {
		return newError(version, "record migration", err)
	}
	return nil
}

// AppliedMigrations returns all applied migrations ordered by version.
func (e *SQLiteExecutor) AppliedMigrations(ctx context.Context) ([]AppliedMigration, error) {
	rows, err := e.db.QueryContext(ctx, `
		SELECT version, applied_at, COALESCE(execution_time_ms, 0)
		FROM schema_migrations
		ORDER BY version ASC`)
	if err != nil {
		return nil, newError("", "query applied versions", err)
	}
	defer rows.Close()

	var applied []AppliedMigration
	for rows.Next() {
		var version, appliedAtText string
		var executionMs int64
		if err := rows.Scan(&version, &appliedAtText, &executionMs); err != nil {
			return nil, newError("", "scan applied version", err)
		}

		appliedAt, err := time.Parse(time.RFC3339, appliedAtText)
		if err != nil {
			return nil, newError(version, "parse applied_at", ErrVersionTableCorrupt)
		}

		applied = append(applied, AppliedMigration{
			Version:       version,
			AppliedAt:     appliedAt,
			ExecutionTime: time.Duration(executionMs) * time.Millisecond,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, newError("", "iterate applied versions", err)
	}
	return applied, nil
}
