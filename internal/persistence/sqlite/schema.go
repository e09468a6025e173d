package sqlite

import (
	"context"
	"fmt"

	"github.com/example/room-reservations/internal/persistence/sqlite/migration"
)

// Timestamps are stored as UTC Unix nanoseconds so range comparisons run at
// full precision with no textual truncation.
var schemaMigrations = []migration.Migration{
	{
		Version:     "001",
		Description: "initial rooms, study groups, users and reservations schema",
		Statements: []string{
			`CREATE TABLE rooms (
				id         INTEGER PRIMARY KEY AUTOINCREMENT,
				name       TEXT NOT NULL,
				location   TEXT NOT NULL DEFAULT '',
				capacity   INTEGER NOT NULL DEFAULT 0,
				created_at INTEGER NOT NULL,
				updated_at INTEGER NOT NULL
			)`,
			`CREATE TABLE study_groups (
				id         INTEGER PRIMARY KEY AUTOINCREMENT,
				name       TEXT NOT NULL,
				created_at INTEGER NOT NULL,
				updated_at INTEGER NOT NULL
			)`,
			`CREATE TABLE users (
				id            INTEGER PRIMARY KEY AUTOINCREMENT,
				email         TEXT NOT NULL UNIQUE,
				display_name  TEXT NOT NULL,
				password_hash TEXT NOT NULL,
				created_at    INTEGER NOT NULL,
				updated_at    INTEGER NOT NULL
			)`,
			`CREATE TABLE user_groups (
				user_id  INTEGER NOT NULL REFERENCES users(id),
				group_id INTEGER NOT NULL REFERENCES study_groups(id),
				PRIMARY KEY (user_id, group_id)
			)`,
			`CREATE TABLE reservations (
				id         TEXT PRIMARY KEY,
				room_id    INTEGER NOT NULL REFERENCES rooms(id),
				group_id   INTEGER NOT NULL REFERENCES study_groups(id),
				start_ns   INTEGER NOT NULL,
				end_ns     INTEGER NOT NULL,
				status     INTEGER NOT NULL DEFAULT 1,
				created_at INTEGER NOT NULL,
				updated_at INTEGER NOT NULL,
				CHECK (start_ns < end_ns)
			)`,
		},
	},
	{
		Version:     "002",
		Description: "reservation lookup indexes",
		Statements: []string{
			`CREATE INDEX idx_reservations_room_start
				ON reservations (room_id, start_ns)`,
			`CREATE INDEX idx_reservations_group
				ON reservations (group_id)`,
		},
	},
}

// Migrate brings the schema up to the current version. Applied versions are
// tracked in schema_migrations, so repeated startups only run what is pending.
func (cp *ConnectionPool) Migrate(ctx context.Context) error {
	manager := migration.NewManager(migration.NewSQLiteExecutor(cp.db), schemaMigrations, nil)
	if err := manager.Run(ctx); err != nil {
		return fmt.Errorf("sqlite: failed to apply schema: %w", err)
	}
	return nil
}
