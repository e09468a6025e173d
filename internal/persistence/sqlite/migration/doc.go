// Package migration provides versioned schema migrations for SQLite.
//
// Migrations are registered in code as a gapless numeric sequence and applied
// in order, each inside its own transaction. The schema_migrations table
// tracks applied versions so repeated startups only run what is pending.
//
// Example usage:
//
//	manager := migration.NewManager(migration.NewSQLiteExecutor(db), migrations, logger)
//	if err := manager.Run(ctx); err != nil {
//		// schema is at the last successfully applied version
//	}
package migration
