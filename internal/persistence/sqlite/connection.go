package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/room-reservations/internal/persistence"
	_ "modernc.org/sqlite"
)

// Config controls how the SQLite connection pool is opened.
type Config struct {
	// DSN is the database source name, e.g. "file:reservations.db" or
	// ":memory:" for tests.
	DSN string
	// BusyTimeout bounds how long a writer waits on a locked database before
	// the driver reports a busy error.
	BusyTimeout time.Duration
}

// DefaultConfig returns a configuration suitable for local operation.
func DefaultConfig(dsn string) Config {
	return Config{DSN: dsn, BusyTimeout: 5 * time.Second}
}

// ConnectionPool manages SQLite database connections with transaction support.
type ConnectionPool struct {
	db *sql.DB
}

// NewConnectionPool opens the database and applies the session pragmas the
// repositories rely on (foreign keys, busy timeout).
func NewConnectionPool(cfg Config) (*ConnectionPool, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("sqlite: empty DSN")
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to open database: %w", err)
	}

	// A single connection keeps in-memory databases coherent and serializes
	// write transactions on file databases.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to enable foreign keys: %w", err)
	}
	if cfg.BusyTimeout > 0 {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout.Milliseconds())); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite: failed to set busy timeout: %w", err)
		}
	}

	return &ConnectionPool{db: db}, nil
}

// DB returns the underlying database handle.
func (cp *ConnectionPool) DB() *sql.DB {
	return cp.db
}

// Close closes the connection pool.
func (cp *ConnectionPool) Close() error {
	if cp.db != nil {
		return cp.db.Close()
	}
	return nil
}

// Ping tests the database connection.
func (cp *ConnectionPool) Ping(ctx context.Context) error {
	return cp.db.PingContext(ctx)
}

// TransactionFunc represents a function that executes within a transaction.
type TransactionFunc func(tx *sql.Tx) error

// WithTransaction executes fn within a database transaction. If fn returns an
// error the transaction is rolled back, otherwise it is committed. This is the
// atomic unit of work that keeps check-then-act sequences isolated from
// concurrent writers.
func (cp *ConnectionPool) WithTransaction(ctx context.Context, fn TransactionFunc) error {
	tx, err := cp.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", persistence.ErrUnavailable, err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction failed (rollback error: %v): %w", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit transaction: %v", persistence.ErrUnavailable, err)
	}

	return nil
}

// mapSQLError translates driver errors into persistence sentinels.
func mapSQLError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return persistence.ErrNotFound
	}

	msg := err.Error()
	switch {
	case containsAny(msg, "UNIQUE constraint failed", "PRIMARY KEY constraint failed"):
		return persistence.ErrDuplicate
	case containsAny(msg, "FOREIGN KEY constraint failed"):
		return persistence.ErrForeignKeyViolation
	case containsAny(msg, "CHECK constraint failed"):
		return persistence.ErrConstraintViolation
	}

	return fmt.Errorf("%w: %v", persistence.ErrUnavailable, err)
}

func containsAny(s string, substrings ...string) bool {
	for _, substr := range substrings {
		if strings.Contains(s, substr) {
			return true
		}
	}
	return false
}
