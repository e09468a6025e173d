package migration

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"
)

// Manager applies a registered migration sequence in version order, tracking
// applied versions in the schema_migrations table so restarts only run what
// is still pending.
type Manager struct {
	executor   Executor
	migrations []Migration
	logger     *slog.Logger
}

// NewManager creates a manager for the given migration sequence. A nil logger
// falls back to slog.Default.
func NewManager(executor Executor, migrations []Migration, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{executor: executor, migrations: migrations, logger: logger}
}

// Run applies all pending migrations in version order. Each migration runs in
// its own transaction and is recorded before the next one starts.
func (m *Manager) Run(ctx context.Context) error {
	if err := m.executor.InitializeVersionTable(ctx); err != nil {
		return fmt.Errorf("initialize version table: %w", err)
	}

	pending, err := m.Pending(ctx)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		m.logger.DebugContext(ctx, "schema up to date")
		return nil
	}

	for _, migration := range pending {
		started := time.Now()
		m.logger.InfoContext(ctx, "applying migration",
			"version", migration.Version, "description", migration.Description)

		if err := m.executor.ExecuteMigration(ctx, migration); err != nil {
			return fmt.Errorf("%w: %v", ErrMigrationFailed, err)
		}
		if err := m.executor.RecordMigration(ctx, migration.Version, time.Since(started)); err != nil {
			return fmt.Errorf("record migration %s: %w", migration.Version, err)
		}

		m.logger.InfoContext(ctx, "migration applied",
			"version", migration.Version, "duration", time.Since(started))
	}
	return nil
}

// AppliedVersions returns the versions already recorded as applied.
func (m *Manager) AppliedVersions(ctx context.Context) ([]string, error) {
	if err := m.executor.InitializeVersionTable(ctx); err != nil {
		return nil, fmt.Errorf("initialize version table: %w", err)
	}

	applied, err := m.executor.AppliedMigrations(ctx)
	if err != nil {
		return nil, err
	}
	versions := make([]string, len(applied))
	for i, migration := range applied {
		versions[i] = migration.Version
	}
	return versions, nil
}

// Pending returns registered migrations not yet applied, in version order.
// The combined sequence is validated before anything is reported as pending.
func (m *Manager) Pending(ctx context.Context) ([]Migration, error) {
	appliedVersions, err := m.AppliedVersions(ctx)
	if err != nil {
		return nil, err
	}

	if err := m.validateSequence(appliedVersions); err != nil {
		return nil, err
	}

	appliedSet := make(map[string]bool, len(appliedVersions))
	for _, version := range appliedVersions {
		appliedSet[version] = true
	}

	var pending []Migration
	for _, migration := range m.migrations {
		if !appliedSet[migration.Version] {
			pending = append(pending, migration)
		}
	}

	sort.Slice(pending, func(i, j int) bool {
		left, _ := strconv.Atoi(pending[i].Version)
		right, _ := strconv.Atoi(pending[j].Version)
		return left < right
	})
	return pending, nil
}

// Status reports the current version together with the applied and pending sets.
func (m *Manager) Status(ctx context.Context) (*Status, error) {
	if err := m.executor.InitializeVersionTable(ctx); err != nil {
		return nil, fmt.Errorf("initialize version table: %w", err)
	}

	applied, err := m.executor.AppliedMigrations(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := m.Pending(ctx)
	if err != nil {
		return nil, err
	}

	current := ""
	highest := 0
	for _, migration := range applied {
		if version, err := strconv.Atoi(migration.Version); err == nil && version > highest {
			highest = version
			current = migration.Version
		}
	}

	return &Status{CurrentVersion: current, Applied: applied, Pending: pending}, nil
}

// validateSequence checks that registered versions are numeric, unique and
// gapless, and that every applied version has a registered migration.
func (m *Manager) validateSequence(appliedVersions []string) error {
	registered := make(map[int]bool, len(m.migrations))
	minVersion, maxVersion := 0, 0

	for _, migration := range m.migrations {
		version, err := strconv.Atoi(migration.Version)
		if err != nil {
			return fmt.Errorf("%w: version %q is not numeric", ErrInvalidVersion, migration.Version)
		}
		if registered[version] {
			return fmt.Errorf("%w: version %q registered twice", ErrDuplicateVersion, migration.Version)
		}
		registered[version] = true

		if minVersion == 0 || version < minVersion {
			minVersion = version
		}
		if version > maxVersion {
			maxVersion = version
		}
	}

	if len(m.migrations) > 0 {
		for version := minVersion; version <= maxVersion; version++ {
			if !registered[version] {
				return fmt.Errorf("%w: missing version %03d in sequence", ErrVersionConflict, version)
			}
		}
	}

	for _, versionText := range appliedVersions {
		version, err := strconv.Atoi(versionText)
		if err != nil {
			return fmt.Errorf("%w: applied version %q is not numeric", ErrVersionTableCorrupt, versionText)
		}
		if !registered[version] {
			return fmt.Errorf("%w: applied version %03d has no registered migration", ErrVersionConflict, version)
		}
	}
	return nil
}
