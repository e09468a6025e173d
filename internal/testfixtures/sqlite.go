package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/room-reservations/internal/persistence"
	"github.com/example/room-reservations/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by a temporary SQLite
// database for integration-style persistence tests.
type SQLiteHarness struct {
	Reservations persistence.ReservationRepository
	Rooms        persistence.RoomRepository
	Groups       persistence.StudyGroupRepository
	Users        persistence.UserRepository
	Memberships  persistence.MembershipRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a SQLiteHarness on a temporary database file
// that is migrated automatically. A cleanup callback is registered with the
// provided testing.TB.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	dir := tb.TempDir()
	path := filepath.Join(dir, "reservations.db")

	pool, err := sqlite.NewConnectionPool(sqlite.DefaultConfig("file:" + path))
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	if err := pool.Migrate(context.Background()); err != nil {
		_ = pool.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	userRepo := sqlite.NewUserRepository(pool)
	harness := &SQLiteHarness{
		Reservations: sqlite.NewReservationRepository(pool),
		Rooms:        sqlite.NewRoomRepository(pool),
		Groups:       sqlite.NewStudyGroupRepository(pool),
		Users:        userRepo,
		Memberships:  userRepo,
		cleanup: func() {
			_ = pool.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}
