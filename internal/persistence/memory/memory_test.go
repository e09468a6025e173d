package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/example/room-reservations/internal/persistence"
	"github.com/example/room-reservations/internal/persistence/memory"
	"github.com/example/room-reservations/internal/testfixtures"
)

func at(t *testing.T, hour, minute int) time.Time {
	t.Helper()
	return time.Date(2019, 11, 3, hour, minute, 0, 0, time.UTC)
}

func TestStorage_CreateReservation_RejectsOverlap(t *testing.T) {
	t.Parallel()

	store := memory.Open()
	ctx := context.Background()

	first := testfixtures.NewReservationFixture(1, 1, at(t, 6, 30), at(t, 7, 30))
	if err := store.CreateReservation(ctx, first); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	overlapping := testfixtures.NewReservationFixture(1, 1, at(t, 7, 0), at(t, 8, 0))
	if err := store.CreateReservation(ctx, overlapping); !errors.Is(err, persistence.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	adjacent := testfixtures.NewReservationFixture(1, 1, at(t, 7, 30), at(t, 8, 30))
	if err := store.CreateReservation(ctx, adjacent); err != nil {
		t.Fatalf("adjacent create failed: %v", err)
	}
}

func TestStorage_CreateReservation_DuplicateID(t *testing.T) {
	t.Parallel()

	store := memory.Open()
	ctx := context.Background()

	reservation := testfixtures.NewReservationFixture(2, 1, at(t, 9, 0), at(t, 10, 0))
	if err := store.CreateReservation(ctx, reservation); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := store.CreateReservation(ctx, reservation); !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestStorage_ConcurrentCreates_OneWinner(t *testing.T) {
	t.Parallel()

	store := memory.Open()
	ctx := context.Background()

	first := testfixtures.NewReservationFixture(3, 1, at(t, 6, 30), at(t, 7, 30))
	second := testfixtures.NewReservationFixture(3, 2, at(t, 7, 0), at(t, 8, 0))

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i, reservation := range []persistence.Reservation{first, second} {
		wg.Add(1)
		go func(i int, reservation persistence.Reservation) {
			defer wg.Done()
			results[i] = store.CreateReservation(ctx, reservation)
		}(i, reservation)
	}
	wg.Wait()

	var successes, conflicts int
	for _, err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, persistence.ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 || conflicts != 1 {
		t.Fatalf("expected exactly one winner, got %d successes and %d conflicts", successes, conflicts)
	}
}

func TestStorage_ReplaceReservation(t *testing.T) {
	t.Parallel()

	store := memory.Open()
	ctx := context.Background()

	original := testfixtures.NewReservationFixture(4, 1, at(t, 6, 30), at(t, 7, 30))
	if err := store.CreateReservation(ctx, original); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	replacement := testfixtures.NewReservationFixture(4, 1, at(t, 9, 0), at(t, 10, 0))
	if err := store.ReplaceReservation(ctx, original.ID, replacement); err != nil {
		t.Fatalf("replace failed: %v", err)
	}

	if _, err := store.GetReservation(ctx, original.ID); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected original to be gone, got %v", err)
	}
	if _, err := store.GetReservation(ctx, replacement.ID); err != nil {
		t.Fatalf("replacement not stored: %v", err)
	}
}

func TestStorage_ReplaceReservation_ConflictRestoresOriginal(t *testing.T) {
	t.Parallel()

	store := memory.Open()
	ctx := context.Background()

	blocker := testfixtures.NewReservationFixture(5, 1, at(t, 9, 0), at(t, 10, 0))
	original := testfixtures.NewReservationFixture(5, 1, at(t, 6, 30), at(t, 7, 30))
	for _, reservation := range []persistence.Reservation{blocker, original} {
		if err := store.CreateReservation(ctx, reservation); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	replacement := testfixtures.NewReservationFixture(5, 1, at(t, 9, 30), at(t, 10, 30))
	if err := store.ReplaceReservation(ctx, original.ID, replacement); !errors.Is(err, persistence.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	// The failed replace must not lose the original reservation.
	if _, err := store.GetReservation(ctx, original.ID); err != nil {
		t.Fatalf("original lost after failed replace: %v", err)
	}
}

func TestStorage_ReplaceReservation_NotFound(t *testing.T) {
	t.Parallel()

	store := memory.Open()
	replacement := testfixtures.NewReservationFixture(6, 1, at(t, 9, 0), at(t, 10, 0))

	err := store.ReplaceReservation(context.Background(), "6||2019-11-03 05:00:00", replacement)
	if !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStorage_ListByRoomAndRange(t *testing.T) {
	t.Parallel()

	store := memory.Open()
	ctx := context.Background()

	for _, window := range [][2]int{{9, 10}, {10, 11}, {13, 14}} {
		reservation := testfixtures.NewReservationFixture(7, 1, at(t, window[0], 0), at(t, window[1], 0))
		if err := store.CreateReservation(ctx, reservation); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	found, err := store.ListByRoomAndRange(ctx, 7, at(t, 9, 30), at(t, 10, 30))
	if err != nil {
		t.Fatalf("ListByRoomAndRange failed: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("expected 2 reservations, got %d", len(found))
	}
	if !found[0].Start.Before(found[1].Start) {
		t.Fatalf("results not ordered by start: %v", found)
	}
}

func TestStorage_ListByGroupIDs(t *testing.T) {
	t.Parallel()

	store := memory.Open()
	ctx := context.Background()

	seeds := []persistence.Reservation{
		testfixtures.NewReservationFixture(8, 1, at(t, 9, 0), at(t, 10, 0)),
		testfixtures.NewReservationFixture(9, 2, at(t, 9, 0), at(t, 10, 0)),
		testfixtures.NewReservationFixture(10, 3, at(t, 8, 0), at(t, 9, 0)),
	}
	for _, reservation := range seeds {
		if err := store.CreateReservation(ctx, reservation); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	found, err := store.ListByGroupIDs(ctx, []int64{1, 3})
	if err != nil {
		t.Fatalf("ListByGroupIDs failed: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("expected 2 reservations, got %d", len(found))
	}
}

func TestStorage_UsersAndMemberships(t *testing.T) {
	t.Parallel()

	store := memory.Open()
	ctx := context.Background()

	group, err := store.CreateStudyGroup(ctx, persistence.StudyGroup{Name: "Algorithms"})
	if err != nil {
		t.Fatalf("CreateStudyGroup failed: %v", err)
	}

	user, err := store.CreateUser(ctx, persistence.User{Email: "dave@example.com", DisplayName: "Dave"})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	if err := store.AddMember(ctx, persistence.UserGroup{UserID: user.ID, GroupID: group.ID}); err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}

	groupIDs, err := store.GroupIDsForUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("GroupIDsForUser failed: %v", err)
	}
	if len(groupIDs) != 1 || groupIDs[0] != group.ID {
		t.Fatalf("unexpected memberships: %v", groupIDs)
	}

	if _, err := store.CreateUser(ctx, persistence.User{Email: "dave@example.com", DisplayName: "Dave Again"}); !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for reused email, got %v", err)
	}
}
