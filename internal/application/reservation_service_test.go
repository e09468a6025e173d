package application

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/example/room-reservations/internal/persistence"
)

// reservationRepoFake keeps bookings in a map and enforces the same overlap
// rule as the real stores, so service tests exercise conflict paths end to end.
type reservationRepoFake struct {
	reservations map[string]Reservation
	err          error
}

func newReservationRepoFake() *reservationRepoFake {
	return &reservationRepoFake{reservations: make(map[string]Reservation)}
}

func (f *reservationRepoFake) CreateReservation(ctx context.Context, reservation Reservation) (Reservation, error) {
	if f.err != nil {
		return Reservation{}, f.err
	}
	if _, ok := f.reservations[reservation.ID]; ok {
		return Reservation{}, persistence.ErrDuplicate
	}
	for _, existing := range f.reservations {
		if existing.RoomID == reservation.RoomID && overlaps(existing, reservation) {
			return Reservation{}, persistence.ErrConflict
		}
	}
	f.reservations[reservation.ID] = reservation
	return reservation, nil
}

func (f *reservationRepoFake) ReplaceReservation(ctx context.Context, oldID string, reservation Reservation) (Reservation, error) {
	if f.err != nil {
		return Reservation{}, f.err
	}
	previous, ok := f.reservations[oldID]
	if !ok {
		return Reservation{}, persistence.ErrNotFound
	}
	delete(f.reservations, oldID)
	for _, existing := range f.reservations {
		if existing.RoomID == reservation.RoomID && overlaps(existing, reservation) {
			f.reservations[oldID] = previous
			return Reservation{}, persistence.ErrConflict
		}
	}
	f.reservations[reservation.ID] = reservation
	return reservation, nil
}

func (f *reservationRepoFake) GetReservation(ctx context.Context, id string) (Reservation, error) {
	if f.err != nil {
		return Reservation{}, f.err
	}
	reservation, ok := f.reservations[id]
	if !ok {
		return Reservation{}, persistence.ErrNotFound
	}
	return reservation, nil
}

func (f *reservationRepoFake) DeleteReservation(ctx context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.reservations[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(f.reservations, id)
	return nil
}

func (f *reservationRepoFake) ListByRoom(ctx context.Context, roomID int64) ([]Reservation, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []Reservation
	for _, reservation := range f.reservations {
		if reservation.RoomID == roomID {
			out = append(out, reservation)
		}
	}
	sortReservations(out)
	return out, nil
}

func (f *reservationRepoFake) ListByRoomAndRange(ctx context.Context, roomID int64, start, end time.Time) ([]Reservation, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []Reservation
	for _, reservation := range f.reservations {
		if reservation.RoomID != roomID {
			continue
		}
		if reservation.Start.Before(end) && start.Before(reservation.End) {
			out = append(out, reservation)
		}
	}
	sortReservations(out)
	return out, nil
}

func (f *reservationRepoFake) ListByGroupIDs(ctx context.Context, groupIDs []int64) ([]Reservation, error) {
	if f.err != nil {
		return nil, f.err
	}
	wanted := make(map[int64]bool, len(groupIDs))
	for _, id := range groupIDs {
		wanted[id] = true
	}
	var out []Reservation
	for _, reservation := range f.reservations {
		if wanted[reservation.GroupID] {
			out = append(out, reservation)
		}
	}
	sortReservations(out)
	return out, nil
}

func overlaps(a, b Reservation) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

func sortReservations(reservations []Reservation) {
	sort.Slice(reservations, func(i, j int) bool {
		if reservations[i].Start.Equal(reservations[j].Start) {
			return reservations[i].ID < reservations[j].ID
		}
		return reservations[i].Start.Before(reservations[j].Start)
	})
}

type roomDirectoryStub struct {
	exists bool
	err    error
}

func (r *roomDirectoryStub) RoomExists(ctx context.Context, id int64) (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	return r.exists, nil
}

type groupDirectoryStub struct {
	exists bool
	err    error
}

func (g *groupDirectoryStub) GroupExists(ctx context.Context, id int64) (bool, error) {
	if g.err != nil {
		return false, g.err
	}
	return g.exists, nil
}

type membershipStub struct {
	groupIDs []int64
	err      error
}

func (m *membershipStub) GroupIDsForUser(ctx context.Context, userID int64) ([]int64, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.groupIDs, nil
}

func mustUTC(t *testing.T, day, hour, minute int) time.Time {
	t.Helper()
	return time.Date(2019, 11, day, hour, minute, 0, 0, time.UTC)
}

func newTestService(repo *reservationRepoFake) *ReservationService {
	return NewReservationService(repo, &roomDirectoryStub{exists: true}, &groupDirectoryStub{exists: true}, &membershipStub{}, func() time.Time {
		return time.Date(2019, 11, 1, 12, 0, 0, 0, time.UTC)
	})
}

func TestReservationService_CreateReservation_DerivesID(t *testing.T) {
	t.Parallel()

	repo := newReservationRepoFake()
	svc := newTestService(repo)

	created, err := svc.CreateReservation(context.Background(), CreateReservationParams{
		RoomID:  5,
		GroupID: 2,
		Start:   mustUTC(t, 3, 6, 30),
		End:     mustUTC(t, 3, 7, 30),
	})
	if err != nil {
		t.Fatalf("CreateReservation failed: %v", err)
	}

	if created.ID != "5||2019-11-03 06:30:00" {
		t.Fatalf("unexpected derived id: %q", created.ID)
	}
	if created.Status != StatusActive {
		t.Fatalf("expected active status, got %d", created.Status)
	}
}

func TestReservationService_CreateReservation_RejectsOverlap(t *testing.T) {
	t.Parallel()

	repo := newReservationRepoFake()
	svc := newTestService(repo)
	ctx := context.Background()

	if _, err := svc.CreateReservation(ctx, CreateReservationParams{
		RoomID: 1, GroupID: 1,
		Start: mustUTC(t, 3, 6, 30),
		End:   mustUTC(t, 3, 7, 30),
	}); err != nil {
		t.Fatalf("first reservation failed: %v", err)
	}

	_, err := svc.CreateReservation(ctx, CreateReservationParams{
		RoomID: 1, GroupID: 1,
		Start: mustUTC(t, 3, 7, 0),
		End:   mustUTC(t, 3, 8, 0),
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for overlapping range, got %v", err)
	}

	// Touching endpoints do not overlap under half-open semantics.
	if _, err := svc.CreateReservation(ctx, CreateReservationParams{
		RoomID: 1, GroupID: 1,
		Start: mustUTC(t, 3, 7, 30),
		End:   mustUTC(t, 3, 8, 30),
	}); err != nil {
		t.Fatalf("adjacent reservation failed: %v", err)
	}
}

func TestReservationService_CreateReservation_AllowsOtherRooms(t *testing.T) {
	t.Parallel()

	repo := newReservationRepoFake()
	svc := newTestService(repo)
	ctx := context.Background()

	if _, err := svc.CreateReservation(ctx, CreateReservationParams{
		RoomID: 1, GroupID: 1,
		Start: mustUTC(t, 3, 6, 30),
		End:   mustUTC(t, 3, 7, 30),
	}); err != nil {
		t.Fatalf("first reservation failed: %v", err)
	}

	if _, err := svc.CreateReservation(ctx, CreateReservationParams{
		RoomID: 2, GroupID: 1,
		Start: mustUTC(t, 3, 6, 30),
		End:   mustUTC(t, 3, 7, 30),
	}); err != nil {
		t.Fatalf("same range in another room failed: %v", err)
	}
}

func TestReservationService_CreateReservation_ValidatesRange(t *testing.T) {
	t.Parallel()

	svc := newTestService(newReservationRepoFake())

	_, err := svc.CreateReservation(context.Background(), CreateReservationParams{
		RoomID: 1, GroupID: 1,
		Start: mustUTC(t, 3, 8, 0),
		End:   mustUTC(t, 3, 7, 0),
	})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := vErr.FieldErrors["time"]; !ok {
		t.Fatalf("expected time validation error, got %v", vErr.FieldErrors)
	}
}

func TestReservationService_CreateReservation_RejectsEmptyRange(t *testing.T) {
	t.Parallel()

	svc := newTestService(newReservationRepoFake())

	_, err := svc.CreateReservation(context.Background(), CreateReservationParams{
		RoomID: 1, GroupID: 1,
		Start: mustUTC(t, 3, 7, 0),
		End:   mustUTC(t, 3, 7, 0),
	})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError for empty range, got %v", err)
	}
}

func TestReservationService_CreateReservation_MissingRoom(t *testing.T) {
	t.Parallel()

	svc := NewReservationService(newReservationRepoFake(), &roomDirectoryStub{exists: false}, &groupDirectoryStub{exists: true}, &membershipStub{}, nil)

	_, err := svc.CreateReservation(context.Background(), CreateReservationParams{
		RoomID: 99, GroupID: 1,
		Start: mustUTC(t, 3, 6, 30),
		End:   mustUTC(t, 3, 7, 30),
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing room, got %v", err)
	}
}

func TestReservationService_CreateReservation_MissingGroup(t *testing.T) {
	t.Parallel()

	svc := NewReservationService(newReservationRepoFake(), &roomDirectoryStub{exists: true}, &groupDirectoryStub{exists: false}, &membershipStub{}, nil)

	_, err := svc.CreateReservation(context.Background(), CreateReservationParams{
		RoomID: 1, GroupID: 99,
		Start: mustUTC(t, 3, 6, 30),
		End:   mustUTC(t, 3, 7, 30),
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing group, got %v", err)
	}
}

func TestReservationService_CreateReservation_StoreUnavailable(t *testing.T) {
	t.Parallel()

	repo := newReservationRepoFake()
	repo.err = persistence.ErrUnavailable
	svc := newTestService(repo)

	_, err := svc.CreateReservation(context.Background(), CreateReservationParams{
		RoomID: 1, GroupID: 1,
		Start: mustUTC(t, 3, 6, 30),
		End:   mustUTC(t, 3, 7, 30),
	})
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestReservationService_GetByRoomAndID(t *testing.T) {
	t.Parallel()

	repo := newReservationRepoFake()
	svc := newTestService(repo)
	ctx := context.Background()

	created, err := svc.CreateReservation(ctx, CreateReservationParams{
		RoomID: 3, GroupID: 1,
		Start: mustUTC(t, 3, 9, 0),
		End:   mustUTC(t, 3, 10, 0),
	})
	if err != nil {
		t.Fatalf("CreateReservation failed: %v", err)
	}

	fetched, err := svc.GetByRoomAndID(ctx, 3, created.ID)
	if err != nil {
		t.Fatalf("GetByRoomAndID failed: %v", err)
	}
	if fetched.ID != created.ID {
		t.Fatalf("expected %q, got %q", created.ID, fetched.ID)
	}

	// The same id queried through another room must not resolve.
	if _, err := svc.GetByRoomAndID(ctx, 4, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for room mismatch, got %v", err)
	}
}

func TestReservationService_ListByRoomAndRange(t *testing.T) {
	t.Parallel()

	repo := newReservationRepoFake()
	svc := newTestService(repo)
	ctx := context.Background()

	for _, window := range [][2]int{{9, 10}, {10, 11}, {13, 14}} {
		if _, err := svc.CreateReservation(ctx, CreateReservationParams{
			RoomID: 7, GroupID: 1,
			Start: mustUTC(t, 3, window[0], 0),
			End:   mustUTC(t, 3, window[1], 0),
		}); err != nil {
			t.Fatalf("seed reservation %v failed: %v", window, err)
		}
	}

	found, err := svc.ListByRoomAndRange(ctx, ListByRoomAndRangeParams{
		RoomID: 7,
		Start:  mustUTC(t, 3, 9, 30),
		End:    mustUTC(t, 3, 10, 30),
	})
	if err != nil {
		t.Fatalf("ListByRoomAndRange failed: %v", err)
	}

	if len(found) != 2 {
		t.Fatalf("expected 2 overlapping reservations, got %d", len(found))
	}
	if !found[0].Start.Equal(mustUTC(t, 3, 9, 0)) || !found[1].Start.Equal(mustUTC(t, 3, 10, 0)) {
		t.Fatalf("unexpected result ordering: %v", found)
	}
}

func TestReservationService_ListByRoomAndRange_ValidatesWindow(t *testing.T) {
	t.Parallel()

	svc := newTestService(newReservationRepoFake())

	_, err := svc.ListByRoomAndRange(context.Background(), ListByRoomAndRangeParams{
		RoomID: 7,
		Start:  mustUTC(t, 3, 11, 0),
		End:    mustUTC(t, 3, 10, 0),
	})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestReservationService_ListByUser(t *testing.T) {
	t.Parallel()

	repo := newReservationRepoFake()
	svc := NewReservationService(repo, &roomDirectoryStub{exists: true}, &groupDirectoryStub{exists: true}, &membershipStub{groupIDs: []int64{1, 3}}, nil)
	ctx := context.Background()

	seeds := []CreateReservationParams{
		{RoomID: 1, GroupID: 1, Start: mustUTC(t, 3, 9, 0), End: mustUTC(t, 3, 10, 0)},
		{RoomID: 2, GroupID: 2, Start: mustUTC(t, 3, 9, 0), End: mustUTC(t, 3, 10, 0)},
		{RoomID: 3, GroupID: 3, Start: mustUTC(t, 3, 8, 0), End: mustUTC(t, 3, 9, 0)},
	}
	for _, seed := range seeds {
		if _, err := svc.CreateReservation(ctx, seed); err != nil {
			t.Fatalf("seed reservation failed: %v", err)
		}
	}

	found, err := svc.ListByUser(ctx, 42)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}

	if len(found) != 2 {
		t.Fatalf("expected 2 reservations across groups 1 and 3, got %d", len(found))
	}
	if found[0].GroupID != 3 || found[1].GroupID != 1 {
		t.Fatalf("unexpected ordering or membership filter: %v", found)
	}
}

func TestReservationService_ListByUser_NoMemberships(t *testing.T) {
	t.Parallel()

	svc := NewReservationService(newReservationRepoFake(), &roomDirectoryStub{exists: true}, &groupDirectoryStub{exists: true}, &membershipStub{}, nil)

	found, err := svc.ListByUser(context.Background(), 42)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(found) != 0 {
		t.Fatalf("expected no reservations, got %d", len(found))
	}
}

func TestReservationService_UpdateReservation_ChangesIdentity(t *testing.T) {
	t.Parallel()

	repo := newReservationRepoFake()
	svc := newTestService(repo)
	ctx := context.Background()

	created, err := svc.CreateReservation(ctx, CreateReservationParams{
		RoomID: 1, GroupID: 1,
		Start: mustUTC(t, 3, 6, 30),
		End:   mustUTC(t, 3, 7, 30),
	})
	if err != nil {
		t.Fatalf("CreateReservation failed: %v", err)
	}
	if created.ID != "1||2019-11-03 06:30:00" {
		t.Fatalf("unexpected original id: %q", created.ID)
	}

	newID, err := svc.UpdateReservation(ctx, UpdateReservationParams{
		RoomID:        1,
		ReservationID: created.ID,
		GroupID:       1,
		Start:         time.Date(2022, 11, 3, 6, 30, 0, 0, time.UTC),
		End:           time.Date(2022, 11, 3, 7, 30, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("UpdateReservation failed: %v", err)
	}
	if newID != "1||2022-11-03 06:30:00" {
		t.Fatalf("unexpected replacement id: %q", newID)
	}

	if _, err := svc.GetByRoomAndID(ctx, 1, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected original id to be gone, got %v", err)
	}
	if _, err := svc.GetByRoomAndID(ctx, 1, newID); err != nil {
		t.Fatalf("replacement not retrievable: %v", err)
	}
}

func TestReservationService_UpdateReservation_ConflictKeepsOriginal(t *testing.T) {
	t.Parallel()

	repo := newReservationRepoFake()
	svc := newTestService(repo)
	ctx := context.Background()

	first, err := svc.CreateReservation(ctx, CreateReservationParams{
		RoomID: 1, GroupID: 1,
		Start: mustUTC(t, 3, 6, 0),
		End:   mustUTC(t, 3, 7, 0),
	})
	if err != nil {
		t.Fatalf("first reservation failed: %v", err)
	}
	second, err := svc.CreateReservation(ctx, CreateReservationParams{
		RoomID: 1, GroupID: 1,
		Start: mustUTC(t, 3, 8, 0),
		End:   mustUTC(t, 3, 9, 0),
	})
	if err != nil {
		t.Fatalf("second reservation failed: %v", err)
	}

	_, err = svc.UpdateReservation(ctx, UpdateReservationParams{
		RoomID:        1,
		ReservationID: second.ID,
		GroupID:       1,
		Start:         mustUTC(t, 3, 6, 30),
		End:           mustUTC(t, 3, 7, 30),
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	// The failed replace must leave both originals in place.
	if _, err := svc.GetByRoomAndID(ctx, 1, first.ID); err != nil {
		t.Fatalf("first reservation lost after failed update: %v", err)
	}
	if _, err := svc.GetByRoomAndID(ctx, 1, second.ID); err != nil {
		t.Fatalf("second reservation lost after failed update: %v", err)
	}
}

func TestReservationService_UpdateReservation_NotFound(t *testing.T) {
	t.Parallel()

	svc := newTestService(newReservationRepoFake())

	_, err := svc.UpdateReservation(context.Background(), UpdateReservationParams{
		RoomID:        1,
		ReservationID: "1||2019-11-03 06:30:00",
		GroupID:       1,
		Start:         mustUTC(t, 3, 6, 30),
		End:           mustUTC(t, 3, 7, 30),
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReservationService_DeleteReservation(t *testing.T) {
	t.Parallel()

	repo := newReservationRepoFake()
	svc := newTestService(repo)
	ctx := context.Background()

	created, err := svc.CreateReservation(ctx, CreateReservationParams{
		RoomID: 1, GroupID: 1,
		Start: mustUTC(t, 3, 6, 30),
		End:   mustUTC(t, 3, 7, 30),
	})
	if err != nil {
		t.Fatalf("CreateReservation failed: %v", err)
	}

	if err := svc.DeleteReservation(ctx, created.ID); err != nil {
		t.Fatalf("DeleteReservation failed: %v", err)
	}

	if err := svc.DeleteReservation(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}

	// The slot is free again after delete.
	if _, err := svc.CreateReservation(ctx, CreateReservationParams{
		RoomID: 1, GroupID: 1,
		Start: mustUTC(t, 3, 6, 30),
		End:   mustUTC(t, 3, 7, 30),
	}); err != nil {
		t.Fatalf("rebooking freed slot failed: %v", err)
	}
}
