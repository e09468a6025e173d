package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/room-reservations/internal/persistence"
	"github.com/example/room-reservations/internal/scheduler"
)

// ReservationRepository captures the persistence interactions needed by the
// reservation service. Implementations must run each overlap check in the
// same atomic unit of work as the write that depends on it.
type ReservationRepository interface {
	CreateReservation(ctx context.Context, reservation Reservation) (Reservation, error)
	ReplaceReservation(ctx context.Context, oldID string, reservation Reservation) (Reservation, error)
	GetReservation(ctx context.Context, id string) (Reservation, error)
	DeleteReservation(ctx context.Context, id string) error
	ListByRoom(ctx context.Context, roomID int64) ([]Reservation, error)
	ListByRoomAndRange(ctx context.Context, roomID int64, start, end time.Time) ([]Reservation, error)
	ListByGroupIDs(ctx context.Context, groupIDs []int64) ([]Reservation, error)
}

// RoomDirectory exposes room existence lookups. The service only validates
// foreign references through it; room metadata is owned elsewhere.
type RoomDirectory interface {
	RoomExists(ctx context.Context, id int64) (bool, error)
}

// GroupDirectory exposes study-group existence lookups.
type GroupDirectory interface {
	GroupExists(ctx context.Context, id int64) (bool, error)
}

// GroupMembership resolves the study groups a user belongs to.
type GroupMembership interface {
	GroupIDsForUser(ctx context.Context, userID int64) ([]int64, error)
}

// ReservationService orchestrates validation, identity derivation and
// persistence for booking operations. Reservation ids are derived from
// (room, start), so the service never generates identifiers.
type ReservationService struct {
	reservations ReservationRepository
	rooms        RoomDirectory
	groups       GroupDirectory
	memberships  GroupMembership
	now          func() time.Time
	logger       *slog.Logger
}

// NewReservationService wires dependencies for reservation operations.
func NewReservationService(reservations ReservationRepository, rooms RoomDirectory, groups GroupDirectory, memberships GroupMembership, now func() time.Time) *ReservationService {
	return NewReservationServiceWithLogger(reservations, rooms, groups, memberships, now, nil)
}

// NewReservationServiceWithLogger wires dependencies together with a base logger.
func NewReservationServiceWithLogger(reservations ReservationRepository, rooms RoomDirectory, groups GroupDirectory, memberships GroupMembership, now func() time.Time, logger *slog.Logger) *ReservationService {
	if now == nil {
		now = time.Now
	}
	return &ReservationService{
		reservations: reservations,
		rooms:        rooms,
		groups:       groups,
		memberships:  memberships,
		now:          now,
		logger:       defaultLogger(logger),
	}
}

// CreateReservation validates the referenced room and group, derives the
// reservation id from (room, start) and books the range. Overlap with an
// existing active reservation for the room fails with ErrConflict; the
// overlap check and the insert are isolated in the repository, so concurrent
// creates for the same room cannot both succeed.
func (s *ReservationService) CreateReservation(ctx context.Context, params CreateReservationParams) (Reservation, error) {
	if s == nil || s.reservations == nil {
		return Reservation{}, fmt.Errorf("reservation repository not configured")
	}

	logger := serviceLogger(ctx, s.logger, "reservation", "create", "room_id", params.RoomID, "group_id", params.GroupID)

	if err := validateRange(params.Start, params.End); err != nil {
		return Reservation{}, err
	}
	if err := s.ensureGroupExists(ctx, params.GroupID); err != nil {
		return Reservation{}, err
	}
	if err := s.ensureRoomExists(ctx, params.RoomID); err != nil {
		return Reservation{}, err
	}

	createdAt := s.now()
	reservation := Reservation{
		ID:        scheduler.ReservationID(params.RoomID, params.Start),
		RoomID:    params.RoomID,
		GroupID:   params.GroupID,
		Start:     params.Start,
		End:       params.End,
		Status:    StatusActive,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}

	persisted, err := s.reservations.CreateReservation(ctx, reservation)
	if err != nil {
		mapped := mapReservationRepoError(err)
		logger.ErrorContext(ctx, "failed to create reservation", "error", mapped, "error_kind", ErrorKind(mapped))
		return Reservation{}, mapped
	}

	logger.InfoContext(ctx, "reservation created", "reservation_id", persisted.ID)
	return persisted, nil
}

// GetByRoomAndID retrieves a reservation and verifies it belongs to the room.
// A reservation stored under a different room is reported as ErrNotFound.
func (s *ReservationService) GetByRoomAndID(ctx context.Context, roomID int64, reservationID string) (Reservation, error) {
	if s == nil || s.reservations == nil {
		return Reservation{}, fmt.Errorf("reservation repository not configured")
	}

	reservation, err := s.reservations.GetReservation(ctx, reservationID)
	if err != nil {
		return Reservation{}, mapReservationRepoError(err)
	}
	if reservation.RoomID != roomID {
		return Reservation{}, ErrNotFound
	}
	return reservation, nil
}

// ListByRoom returns all active reservations for the room, ordered by start
// time for deterministic output.
func (s *ReservationService) ListByRoom(ctx context.Context, roomID int64) ([]Reservation, error) {
	if s == nil || s.reservations == nil {
		return nil, fmt.Errorf("reservation repository not configured")
	}

	reservations, err := s.reservations.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, mapReservationRepoError(err)
	}
	return reservations, nil
}

// ListByRoomAndRange returns active reservations for the room overlapping the
// half-open query window. The result serves calendar views; conflict checks
// always re-query at write time instead of trusting this snapshot.
func (s *ReservationService) ListByRoomAndRange(ctx context.Context, params ListByRoomAndRangeParams) ([]Reservation, error) {
	if s == nil || s.reservations == nil {
		return nil, fmt.Errorf("reservation repository not configured")
	}

	if err := validateRange(params.Start, params.End); err != nil {
		return nil, err
	}

	reservations, err := s.reservations.ListByRoomAndRange(ctx, params.RoomID, params.Start, params.End)
	if err != nil {
		return nil, mapReservationRepoError(err)
	}
	return reservations, nil
}

// ListByUser resolves the user's study-group memberships and returns the
// union of reservations across those groups.
func (s *ReservationService) ListByUser(ctx context.Context, userID int64) ([]Reservation, error) {
	if s == nil || s.reservations == nil {
		return nil, fmt.Errorf("reservation repository not configured")
	}
	if s.memberships == nil {
		return nil, fmt.Errorf("group membership resolver not configured")
	}

	groupIDs, err := s.memberships.GroupIDsForUser(ctx, userID)
	if err != nil {
		return nil, mapReservationRepoError(err)
	}
	if len(groupIDs) == 0 {
		return nil, nil
	}

	reservations, err := s.reservations.ListByGroupIDs(ctx, groupIDs)
	if err != nil {
		return nil, mapReservationRepoError(err)
	}
	return reservations, nil
}

// UpdateReservation replaces an existing reservation with a new one carrying
// the supplied fields. The delete and the re-insert run in one atomic unit of
// work; because the id derives from (room, start), changing the start time
// changes the reservation's identity and the new id is returned.
func (s *ReservationService) UpdateReservation(ctx context.Context, params UpdateReservationParams) (string, error) {
	if s == nil || s.reservations == nil {
		return "", fmt.Errorf("reservation repository not configured")
	}

	logger := serviceLogger(ctx, s.logger, "reservation", "update", "room_id", params.RoomID, "reservation_id", params.ReservationID)

	existing, err := s.reservations.GetReservation(ctx, params.ReservationID)
	if err != nil {
		return "", mapReservationRepoError(err)
	}
	if err := s.ensureRoomExists(ctx, params.RoomID); err != nil {
		return "", err
	}
	if err := validateRange(params.Start, params.End); err != nil {
		return "", err
	}

	groupID := params.GroupID
	if groupID == 0 {
		groupID = existing.GroupID
	}

	replacement := Reservation{
		ID:        scheduler.ReservationID(params.RoomID, params.Start),
		RoomID:    params.RoomID,
		GroupID:   groupID,
		Start:     params.Start,
		End:       params.End,
		Status:    StatusActive,
		CreatedAt: existing.CreatedAt,
		UpdatedAt: s.now(),
	}

	persisted, err := s.reservations.ReplaceReservation(ctx, existing.ID, replacement)
	if err != nil {
		mapped := mapReservationRepoError(err)
		logger.ErrorContext(ctx, "failed to replace reservation", "error", mapped, "error_kind", ErrorKind(mapped))
		return "", mapped
	}

	logger.InfoContext(ctx, "reservation replaced", "new_reservation_id", persisted.ID)
	return persisted.ID, nil
}

// DeleteReservation removes a reservation by id. Deleting an absent id is
// reported as ErrNotFound; callers wanting idempotence treat that as success.
func (s *ReservationService) DeleteReservation(ctx context.Context, reservationID string) error {
	if s == nil || s.reservations == nil {
		return fmt.Errorf("reservation repository not configured")
	}

	if err := s.reservations.DeleteReservation(ctx, reservationID); err != nil {
		return mapReservationRepoError(err)
	}

	serviceLogger(ctx, s.logger, "reservation", "delete", "reservation_id", reservationID).
		InfoContext(ctx, "reservation deleted")
	return nil
}

func (s *ReservationService) ensureRoomExists(ctx context.Context, roomID int64) error {
	if s.rooms == nil {
		return nil
	}
	exists, err := s.rooms.RoomExists(ctx, roomID)
	if err != nil {
		return mapReservationRepoError(err)
	}
	if !exists {
		return ErrNotFound
	}
	return nil
}

func (s *ReservationService) ensureGroupExists(ctx context.Context, groupID int64) error {
	if s.groups == nil {
		return nil
	}
	exists, err := s.groups.GroupExists(ctx, groupID)
	if err != nil {
		return mapReservationRepoError(err)
	}
	if !exists {
		return ErrNotFound
	}
	return nil
}

func validateRange(start, end time.Time) error {
	vErr := &ValidationError{}

	if start.IsZero() {
		vErr.Add("start_time", "start time is required")
	}
	if end.IsZero() {
		vErr.Add("end_time", "end time is required")
	}
	if !start.IsZero() && !end.IsZero() {
		if _, err := scheduler.NewTimeRange(start, end); err != nil {
			vErr.Add("time", "start time must be before end time")
		}
	}

	if vErr.HasErrors() {
		return vErr
	}
	return nil
}

func mapReservationRepoError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrConflict):
		return ErrConflict
	case errors.Is(err, persistence.ErrDuplicate):
		// A duplicate derived id means the same room and start instant,
		// which is an overlap by definition.
		return ErrConflict
	case errors.Is(err, persistence.ErrForeignKeyViolation):
		return ErrNotFound
	case errors.Is(err, persistence.ErrConstraintViolation):
		vErr := &ValidationError{}
		vErr.Add("time", "start time must be before end time")
		return vErr
	case errors.Is(err, persistence.ErrUnavailable):
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return err
}
