// Package memory provides a map-backed implementation of the persistence
// contracts. It honors the same atomicity guarantees as the SQLite store by
// running every check-then-act sequence under one mutex, which makes it
// suitable for tests and for running the service without a database file.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/example/room-reservations/internal/persistence"
	"github.com/example/room-reservations/internal/scheduler"
)

// Storage holds every record behind a single lock.
type Storage struct {
	mu           sync.RWMutex
	reservations map[string]persistence.Reservation
	rooms        map[int64]persistence.Room
	groups       map[int64]persistence.StudyGroup
	users        map[int64]persistence.User
	memberships  map[int64][]int64

	nextRoomID  int64
	nextGroupID int64
	nextUserID  int64
}

// Open returns an empty Storage.
func Open() *Storage {
	return &Storage{
		reservations: make(map[string]persistence.Reservation),
		rooms:        make(map[int64]persistence.Room),
		groups:       make(map[int64]persistence.StudyGroup),
		users:        make(map[int64]persistence.User),
		memberships:  make(map[int64][]int64),
	}
}

// Close releases resources held by the storage. No-op for memory.
func (s *Storage) Close() error {
	return nil
}

// --- ReservationRepository implementation ---

// CreateReservation inserts the reservation unless an active reservation for
// the same room overlaps its range. The check and the insert run under one
// lock acquisition, so concurrent creates for the same room serialize and the
// loser observes ErrConflict.
func (s *Storage) CreateReservation(ctx context.Context, reservation persistence.Reservation) error {
	if !reservation.Start.Before(reservation.End) {
		return persistence.ErrConstraintViolation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reservations[reservation.ID]; ok {
		return persistence.ErrDuplicate
	}
	if s.overlapLocked(reservation.RoomID, reservation.Start, reservation.End) != nil {
		return persistence.ErrConflict
	}

	s.reservations[reservation.ID] = reservation
	return nil
}

// ReplaceReservation deletes oldID and inserts the replacement atomically.
func (s *Storage) ReplaceReservation(ctx context.Context, oldID string, reservation persistence.Reservation) error {
	if !reservation.Start.Before(reservation.End) {
		return persistence.ErrConstraintViolation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	previous, ok := s.reservations[oldID]
	if !ok {
		return persistence.ErrNotFound
	}
	delete(s.reservations, oldID)

	if s.overlapLocked(reservation.RoomID, reservation.Start, reservation.End) != nil {
		// Roll back the delete so a failed replace never leaves the room
		// without its original reservation.
		s.reservations[oldID] = previous
		return persistence.ErrConflict
	}

	s.reservations[reservation.ID] = reservation
	return nil
}

// GetReservation retrieves a reservation by id.
func (s *Storage) GetReservation(ctx context.Context, id string) (persistence.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reservation, ok := s.reservations[id]
	if !ok {
		return persistence.Reservation{}, persistence.ErrNotFound
	}
	return reservation, nil
}

// DeleteReservation removes a reservation by id.
func (s *Storage) DeleteReservation(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reservations[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.reservations, id)
	return nil
}

// FindOverlapping returns the first active reservation for the room whose
// range overlaps [start, end).
func (s *Storage) FindOverlapping(ctx context.Context, roomID int64, start, end time.Time) (persistence.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if found := s.overlapLocked(roomID, start, end); found != nil {
		return *found, nil
	}
	return persistence.Reservation{}, persistence.ErrNotFound
}

// ListByRoom returns active reservations for a room ordered by start time.
func (s *Storage) ListByRoom(ctx context.Context, roomID int64) ([]persistence.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collectLocked(func(reservation persistence.Reservation) bool {
		return reservation.RoomID == roomID
	}), nil
}

// ListByRoomAndRange returns active reservations for a room overlapping the
// half-open query window.
func (s *Storage) ListByRoomAndRange(ctx context.Context, roomID int64, start, end time.Time) ([]persistence.Reservation, error) {
	window := scheduler.TimeRange{Start: start, End: end}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collectLocked(func(reservation persistence.Reservation) bool {
		if reservation.RoomID != roomID {
			return false
		}
		return window.Overlaps(scheduler.TimeRange{Start: reservation.Start, End: reservation.End})
	}), nil
}

// ListByGroupIDs returns active reservations booked by any of the groups.
func (s *Storage) ListByGroupIDs(ctx context.Context, groupIDs []int64) ([]persistence.Reservation, error) {
	if len(groupIDs) == 0 {
		return nil, nil
	}

	wanted := make(map[int64]struct{}, len(groupIDs))
	for _, groupID := range groupIDs {
		wanted[groupID] = struct{}{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collectLocked(func(reservation persistence.Reservation) bool {
		_, ok := wanted[reservation.GroupID]
		return ok
	}), nil
}

func (s *Storage) overlapLocked(roomID int64, start, end time.Time) *persistence.Reservation {
	window := scheduler.TimeRange{Start: start, End: end}
	var found *persistence.Reservation
	for _, reservation := range s.reservations {
		if reservation.RoomID != roomID || reservation.Status != persistence.StatusActive {
			continue
		}
		if !window.Overlaps(scheduler.TimeRange{Start: reservation.Start, End: reservation.End}) {
			continue
		}
		if found == nil || reservation.Start.Before(found.Start) {
			match := reservation
			found = &match
		}
	}
	return found
}

func (s *Storage) collectLocked(match func(persistence.Reservation) bool) []persistence.Reservation {
	var reservations []persistence.Reservation
	for _, reservation := range s.reservations {
		if reservation.Status != persistence.StatusActive {
			continue
		}
		if match(reservation) {
			reservations = append(reservations, reservation)
		}
	}

	sort.Slice(reservations, func(i, j int) bool {
		if reservations[i].Start.Equal(reservations[j].Start) {
			return reservations[i].ID < reservations[j].ID
		}
		return reservations[i].Start.Before(reservations[j].Start)
	})
	return reservations
}

// --- RoomRepository implementation ---

// CreateRoom stores a room and assigns the next id.
func (s *Storage) CreateRoom(ctx context.Context, room persistence.Room) (persistence.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextRoomID++
	room.ID = s.nextRoomID
	now := time.Now().UTC()
	room.CreatedAt = now
	room.UpdatedAt = now
	s.rooms[room.ID] = room
	return room, nil
}

// GetRoom retrieves a room by id.
func (s *Storage) GetRoom(ctx context.Context, id int64) (persistence.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[id]
	if !ok {
		return persistence.Room{}, persistence.ErrNotFound
	}
	return room, nil
}

// ListRooms returns all rooms ordered by name.
func (s *Storage) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rooms := make([]persistence.Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		rooms = append(rooms, room)
	}
	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].Name == rooms[j].Name {
			return rooms[i].ID < rooms[j].ID
		}
		return rooms[i].Name < rooms[j].Name
	})
	return rooms, nil
}

// --- StudyGroupRepository implementation ---

// CreateStudyGroup stores a study group and assigns the next id.
func (s *Storage) CreateStudyGroup(ctx context.Context, group persistence.StudyGroup) (persistence.StudyGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextGroupID++
	group.ID = s.nextGroupID
	now := time.Now().UTC()
	group.CreatedAt = now
	group.UpdatedAt = now
	s.groups[group.ID] = group
	return group, nil
}

// GetStudyGroup retrieves a study group by id.
func (s *Storage) GetStudyGroup(ctx context.Context, id int64) (persistence.StudyGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	group, ok := s.groups[id]
	if !ok {
		return persistence.StudyGroup{}, persistence.ErrNotFound
	}
	return group, nil
}

// ListStudyGroups returns all study groups ordered by name.
func (s *Storage) ListStudyGroups(ctx context.Context) ([]persistence.StudyGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	groups := make([]persistence.StudyGroup, 0, len(s.groups))
	for _, group := range s.groups {
		groups = append(groups, group)
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Name == groups[j].Name {
			return groups[i].ID < groups[j].ID
		}
		return groups[i].Name < groups[j].Name
	})
	return groups, nil
}

// --- UserRepository / MembershipRepository implementation ---

// CreateUser stores a user and assigns the next id. Emails are unique.
func (s *Storage) CreateUser(ctx context.Context, user persistence.User) (persistence.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lower := strings.ToLower(user.Email)
	for _, existing := range s.users {
		if strings.ToLower(existing.Email) == lower {
			return persistence.User{}, persistence.ErrDuplicate
		}
	}

	s.nextUserID++
	user.ID = s.nextUserID
	user.Email = lower
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.ID] = user
	return user, nil
}

// GetUser retrieves a user by id.
func (s *Storage) GetUser(ctx context.Context, id int64) (persistence.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return persistence.User{}, persistence.ErrNotFound
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email address.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lower := strings.ToLower(email)
	for _, user := range s.users {
		if user.Email == lower {
			return user, nil
		}
	}
	return persistence.User{}, persistence.ErrNotFound
}

// AddMember records a membership edge.
func (s *Storage) AddMember(ctx context.Context, membership persistence.UserGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[membership.UserID]; !ok {
		return persistence.ErrForeignKeyViolation
	}
	if _, ok := s.groups[membership.GroupID]; !ok {
		return persistence.ErrForeignKeyViolation
	}
	for _, groupID := range s.memberships[membership.UserID] {
		if groupID == membership.GroupID {
			return persistence.ErrDuplicate
		}
	}

	s.memberships[membership.UserID] = append(s.memberships[membership.UserID], membership.GroupID)
	return nil
}

// GroupIDsForUser returns the ids of the study groups the user belongs to.
func (s *Storage) GroupIDsForUser(ctx context.Context, userID int64) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	groupIDs := append([]int64(nil), s.memberships[userID]...)
	sort.Slice(groupIDs, func(i, j int) bool { return groupIDs[i] < groupIDs[j] })
	return groupIDs, nil
}
