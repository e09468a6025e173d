package persistence

import (
	"context"
	"time"
)

// ReservationRepository stores reservations and answers the range queries the
// scheduling core needs.
//
// CreateReservation and ReplaceReservation each execute their overlap check
// and the subsequent write inside one atomic unit of work, so two racing
// writers for the same room cannot both pass the check. The loser observes
// ErrConflict.
type ReservationRepository interface {
	// CreateReservation inserts the reservation unless an active reservation
	// for the same room overlaps its range, in which case ErrConflict is
	// returned and nothing is written.
	CreateReservation(ctx context.Context, reservation Reservation) error
	// ReplaceReservation atomically deletes the reservation identified by
	// oldID and inserts the replacement, re-checking the replacement's range
	// against the remaining reservations for its room. ErrNotFound if oldID
	// is absent, ErrConflict if the new range overlaps another reservation.
	ReplaceReservation(ctx context.Context, oldID string, reservation Reservation) error
	GetReservation(ctx context.Context, id string) (Reservation, error)
	DeleteReservation(ctx context.Context, id string) error
	// FindOverlapping returns the first active reservation for the room whose
	// range overlaps [start, end), or ErrNotFound when the window is free.
	FindOverlapping(ctx context.Context, roomID int64, start, end time.Time) (Reservation, error)
	ListByRoom(ctx context.Context, roomID int64) ([]Reservation, error)
	ListByRoomAndRange(ctx context.Context, roomID int64, start, end time.Time) ([]Reservation, error)
	ListByGroupIDs(ctx context.Context, groupIDs []int64) ([]Reservation, error)
}

// RoomRepository exposes the room directory.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room Room) (Room, error)
	GetRoom(ctx context.Context, id int64) (Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
}

// StudyGroupRepository exposes the study-group directory.
type StudyGroupRepository interface {
	CreateStudyGroup(ctx context.Context, group StudyGroup) (StudyGroup, error)
	GetStudyGroup(ctx context.Context, id int64) (StudyGroup, error)
	ListStudyGroups(ctx context.Context) ([]StudyGroup, error)
}

// UserRepository stores registered accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) (User, error)
	GetUser(ctx context.Context, id int64) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
}

// MembershipRepository stores the user-to-group membership edges consumed by
// the list-by-user query.
type MembershipRepository interface {
	AddMember(ctx context.Context, membership UserGroup) error
	GroupIDsForUser(ctx context.Context, userID int64) ([]int64, error)
}
