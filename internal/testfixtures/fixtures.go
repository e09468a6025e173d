package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/room-reservations/internal/persistence"
	"github.com/example/room-reservations/internal/scheduler"
)

var (
	roomCounter  uint64
	groupCounter uint64
	userCounter  uint64
)

var referenceTime = time.Date(2019, time.November, 1, 12, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- Room fixtures -----------------------------

// RoomOption configures a generated room fixture.
type RoomOption func(*persistence.Room)

// NewRoomFixture returns a deterministic room record with optional overrides.
func NewRoomFixture(opts ...RoomOption) persistence.Room {
	idx := atomic.AddUint64(&roomCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	room := persistence.Room{
		ID:        int64(idx),
		Name:      fmt.Sprintf("Room %03d", idx),
		Location:  fmt.Sprintf("Floor %d", idx%5+1),
		Capacity:  8,
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&room)
	}
	return room
}

// WithRoomID overrides the generated room id.
func WithRoomID(id int64) RoomOption {
	return func(r *persistence.Room) {
		r.ID = id
	}
}

// WithRoomName overrides the generated room name.
func WithRoomName(name string) RoomOption {
	return func(r *persistence.Room) {
		r.Name = name
	}
}

// WithRoomCapacity overrides the generated capacity.
func WithRoomCapacity(capacity int) RoomOption {
	return func(r *persistence.Room) {
		r.Capacity = capacity
	}
}

// -------------------------- Study group fixtures --------------------------

// StudyGroupOption configures a generated study-group fixture.
type StudyGroupOption func(*persistence.StudyGroup)

// NewStudyGroupFixture returns a deterministic study-group record.
func NewStudyGroupFixture(opts ...StudyGroupOption) persistence.StudyGroup {
	idx := atomic.AddUint64(&groupCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	group := persistence.StudyGroup{
		ID:        int64(idx),
		Name:      fmt.Sprintf("Study Group %03d", idx),
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&group)
	}
	return group
}

// WithStudyGroupID overrides the generated group id.
func WithStudyGroupID(id int64) StudyGroupOption {
	return func(g *persistence.StudyGroup) {
		g.ID = id
	}
}

// WithStudyGroupName overrides the generated group name.
func WithStudyGroupName(name string) StudyGroupOption {
	return func(g *persistence.StudyGroup) {
		g.Name = name
	}
}

// ----------------------------- User fixtures -----------------------------

// UserOption configures a generated user fixture.
type UserOption func(*persistence.User)

// NewUserFixture returns a deterministic user record with optional overrides.
func NewUserFixture(opts ...UserOption) persistence.User {
	idx := atomic.AddUint64(&userCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	user := persistence.User{
		ID:           int64(idx),
		Email:        fmt.Sprintf("user-%03d@example.com", idx),
		DisplayName:  fmt.Sprintf("User %03d", idx),
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&user)
	}
	return user
}

// WithUserID overrides the generated user id.
func WithUserID(id int64) UserOption {
	return func(u *persistence.User) {
		u.ID = id
	}
}

// WithUserEmail overrides the generated email address.
func WithUserEmail(email string) UserOption {
	return func(u *persistence.User) {
		u.Email = email
	}
}

// -------------------------- Reservation fixtures --------------------------

// ReservationOption configures a generated reservation fixture.
type ReservationOption func(*persistence.Reservation)

// NewReservationFixture returns a reservation with its id derived from the
// room and start time, matching what the repositories persist.
func NewReservationFixture(roomID, groupID int64, start, end time.Time, opts ...ReservationOption) persistence.Reservation {
	reservation := persistence.Reservation{
		ID:        scheduler.ReservationID(roomID, start),
		RoomID:    roomID,
		GroupID:   groupID,
		Start:     start,
		End:       end,
		Status:    persistence.StatusActive,
		CreatedAt: referenceTime,
		UpdatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&reservation)
	}
	return reservation
}

// WithReservationStatus overrides the status flag.
func WithReservationStatus(status int) ReservationOption {
	return func(r *persistence.Reservation) {
		r.Status = status
	}
}
