package application

import "time"

// StatusActive marks a live reservation.
const StatusActive = 1

// Reservation represents a persisted booking exposed by the services.
type Reservation struct {
	ID        string
	RoomID    int64
	GroupID   int64
	Start     time.Time
	End       time.Time
	Status    int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateReservationParams wraps the data required to book a room.
type CreateReservationParams struct {
	RoomID  int64
	GroupID int64
	Start   time.Time
	End     time.Time
}

// UpdateReservationParams wraps the data required to replace a reservation.
// Updates are whole-record replacements, so callers resupply every mutable
// field; a changed start time yields a new derived id.
type UpdateReservationParams struct {
	RoomID        int64
	ReservationID string
	GroupID       int64
	Start         time.Time
	End           time.Time
}

// ListByRoomAndRangeParams wraps a room-scoped availability query.
type ListByRoomAndRangeParams struct {
	RoomID int64
	Start  time.Time
	End    time.Time
}

// Room represents a bookable room as exposed by the directory views.
type Room struct {
	ID       int64
	Name     string
	Location string
	Capacity int
}

// StudyGroup represents a booking party as exposed by the directory views.
type StudyGroup struct {
	ID   int64
	Name string
}

// User represents a registered account. The password hash never leaves the
// application layer.
type User struct {
	ID          int64
	Email       string
	DisplayName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SignUpParams wraps the data required to register a user.
type SignUpParams struct {
	Email       string
	DisplayName string
	Password    string
}
