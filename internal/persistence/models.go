package persistence

import "time"

// StatusActive marks a live reservation. Other values are reserved for
// future states (cancelled, pending).
const StatusActive = 1

// Reservation represents a booking of a room by a study group over a
// half-open time window [Start, End).
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

// Room represents a bookable physical room. The reservation core only reads
// rooms; their metadata is owned elsewhere.
type Room struct {
	ID        int64
	Name      string
	Location  string
	Capacity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StudyGroup represents the party a reservation is booked for.
type StudyGroup struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// User represents a registered account that can belong to study groups.
type User struct {
	ID           int64
	Email        string
	DisplayName  string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserGroup represents a membership edge between a user and a study group.
type UserGroup struct {
	UserID  int64
	GroupID int64
}
