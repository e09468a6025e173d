package scheduler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// IDTimeLayout is the textual timestamp form used in reservation identifiers
// and at the HTTP boundary.
const IDTimeLayout = "2006-01-02 15:04:05"

const idSeparator = "||"

// ErrMalformedID is returned when an identifier cannot be decomposed into a
// room id and a start instant.
var ErrMalformedID = errors.New("scheduler: malformed reservation id")

// ReservationID derives the identifier for a booking of the given room at the
// given start instant. The identity of "this room at this start" is unique per
// room, so the id is a composite key that can be re-derived without a lookup.
func ReservationID(roomID int64, start time.Time) string {
	return fmt.Sprintf("%d%s%s", roomID, idSeparator, start.UTC().Format(IDTimeLayout))
}

// ParseReservationID decomposes a derived identifier back into its room id and
// start instant.
func ParseReservationID(id string) (int64, time.Time, error) {
	roomPart, startPart, ok := strings.Cut(id, idSeparator)
	if !ok {
		return 0, time.Time{}, ErrMalformedID
	}
	roomID, err := strconv.ParseInt(roomPart, 10, 64)
	if err != nil {
		return 0, time.Time{}, ErrMalformedID
	}
	start, err := time.ParseInLocation(IDTimeLayout, startPart, time.UTC)
	if err != nil {
		return 0, time.Time{}, ErrMalformedID
	}
	return roomID, start, nil
}
