package scheduler

import (
	"errors"
	"time"
)

// ErrInvalidRange is returned when a range does not satisfy start < end.
var ErrInvalidRange = errors.New("scheduler: start must be before end")

// TimeRange is a half-open interval [Start, End). The start instant belongs
// to the range, the end instant does not, so two ranges that merely touch at
// an endpoint do not overlap.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// NewTimeRange validates the start < end invariant before constructing a range.
func NewTimeRange(start, end time.Time) (TimeRange, error) {
	r := TimeRange{Start: start, End: end}
	if !r.IsValid() {
		return TimeRange{}, ErrInvalidRange
	}
	return r, nil
}

// IsValid reports whether the range satisfies start < end.
func (r TimeRange) IsValid() bool {
	return !r.Start.IsZero() && !r.End.IsZero() && r.Start.Before(r.End)
}

// Overlaps reports whether two ranges share at least one instant under
// half-open semantics: a.start < b.end && b.start < a.end.
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}

// Contains reports whether the instant falls inside the range.
func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}
