package calendar

import (
	"time"

	"github.com/salonhq/salon-api/internal/model"
)

// Pure calendar rules. Inputs are plain snapshots so the rules stay
// independent of the persistence layer and deterministic under test.

// IsOpen resolves open/closed for a branch day from its weekly schedule and
// holiday list. A branch with no BusinessHours row for the weekday is closed;
// a non-optional holiday on the exact date forces closure regardless of the
// weekly schedule.
func IsOpen(hours *model.BusinessHours, holiday *model.Holiday) bool {
	if holiday != nil && !holiday.Optional {
		return false
	}
	if hours == nil || hours.Closed {
		return false
	}
	return true
}

// OpeningTime returns the "15:04" opening time, or nil when the branch has no
// schedule row for the weekday. Callers treat nil as unknown/closed.
func OpeningTime(hours *model.BusinessHours) *string {
	if hours == nil || hours.Closed {
		return nil
	}
	t := hours.OpenTime
	return &t
}

// ClosingTime mirrors OpeningTime for the end of day.
func ClosingTime(hours *model.BusinessHours) *string {
	if hours == nil || hours.Closed {
		return nil
	}
	t := hours.CloseTime
	return &t
}

// WithinHours reports whether a "15:04" slot time falls inside the day's
// opening window and outside the lunch window. The closing time itself is
// not bookable.
func WithinHours(hours *model.BusinessHours, clock string) bool {
	if hours == nil || hours.Closed {
		return false
	}
	if clock < hours.OpenTime || clock >= hours.CloseTime {
		return false
	}
	if hours.LunchStart != nil && hours.LunchEnd != nil &&
		clock >= *hours.LunchStart && clock < *hours.LunchEnd {
		return false
	}
	return true
}

// ClockOf formats a timestamp as the "15:04" wall clock used by the schedule
// rows.
func ClockOf(t time.Time) string {
	return t.Format("15:04")
}

// DateOf truncates a timestamp to its calendar date in the timestamp's
// location, matching how holiday rows are keyed.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
