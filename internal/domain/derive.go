package domain

import "time"

// Derived-field calculator. Everything here is pure: given the same stored
// dates and the same reference instant, the output is identical, and nothing
// mutates the store. Counters are computed on every read and never persisted;
// the only frozen derivation is estimated_return_date (see EstimatedReturn).

// DaysSince returns the number of whole days elapsed from date to now,
// clamped to zero. Partial days are truncated, so a person admitted 30 days
// and 23 hours ago still counts as 30 days in.
func DaysSince(date, now time.Time) int {
	d := int(now.Sub(date).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}

// Overdue reports whether now is strictly past end.
func Overdue(end, now time.Time) bool {
	return now.After(end)
}

// EstimatedReturn is the fixed-offset return estimate frozen at creation time:
// arrival plus the standard holding period.
func EstimatedReturn(arrival time.Time) time.Time {
	return arrival.AddDate(0, 0, HoldingPeriodDays)
}

// LeaveEnd computes the leave end date from its start and duration in days.
func LeaveEnd(start time.Time, durationDays int) time.Time {
	return start.AddDate(0, 0, durationDays)
}
