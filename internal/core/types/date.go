package types

import "time"

// DateOf truncates t to its calendar date (midnight UTC of the same y/m/d).
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of calendar days from "from" to "to".
// The result is negative when to is before from.
func DaysBetween(from, to time.Time) int {
	return int(DateOf(to).Sub(DateOf(from)).Hours() / 24)
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}
