// Package timeutil holds the pure slot arithmetic used by the reservation
// engine: interval overlap with a trailing cleanup buffer, business-hours
// validation and the day-class / duration-shape checks that gate credit
// usage types.  All comparisons are performed in UTC; callers must not pass
// local times.
package timeutil

import "time"

// BusinessOpenHour and BusinessCloseHour bound the bookable day in UTC.
// Slots must start no earlier than open and end no later than close.
const (
	BusinessOpenHour  = 8
	BusinessCloseHour = 22
)

// ShiftHours lists the start hours of the three predefined 4-hour shift
// windows (08-12, 12-16, 16-20).  SHIFT-typed credits only apply to slots
// exactly aligned to one of these windows.
var ShiftHours = [3]int{8, 12, 16}

// ShiftDuration is the fixed length of a shift block.
const ShiftDuration = 4 * time.Hour

// SlotBucket is the granularity of the slot_locks table.  Every active
// booking owns one lock row per bucket it covers; the UNIQUE index on
// (room_id, slot_start) is the constraint-level defense against two
// transactions reserving overlapping intervals.
const SlotBucket = 30 * time.Minute

// Overlaps reports whether the candidate interval [newStart,newEnd) collides
// with an existing booking [start,end) once the trailing cleanup buffer is
// added to the existing booking's end.  Intervals are half-open, so a
// booking ending exactly when another starts does not conflict when the
// buffer is zero.
func Overlaps(newStart, newEnd, start, end time.Time, buffer time.Duration) bool {
	return newStart.Before(end.Add(buffer)) && newEnd.After(start)
}

// WithinBusinessHours reports whether [start,end) falls inside the bookable
// day.  Multi-day slots are rejected.
func WithinBusinessHours(start, end time.Time) bool {
	if !end.After(start) {
		return false
	}
	if start.YearDay() != end.Add(-time.Nanosecond).YearDay() || start.Year() != end.Year() {
		return false
	}
	open := time.Date(start.Year(), start.Month(), start.Day(), BusinessOpenHour, 0, 0, 0, time.UTC)
	close := time.Date(start.Year(), start.Month(), start.Day(), BusinessCloseHour, 0, 0, 0, time.UTC)
	return !start.Before(open) && !end.After(close)
}

// IsSaturday reports the day class of a slot start.
func IsSaturday(t time.Time) bool { return t.UTC().Weekday() == time.Saturday }

// IsHourly reports whether a slot is exactly one hour long, the shape
// required by HOURLY and SATURDAY_HOURLY credits.
func IsHourly(start, end time.Time) bool { return end.Sub(start) == time.Hour }

// IsShiftBlock reports whether a slot is exactly one of the three predefined
// 4-hour windows.  Both the duration and the alignment must match.
func IsShiftBlock(start, end time.Time) bool {
	if end.Sub(start) != ShiftDuration {
		return false
	}
	if start.Minute() != 0 || start.Second() != 0 || start.Nanosecond() != 0 {
		return false
	}
	for _, h := range ShiftHours {
		if start.UTC().Hour() == h {
			return true
		}
	}
	return false
}

// AlignedToGrid reports whether both endpoints of [start,end) sit exactly on
// the slot bucket grid.  Bookings are only accepted on the grid: an unaligned
// endpoint would truncate into a bucket shared with a non-overlapping
// neighbour, making the slot_locks unique index reject a bookable interval.
func AlignedToGrid(start, end time.Time) bool {
	return start.UTC().Truncate(SlotBucket).Equal(start.UTC()) &&
		end.UTC().Truncate(SlotBucket).Equal(end.UTC())
}

// Buckets returns the starts of every slot bucket covered by [start,end).
// For grid-aligned intervals (the only ones accepted) the buckets represent
// the interval exactly: two bookings share a bucket iff they overlap.
func Buckets(start, end time.Time) []time.Time {
	first := start.UTC().Truncate(SlotBucket)
	var out []time.Time
	for t := first; t.Before(end); t = t.Add(SlotBucket) {
		out = append(out, t)
	}
	return out
}
