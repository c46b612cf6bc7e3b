package timeutil_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/arthemi/roombook/internal/timeutil"
)

func at(day int, hour, min int) time.Time {
	return time.Date(2026, 9, day, hour, min, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	// existing booking 10:00-12:00
	start, end := at(7, 10, 0), at(7, 12, 0)

	assert.True(t, timeutil.Overlaps(at(7, 11, 0), at(7, 13, 0), start, end, 0))
	assert.True(t, timeutil.Overlaps(at(7, 9, 0), at(7, 10, 30), start, end, 0))
	assert.True(t, timeutil.Overlaps(at(7, 10, 30), at(7, 11, 30), start, end, 0))

	// half-open intervals: back-to-back is fine with zero buffer
	assert.False(t, timeutil.Overlaps(at(7, 12, 0), at(7, 13, 0), start, end, 0))
	assert.False(t, timeutil.Overlaps(at(7, 8, 0), at(7, 10, 0), start, end, 0))

	// a cleanup buffer pushes the existing end outward
	assert.True(t, timeutil.Overlaps(at(7, 12, 0), at(7, 13, 0), start, end, 15*time.Minute))
	assert.False(t, timeutil.Overlaps(at(7, 12, 15), at(7, 13, 0), start, end, 15*time.Minute))
}

func TestWithinBusinessHours(t *testing.T) {
	assert.True(t, timeutil.WithinBusinessHours(at(7, 8, 0), at(7, 9, 0)))
	assert.True(t, timeutil.WithinBusinessHours(at(7, 21, 0), at(7, 22, 0)))

	assert.False(t, timeutil.WithinBusinessHours(at(7, 7, 30), at(7, 9, 0)), "before open")
	assert.False(t, timeutil.WithinBusinessHours(at(7, 21, 30), at(7, 22, 30)), "past close")
	assert.False(t, timeutil.WithinBusinessHours(at(7, 10, 0), at(7, 10, 0)), "empty interval")
	assert.False(t, timeutil.WithinBusinessHours(at(7, 12, 0), at(7, 11, 0)), "inverted interval")
	assert.False(t, timeutil.WithinBusinessHours(at(7, 21, 0), at(8, 9, 0)), "multi-day")
}

func TestIsShiftBlock(t *testing.T) {
	assert.True(t, timeutil.IsShiftBlock(at(7, 8, 0), at(7, 12, 0)))
	assert.True(t, timeutil.IsShiftBlock(at(7, 12, 0), at(7, 16, 0)))
	assert.True(t, timeutil.IsShiftBlock(at(7, 16, 0), at(7, 20, 0)))

	assert.False(t, timeutil.IsShiftBlock(at(7, 9, 0), at(7, 13, 0)), "right length, wrong alignment")
	assert.False(t, timeutil.IsShiftBlock(at(7, 8, 30), at(7, 12, 30)), "not on the hour")
	assert.False(t, timeutil.IsShiftBlock(at(7, 8, 0), at(7, 11, 0)), "wrong length")
}

func TestAlignedToGrid(t *testing.T) {
	assert.True(t, timeutil.AlignedToGrid(at(7, 8, 0), at(7, 9, 0)))
	assert.True(t, timeutil.AlignedToGrid(at(7, 8, 30), at(7, 10, 30)))

	assert.False(t, timeutil.AlignedToGrid(at(7, 8, 0), at(7, 8, 45)), "unaligned end")
	assert.False(t, timeutil.AlignedToGrid(at(7, 8, 45), at(7, 9, 30)), "unaligned start")
	assert.False(t, timeutil.AlignedToGrid(at(7, 8, 15), at(7, 9, 15)))
}

func TestBucketsExactForAlignedIntervals(t *testing.T) {
	// Adjacent grid-aligned bookings must never claim the same slot_locks
	// bucket; the unique index would turn a bookable interval into a
	// conflict.
	first := timeutil.Buckets(at(7, 8, 0), at(7, 8, 30))
	second := timeutil.Buckets(at(7, 8, 30), at(7, 9, 30))
	for _, a := range first {
		for _, b := range second {
			assert.False(t, a.Equal(b), "adjacent bookings share bucket %v", a)
		}
	}

	// And overlapping aligned bookings always collide on at least one.
	third := timeutil.Buckets(at(7, 9, 0), at(7, 10, 0))
	shared := false
	for _, a := range second {
		for _, b := range third {
			if a.Equal(b) {
				shared = true
			}
		}
	}
	assert.True(t, shared, "overlapping bookings must collide on a bucket")
}

func TestBuckets(t *testing.T) {
	got := timeutil.Buckets(at(7, 10, 0), at(7, 11, 30))
	assert.Equal(t, []time.Time{at(7, 10, 0), at(7, 10, 30), at(7, 11, 0)}, got)

	// unaligned start truncates down so overlapping intervals share a bucket
	got = timeutil.Buckets(at(7, 10, 15), at(7, 11, 0))
	assert.Equal(t, []time.Time{at(7, 10, 0), at(7, 10, 30)}, got)
}
