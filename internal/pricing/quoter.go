// Package pricing defines the price-computation port.  The real price table
// (packages, seasonal rates) lives outside this service; the engine only
// depends on a pure function from room and interval to a gross price.
package pricing

import (
	"time"

	"github.com/arthemi/roombook/internal/model"
)

// Quoter computes the gross price in cents for booking a room over
// [start,end).
type Quoter interface {
	Quote(room *model.Room, start, end time.Time) int64
}

// HourlyQuoter prices a slot at the room's hourly rate, prorated to the
// minute.  It is the default implementation used when no external price
// table is configured.
type HourlyQuoter struct{}

// Quote implements Quoter.
func (HourlyQuoter) Quote(room *model.Room, start, end time.Time) int64 {
	minutes := int64(end.Sub(start) / time.Minute)
	if minutes <= 0 {
		return 0
	}
	return room.HourlyRateCents * minutes / 60
}
