package engine

import (
	"context"
	"time"
)

// Balance sums the remaining value of every credit the user could spend on
// the given room and slot right now.  With roomID zero the unfiltered
// ledger balance is returned.
func (e *Engine) Balance(ctx context.Context, userID, roomID uint64, start, end time.Time) (int64, error) {
	now := time.Now().UTC()
	credits, err := e.credits.Eligible(ctx, userID, now)
	if err != nil {
		return 0, err
	}
	var total int64
	if roomID == 0 {
		for _, c := range credits {
			total += c.RemainingCents
		}
		return total, nil
	}
	room, err := e.rooms.GetByID(ctx, roomID)
	if err != nil {
		return 0, err
	}
	for _, c := range credits {
		if c.UsableFor(room.ID, room.Tier, start.UTC(), end.UTC(), now) {
			total += c.RemainingCents
		}
	}
	return total, nil
}
