// Package sweeper cancels unpaid holds past their deadline.  It runs both
// on a periodic ticker and on demand through a protected endpoint hit by an
// external scheduler.  Every cancellation goes through the engine's single
// cancel entry point so expiry gets exactly the same credit and coupon
// reversal guarantees as a manual cancel.
package sweeper

import (
	"context"
	"log"
	"time"

	"github.com/arthemi/roombook/internal/engine"
	"github.com/arthemi/roombook/internal/model"
	"github.com/arthemi/roombook/internal/repository"
)

// batchSize bounds one sweep so a backlog cannot stall the loop.
const batchSize = 200

// Sweeper selects and cancels expired pending bookings.
type Sweeper struct {
	engine   *engine.Engine
	bookings *repository.BookingRepo
	interval time.Duration
	lead     time.Duration
	horizon  time.Duration
}

// New constructs a Sweeper.  lead is how close to its start time an unpaid
// booking may get before it is expired; horizon expires unpaid bookings by
// age regardless of start time.
func New(eng *engine.Engine, bookings *repository.BookingRepo, interval, lead, horizon time.Duration) *Sweeper {
	return &Sweeper{engine: eng, bookings: bookings, interval: interval, lead: lead, horizon: horizon}
}

// Run executes Sweep on every tick until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	log.Printf("sweeper: started, interval %s", s.interval)
	for {
		select {
		case <-ctx.Done():
			log.Println("sweeper: stopped")
			return
		case <-ticker.C:
			if n, err := s.Sweep(ctx); err != nil {
				log.Printf("sweeper: sweep failed: %v", err)
			} else if n > 0 {
				log.Printf("sweeper: cancelled %d expired bookings", n)
			}
		}
	}
}

// Due reports whether an unpaid hold should be expired at now: the booking's
// own payment deadline has passed, it starts within the lead time, or it is
// older than the horizon.  The SQL selection applies the same predicate;
// Sweep re-checks it on the loaded rows so a selection bug can never widen
// into cancelling live holds.
func Due(b *model.Booking, now time.Time, lead, horizon time.Duration) bool {
	if b.Status != model.BookingPending || b.Financial != model.FinancePendingPayment {
		return false
	}
	if b.ExpiresAt != nil && !b.ExpiresAt.After(now) {
		return true
	}
	if !b.StartTime.After(now.Add(lead)) {
		return true
	}
	return !b.CreatedAt.After(now.Add(-horizon))
}

// Sweep cancels every due booking once and returns how many were cancelled.
// Individual failures are logged and skipped; a booking that a concurrent
// request already cancelled counts as done.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	now := time.Now().UTC()
	due, err := s.bookings.ExpiredPending(ctx, now, s.lead, s.horizon, batchSize)
	if err != nil {
		return 0, err
	}
	count := 0
	for i := range due {
		if !Due(&due[i], now, s.lead, s.horizon) {
			continue
		}
		if _, err := s.engine.Cancel(ctx, engine.SystemActor(), due[i].ID, model.ReasonAutoExpired); err != nil {
			log.Printf("sweeper: cancel of booking %d failed: %v", due[i].ID, err)
			continue
		}
		count++
	}
	return count, nil
}
