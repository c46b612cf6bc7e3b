package sweeper_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/arthemi/roombook/internal/model"
	"github.com/arthemi/roombook/internal/sweeper"
)

var (
	sweepNow = time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)
	lead     = time.Hour
	horizon  = 3 * time.Hour
)

func unpaidHold(created, start time.Time, expires *time.Time) model.Booking {
	return model.Booking{
		ID:        1,
		Status:    model.BookingPending,
		Financial: model.FinancePendingPayment,
		CreatedAt: created,
		StartTime: start,
		ExpiresAt: expires,
	}
}

func TestDuePaymentDeadlinePassed(t *testing.T) {
	// The hold's own deadline governs even when it is younger than the
	// horizon and starts far in the future.
	deadline := sweepNow.Add(-time.Minute)
	b := unpaidHold(sweepNow.Add(-2*time.Hour), sweepNow.Add(48*time.Hour), &deadline)
	assert.True(t, sweeper.Due(&b, sweepNow, lead, horizon))

	future := sweepNow.Add(time.Hour)
	b = unpaidHold(sweepNow.Add(-2*time.Hour), sweepNow.Add(48*time.Hour), &future)
	assert.False(t, sweeper.Due(&b, sweepNow, lead, horizon), "deadline still ahead")
}

func TestDueStartWithinLead(t *testing.T) {
	b := unpaidHold(sweepNow.Add(-time.Hour), sweepNow.Add(30*time.Minute), nil)
	assert.True(t, sweeper.Due(&b, sweepNow, lead, horizon))

	b = unpaidHold(sweepNow.Add(-time.Hour), sweepNow.Add(2*time.Hour), nil)
	assert.False(t, sweeper.Due(&b, sweepNow, lead, horizon))
}

func TestDueOlderThanHorizon(t *testing.T) {
	b := unpaidHold(sweepNow.Add(-4*time.Hour), sweepNow.Add(48*time.Hour), nil)
	assert.True(t, sweeper.Due(&b, sweepNow, lead, horizon))
}

func TestDueIgnoresSettledAndCancelled(t *testing.T) {
	deadline := sweepNow.Add(-time.Hour)
	b := unpaidHold(sweepNow.Add(-4*time.Hour), sweepNow.Add(time.Minute), &deadline)

	b.Status, b.Financial = model.BookingConfirmed, model.FinancePaid
	assert.False(t, sweeper.Due(&b, sweepNow, lead, horizon))

	b.Status, b.Financial = model.BookingCancelled, model.FinancePendingPayment
	assert.False(t, sweeper.Due(&b, sweepNow, lead, horizon))
}
