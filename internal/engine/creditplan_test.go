package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/arthemi/roombook/internal/engine"
	"github.com/arthemi/roombook/internal/model"
)

// Monday slot inside business hours.
var (
	planNow   = time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	weekday10 = time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)
	weekday11 = time.Date(2026, 9, 7, 11, 0, 0, 0, time.UTC)
	saturday  = time.Date(2026, 9, 5, 10, 0, 0, 0, time.UTC)
)

func confirmed(id uint64, remaining int64, created time.Time) model.Credit {
	return model.Credit{
		ID:             id,
		UserID:         1,
		AmountCents:    remaining,
		RemainingCents: remaining,
		Type:           model.CreditManual,
		Usage:          model.UsageLegacy,
		Status:         model.CreditConfirmed,
		CreatedAt:      created,
	}
}

func TestPlanConsumptionGreedyWalk(t *testing.T) {
	credits := []model.Credit{
		confirmed(1, 1000, planNow.Add(-48*time.Hour)),
		confirmed(2, 1000, planNow.Add(-24*time.Hour)),
	}
	plan, total := engine.PlanConsumption(credits, 5, 1, weekday10, weekday11, planNow, 1500)
	assert.Equal(t, int64(1500), total)
	if assert.Len(t, plan, 2) {
		assert.Equal(t, uint64(1), plan[0].CreditID)
		assert.Equal(t, int64(1000), plan[0].AmountCents)
		assert.Equal(t, uint64(2), plan[1].CreditID)
		assert.Equal(t, int64(500), plan[1].AmountCents)
	}
}

func TestPlanConsumptionPartialCoverage(t *testing.T) {
	credits := []model.Credit{confirmed(1, 700, planNow)}
	plan, total := engine.PlanConsumption(credits, 5, 1, weekday10, weekday11, planNow, 2000)
	assert.Equal(t, int64(700), total, "remainder is paid in cash, not an error")
	assert.Len(t, plan, 1)
}

func TestPlanConsumptionExpiringFirst(t *testing.T) {
	soon := planNow.Add(6 * time.Hour)
	later := planNow.Add(72 * time.Hour)
	never := confirmed(1, 500, planNow.Add(-72*time.Hour)) // oldest but never expires
	expSoon := confirmed(2, 500, planNow.Add(-time.Hour))
	expSoon.ExpiresAt = &soon
	expLater := confirmed(3, 500, planNow.Add(-48*time.Hour))
	expLater.ExpiresAt = &later

	plan, total := engine.PlanConsumption([]model.Credit{never, expSoon, expLater}, 5, 1, weekday10, weekday11, planNow, 1200)
	assert.Equal(t, int64(1200), total)
	if assert.Len(t, plan, 3) {
		assert.Equal(t, uint64(2), plan[0].CreditID, "closest expiry drains first")
		assert.Equal(t, uint64(3), plan[1].CreditID)
		assert.Equal(t, uint64(1), plan[2].CreditID, "never-expiring drains last")
	}
}

func TestPlanConsumptionRoomHierarchy(t *testing.T) {
	roomA, roomB := uint64(5), uint64(9)
	tier1, tier2 := 1, 2

	scopedToA := confirmed(1, 500, planNow)
	scopedToA.RoomID = &roomA
	scopedToA.RoomTier = &tier1

	scopedToB := confirmed(2, 500, planNow)
	scopedToB.RoomID = &roomB
	scopedToB.RoomTier = &tier2

	// Booking a tier-2 room: the tier-1 scoped credit spends downward, the
	// tier-2 credit for a different room spends sideways at equal tier.
	plan, total := engine.PlanConsumption([]model.Credit{scopedToA, scopedToB}, 7, 2, weekday10, weekday11, planNow, 1000)
	assert.Equal(t, int64(1000), total)
	assert.Len(t, plan, 2)

	// Booking a tier-1 room: the tier-2 scoped credit cannot spend upward.
	plan, total = engine.PlanConsumption([]model.Credit{scopedToB}, 7, 1, weekday10, weekday11, planNow, 1000)
	assert.Equal(t, int64(0), total)
	assert.Empty(t, plan)
}

func TestPlanConsumptionExactRoomPreferred(t *testing.T) {
	roomID := uint64(5)
	tier := 1
	generic := confirmed(1, 500, planNow)
	scoped := confirmed(2, 500, planNow) // same created_at forces the tie-break
	scoped.RoomID = &roomID
	scoped.RoomTier = &tier

	plan, _ := engine.PlanConsumption([]model.Credit{generic, scoped}, roomID, 1, weekday10, weekday11, planNow, 300)
	if assert.Len(t, plan, 1) {
		assert.Equal(t, uint64(2), plan[0].CreditID, "room-scoped credit drains before the generic one")
	}
}

func TestPlanConsumptionUsageGating(t *testing.T) {
	hourly := confirmed(1, 500, planNow)
	hourly.Usage = model.UsageHourly
	shift := confirmed(2, 500, planNow)
	shift.Usage = model.UsageShift
	satHourly := confirmed(3, 500, planNow)
	satHourly.Usage = model.UsageSaturdayHourly
	credits := []model.Credit{hourly, shift, satHourly}

	// Weekday one-hour slot: only the HOURLY credit applies.
	plan, _ := engine.PlanConsumption(credits, 5, 1, weekday10, weekday11, planNow, 2000)
	if assert.Len(t, plan, 1) {
		assert.Equal(t, uint64(1), plan[0].CreditID)
	}

	// Weekday shift block 12-16: only the SHIFT credit applies.
	shiftStart := time.Date(2026, 9, 7, 12, 0, 0, 0, time.UTC)
	plan, _ = engine.PlanConsumption(credits, 5, 1, shiftStart, shiftStart.Add(4*time.Hour), planNow, 2000)
	if assert.Len(t, plan, 1) {
		assert.Equal(t, uint64(2), plan[0].CreditID)
	}

	// Saturday one-hour slot: only the SATURDAY_HOURLY credit applies.
	plan, _ = engine.PlanConsumption(credits, 5, 1, saturday, saturday.Add(time.Hour), planNow, 2000)
	if assert.Len(t, plan, 1) {
		assert.Equal(t, uint64(3), plan[0].CreditID)
	}
}

func TestPlanConsumptionLegacyDayClass(t *testing.T) {
	weekdayLegacy := confirmed(1, 500, planNow)
	satLegacy := confirmed(2, 500, planNow)
	satLegacy.Saturday = true
	credits := []model.Credit{weekdayLegacy, satLegacy}

	plan, _ := engine.PlanConsumption(credits, 5, 1, weekday10, weekday11, planNow, 2000)
	if assert.Len(t, plan, 1) {
		assert.Equal(t, uint64(1), plan[0].CreditID)
	}

	plan, _ = engine.PlanConsumption(credits, 5, 1, saturday, saturday.Add(time.Hour), planNow, 2000)
	if assert.Len(t, plan, 1) {
		assert.Equal(t, uint64(2), plan[0].CreditID)
	}

	// Sunday: nothing spends.
	sunday := time.Date(2026, 9, 6, 10, 0, 0, 0, time.UTC)
	plan, total := engine.PlanConsumption(credits, 5, 1, sunday, sunday.Add(time.Hour), planNow, 2000)
	assert.Empty(t, plan)
	assert.Equal(t, int64(0), total)
}

func TestPlanConsumptionSkipsUnusableStates(t *testing.T) {
	used := confirmed(1, 0, planNow)
	used.Status = model.CreditUsed
	pending := confirmed(2, 500, planNow)
	pending.Status = model.CreditPending
	expired := confirmed(3, 500, planNow)
	past := planNow.Add(-time.Minute)
	expired.ExpiresAt = &past

	plan, total := engine.PlanConsumption([]model.Credit{used, pending, expired}, 5, 1, weekday10, weekday11, planNow, 1000)
	assert.Empty(t, plan)
	assert.Equal(t, int64(0), total)
}

func TestPlanConsumptionZeroAmount(t *testing.T) {
	plan, total := engine.PlanConsumption([]model.Credit{confirmed(1, 500, planNow)}, 5, 1, weekday10, weekday11, planNow, 0)
	assert.Empty(t, plan)
	assert.Equal(t, int64(0), total)
}
