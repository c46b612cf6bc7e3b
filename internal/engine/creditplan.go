package engine

import (
	"sort"
	"time"

	"github.com/arthemi/roombook/internal/model"
	"github.com/arthemi/roombook/internal/repository"
)

// PlanConsumption selects which credits to debit for a slot and how much to
// take from each.  It is pure: callers load (and lock) the candidate
// credits, the planner filters and orders them, and the repository applies
// the resulting debits with guarded updates.
//
// Selection rules, in order:
//  1. eligibility – room hierarchy, usage-type gating and expiry, via
//     Credit.UsableFor;
//  2. ordering – ascending expiry (never-expiring last), then ascending
//     creation date, ties preferring credits scoped to the exact room over
//     generic or hierarchical ones;
//  3. greedy walk – debit min(remaining, still owed) from each credit until
//     the amount is covered or candidates run out; the caller pays any
//     remainder in cash.
func PlanConsumption(credits []model.Credit, roomID uint64, roomTier int, start, end, now time.Time, amountCents int64) ([]repository.CreditConsumption, int64) {
	if amountCents <= 0 {
		return nil, 0
	}
	eligible := make([]model.Credit, 0, len(credits))
	for _, c := range credits {
		if c.UsableFor(roomID, roomTier, start, end, now) {
			eligible = append(eligible, c)
		}
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		ei, ej := expiryKey(&eligible[i]), expiryKey(&eligible[j])
		if !ei.Equal(ej) {
			return ei.Before(ej)
		}
		if !eligible[i].CreatedAt.Equal(eligible[j].CreatedAt) {
			return eligible[i].CreatedAt.Before(eligible[j].CreatedAt)
		}
		return eligible[i].ExactRoomMatch(roomID) && !eligible[j].ExactRoomMatch(roomID)
	})
	var plan []repository.CreditConsumption
	var total int64
	owed := amountCents
	for i := range eligible {
		if owed == 0 {
			break
		}
		take := eligible[i].RemainingCents
		if take > owed {
			take = owed
		}
		plan = append(plan, repository.CreditConsumption{CreditID: eligible[i].ID, AmountCents: take})
		total += take
		owed -= take
	}
	return plan, total
}

// expiryKey orders never-expiring credits after every dated one.
func expiryKey(c *model.Credit) time.Time {
	if c.ExpiresAt == nil {
		return time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
	}
	return *c.ExpiresAt
}
