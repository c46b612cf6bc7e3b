package model

import (
	"time"

	"github.com/arthemi/roombook/internal/timeutil"
)

// CreditType records how a credit came to exist.
type CreditType string

const (
	CreditCancellation CreditType = "CANCELLATION" // minted by a refund-eligible cancellation
	CreditManual       CreditType = "MANUAL"       // granted by staff
	CreditPromo        CreditType = "PROMO"        // promotional grant
	CreditSublet       CreditType = "SUBLET"       // sublet compensation
)

// CreditStatus tracks the ledger state of a credit.  A credit whose
// remaining amount reaches zero must be USED; restoring value flips it back
// to CONFIRMED.
type CreditStatus string

const (
	CreditPending   CreditStatus = "PENDING"
	CreditConfirmed CreditStatus = "CONFIRMED"
	CreditUsed      CreditStatus = "USED"
)

// UsageType restricts when a credit may be spent.  It is an explicit tagged
// variant: credits created before usage typing existed carry UsageLegacy
// (NULL in the database) and follow the grandfathered rule implemented in
// UsableFor.  The other variants pin a day class and a duration shape.
type UsageType string

const (
	UsageLegacy         UsageType = "LEGACY"
	UsageHourly         UsageType = "HOURLY"
	UsageShift          UsageType = "SHIFT"
	UsageSaturdayHourly UsageType = "SATURDAY_HOURLY"
	UsageSaturdayShift  UsageType = "SATURDAY_SHIFT"
)

// Valid reports whether u is one of the declared usage variants.  Inputs are
// checked before they reach the database; the ENUM column would otherwise
// reject (or, in non-strict mode, silently mangle) an unknown value.
func (u UsageType) Valid() bool {
	switch u {
	case UsageLegacy, UsageHourly, UsageShift, UsageSaturdayHourly, UsageSaturdayShift:
		return true
	}
	return false
}

// Credit is a prepaid, partially spendable ledger entry.  Credits are never
// deleted: they are decremented, restored or expired so the ledger doubles
// as an audit trail.  0 <= RemainingCents <= AmountCents holds at all times.
//
// Fields:
//  ID             – primary key identifier.
//  UserID         – owner of the credit.
//  RoomID         – room the credit is scoped to; nil means usable anywhere.
//  RoomTier       – tier of the scoped room, loaded via join; nil when generic.
//  AmountCents    – original value in cents.
//  RemainingCents – unspent value in cents.
//  Type           – provenance of the credit.
//  Usage          – usage-type restriction (LEGACY for pre-typing credits).
//  Saturday       – legacy day-class flag; meaningful only when Usage is LEGACY.
//  Status         – ledger state (PENDING, CONFIRMED, USED).
//  ExpiresAt      – expiry timestamp, nil when the credit never expires.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type Credit struct {
	ID             uint64       // credits.id
	UserID         uint64       // credits.user_id
	RoomID         *uint64      // credits.room_id (nullable)
	RoomTier       *int         // rooms.tier of the scoped room (join)
	AmountCents    int64        // credits.amount_cents
	RemainingCents int64        // credits.remaining_amount_cents
	Type           CreditType   // credits.type
	Usage          UsageType    // credits.usage_type (NULL -> LEGACY)
	Saturday       bool         // credits.saturday (legacy day-class flag)
	Status         CreditStatus // credits.status
	ExpiresAt      *time.Time   // credits.expires_at (nullable)
	CreatedAt      time.Time    // credits.created_at
	UpdatedAt      time.Time    // credits.updated_at
}

// UsableFor reports whether the credit may be spent on the given room and
// slot.  Three gates apply, in order: room hierarchy (a credit scoped to
// tier T spends at tier >= T, generic credits spend anywhere), usage-type
// day-class and duration-shape restrictions, and expiry relative to now.
func (c *Credit) UsableFor(roomID uint64, roomTier int, start, end, now time.Time) bool {
	if c.Status != CreditConfirmed || c.RemainingCents <= 0 {
		return false
	}
	if c.ExpiresAt != nil && !c.ExpiresAt.After(now) {
		return false
	}
	if c.RoomID != nil && *c.RoomID != roomID {
		// Hierarchy: spendable downward only, from more capable (lower
		// tier) toward less capable rooms.
		if c.RoomTier == nil || roomTier < *c.RoomTier {
			return false
		}
	}
	sat := timeutil.IsSaturday(start)
	sun := start.UTC().Weekday() == time.Sunday
	switch c.Usage {
	case UsageLegacy:
		// Grandfathered rule: Saturday-flagged credits only on Saturday,
		// all others only on weekdays, no duration constraint.
		if c.Saturday != sat {
			return false
		}
		if !c.Saturday && sun {
			return false
		}
	case UsageHourly:
		if sat || sun || !timeutil.IsHourly(start, end) {
			return false
		}
	case UsageShift:
		if sat || sun || !timeutil.IsShiftBlock(start, end) {
			return false
		}
	case UsageSaturdayHourly:
		if !sat || !timeutil.IsHourly(start, end) {
			return false
		}
	case UsageSaturdayShift:
		if !sat || !timeutil.IsShiftBlock(start, end) {
			return false
		}
	default:
		return false
	}
	return true
}

// ExactRoomMatch reports whether the credit is scoped to precisely the room
// being booked.  Used as an ordering tie-break so room-scoped credits are
// drained before generic or hierarchical ones.
func (c *Credit) ExactRoomMatch(roomID uint64) bool {
	return c.RoomID != nil && *c.RoomID == roomID
}
