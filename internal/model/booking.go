package model

import "time"

// BookingStatus enumerates the lifecycle states of a booking.  A booking is
// created PENDING or CONFIRMED atomically with its slot reservation and
// transitions to CANCELLED exactly once; re-cancelling is a no-op.
type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
)

// FinancialStatus tracks how a booking is (to be) paid for, independently of
// its lifecycle status.  COURTESY marks a no-financial-impact booking created
// by staff; such bookings reject any edit that would change their value.
type FinancialStatus string

const (
	FinancePendingPayment FinancialStatus = "PENDING_PAYMENT"
	FinancePaid           FinancialStatus = "PAID"
	FinanceCourtesy       FinancialStatus = "COURTESY"
)

// Cancel reasons recorded on the booking row.  SYSTEM_EXPIRED is used when a
// new reservation purges a stale conflicting hold; AUTO_EXPIRED when the
// background sweeper cancels an unpaid hold past its deadline.
const (
	ReasonUserRequest   = "USER_REQUEST"
	ReasonAdminRequest  = "ADMIN_REQUEST"
	ReasonSystemExpired = "SYSTEM_EXPIRED"
	ReasonAutoExpired   = "AUTO_EXPIRED"
	ReasonPaymentFailed = "PAYMENT_FAILED"
)

// Booking records a reservation of one room for a half-open time interval.
// Monetary fields always satisfy gross = net + discount and
// amountToPay = net - creditsUsed >= 0.
//
// Fields:
//  ID                  – primary key identifier.
//  RoomID              – room being reserved.
//  UserID              – customer who owns the reservation.
//  StartTime           – slot start (inclusive), UTC.
//  EndTime             – slot end (exclusive), UTC.
//  Status              – lifecycle state (PENDING, CONFIRMED, CANCELLED).
//  Financial           – payment state (PENDING_PAYMENT, PAID, COURTESY).
//  GrossAmountCents    – price before discount.
//  DiscountAmountCents – coupon discount applied.
//  NetAmountCents      – gross minus discount.
//  CreditsUsedCents    – portion covered by ledger credits.
//  CouponCode          – coupon redeemed for this booking, if any.
//  ExpiresAt           – payment deadline; set only while PENDING and unpaid.
//  CancelReason        – why the booking was cancelled, if it was.
//  CreatedAt           – creation timestamp.
//  UpdatedAt           – last update timestamp.
type Booking struct {
	ID                  uint64          // bookings.id
	RoomID              uint64          // bookings.room_id
	UserID              uint64          // bookings.user_id
	StartTime           time.Time       // bookings.start_time
	EndTime             time.Time       // bookings.end_time
	Status              BookingStatus   // bookings.status
	Financial           FinancialStatus // bookings.financial_status
	GrossAmountCents    int64           // bookings.gross_amount_cents
	DiscountAmountCents int64           // bookings.discount_amount_cents
	NetAmountCents      int64           // bookings.net_amount_cents
	CreditsUsedCents    int64           // bookings.credits_used_cents
	CouponCode          *string         // bookings.coupon_code (nullable)
	ExpiresAt           *time.Time      // bookings.expires_at (nullable)
	CancelReason        *string         // bookings.cancel_reason (nullable)
	CreatedAt           time.Time       // bookings.created_at
	UpdatedAt           time.Time       // bookings.updated_at
}

// AmountToPayCents is the cash remainder after credits, never negative.
func (b *Booking) AmountToPayCents() int64 {
	rest := b.NetAmountCents - b.CreditsUsedCents
	if rest < 0 {
		return 0
	}
	return rest
}
