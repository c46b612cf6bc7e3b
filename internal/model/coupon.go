package model

import "time"

// Coupon defines a discount code.  PercentOff is applied to the portion of
// the gross price left after credit consumption; the resulting discount is
// rounded to the nearest cent.
//
// Fields:
//  ID         – primary key identifier.
//  Code       – unique redemption code.
//  PercentOff – discount percentage (1-100).
//  IsActive   – whether the coupon can currently be redeemed.
//  CreatedAt  – creation timestamp.
type Coupon struct {
	ID         uint64    // coupons.id
	Code       string    // coupons.code
	PercentOff int       // coupons.percent_off
	IsActive   bool      // coupons.is_active
	CreatedAt  time.Time // coupons.created_at
}

// CouponUsageStatus tracks whether a claim on a coupon is currently active.
type CouponUsageStatus string

const (
	CouponUsed     CouponUsageStatus = "USED"
	CouponRestored CouponUsageStatus = "RESTORED"
)

// CouponUsage is the claim record preventing double redemption.  At most one
// USED row may exist per coupon code at a time (UNIQUE index on the claim
// key); a USED row is flipped to RESTORED only by the cancellation path of
// the booking that holds it.
//
// Fields:
//  ID         – primary key identifier.
//  CouponCode – the claim key.
//  UserID     – user who claimed the coupon.
//  BookingID  – booking the claim secured, if still linked.
//  Status     – USED while active, RESTORED once released.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type CouponUsage struct {
	ID         uint64            // coupon_usages.id
	CouponCode string            // coupon_usages.coupon_code
	UserID     uint64            // coupon_usages.user_id
	BookingID  *uint64           // coupon_usages.booking_id (nullable)
	Status     CouponUsageStatus // coupon_usages.status
	CreatedAt  time.Time         // coupon_usages.created_at
	UpdatedAt  time.Time         // coupon_usages.updated_at
}
