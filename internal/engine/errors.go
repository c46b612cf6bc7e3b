package engine

import "errors"

// Engine-level sentinel errors.  Repository sentinels (ErrSlotConflict,
// ErrCouponAlreadyUsed, ErrInsufficientCredit, ...) pass through unchanged;
// the handlers map both sets to stable machine codes.

// ErrInvalidWindow is returned for malformed or out-of-hours intervals.
var ErrInvalidWindow = errors.New("invalid booking window")

// ErrAdvanceNotice is returned when a booking that still requires payment
// starts sooner than the configured minimum advance notice.
var ErrAdvanceNotice = errors.New("start time below minimum advance notice")

// ErrBelowMinimum is returned when the amount to pay is positive but under
// the gateway's minimum charge.
var ErrBelowMinimum = errors.New("amount below gateway minimum")

// ErrBelowMinimumAfterDiscount distinguishes the case where a coupon pushed
// the amount under the gateway minimum.
var ErrBelowMinimumAfterDiscount = errors.New("amount below gateway minimum after discount")

// ErrDevCouponNoSession is returned when a whitelisted dev coupon is
// presented without an authorized session email.
var ErrDevCouponNoSession = errors.New("dev coupon requires whitelisted session")

// ErrPaymentFailed is returned when the gateway rejected the charge; the
// booking has already been rolled forward to CANCELLED when this surfaces.
var ErrPaymentFailed = errors.New("payment gateway failure")

// ErrUseCancelEndpoint is returned when an admin edit tries to flip status
// to CANCELLED.  Cancellation has a single entry point so the financial
// reversal steps always run.
var ErrUseCancelEndpoint = errors.New("status change to CANCELLED must use the cancel endpoint")

// ErrUnsupportedEdit is returned for edit operations outside window changes.
var ErrUnsupportedEdit = errors.New("unsupported edit")

// ErrBookingCancelled is returned when editing a cancelled booking.
var ErrBookingCancelled = errors.New("booking is cancelled")

// ErrCourtesyImmutable is returned when an edit of a courtesy booking would
// produce a non-zero financial delta.
var ErrCourtesyImmutable = errors.New("courtesy booking cannot change value")

// ErrInvalidAmount is returned for non-positive manual credit grants.
var ErrInvalidAmount = errors.New("amount must be positive")

// ErrInvalidUsageType is returned when a credit grant carries an unknown
// usage variant.
var ErrInvalidUsageType = errors.New("unknown usage type")
