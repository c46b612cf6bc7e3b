// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// booking engine and handlers to distinguish between different failure
// scenarios without string matching. ErrSlotConflict in particular is the
// single error every availability failure collapses into, whether it was
// detected by the application-level overlap check or by the slot_locks
// unique index.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers translate this into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrRoomNotFound is returned when a room lookup fails.
var ErrRoomNotFound = errors.New("room not found")

// ErrBookingNotFound is returned when a booking lookup fails.
var ErrBookingNotFound = errors.New("booking not found")

// ErrCouponNotFound is returned when a coupon code does not exist or is
// inactive. Handlers translate this into COUPON_INVALID.
var ErrCouponNotFound = errors.New("coupon not found")

// ErrSlotConflict is returned when the requested interval overlaps an
// existing PENDING or CONFIRMED booking on the same room. It is not a
// transient error and is never retried automatically.
var ErrSlotConflict = errors.New("slot conflict")

// ErrCouponAlreadyUsed is returned when a different booking already holds
// the active claim on a coupon code.
var ErrCouponAlreadyUsed = errors.New("coupon already used")

// ErrInsufficientCredit is returned when a conditional debit would drive a
// credit's remaining amount below zero. The enclosing transaction must be
// rolled back; no partial consumption survives.
var ErrInsufficientCredit = errors.New("insufficient credit")

// ErrLedgerOverRestore is returned when a restoration would push a credit's
// remaining amount above its original amount.
var ErrLedgerOverRestore = errors.New("restore exceeds credit amount")

// isDuplicateKey reports whether err is a MySQL duplicate-entry violation
// (error 1062). Unique indexes are the final race defense for slot locks
// and coupon claims; callers map this to the matching sentinel error.
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
