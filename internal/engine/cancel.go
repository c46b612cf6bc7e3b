package engine

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/arthemi/roombook/internal/model"
	"github.com/arthemi/roombook/internal/repository"
)

// CancelResult reports what a cancellation reversed.  Idempotent re-cancels
// return success with every counter at zero.
type CancelResult struct {
	AlreadyCancelled     bool
	CreditsRestoredCents int64
	CreditMintedCents    int64
	CouponRestored       bool
}

// Cancel is the single entry point for every cancellation path: user
// self-cancel, admin cancel, gateway roll-forward and system expiry all run
// the same financial reversal.  Re-cancelling an already cancelled booking
// is a successful no-op.  The best-effort gateway cancellation happens
// before the transaction opens; it is logged but never fatal.
func (e *Engine) Cancel(ctx context.Context, actor Actor, bookingID uint64, reason string) (*CancelResult, error) {
	now := time.Now().UTC()

	// Best-effort external cancellation, outside the transaction: a DB
	// transaction is never held open across a network round-trip.
	if pay, err := e.payments.LatestByBooking(ctx, bookingID); err == nil && pay != nil && pay.Status == model.PaymentCreated {
		if err := e.gateway.CancelCharge(ctx, pay.ExternalID); err != nil {
			log.Printf("engine: gateway cancel of charge %s failed: %v", pay.ExternalID, err)
		} else if err := e.payments.UpdateStatus(ctx, pay.ID, model.PaymentCancelled); err != nil {
			log.Printf("engine: marking payment %d cancelled failed: %v", pay.ID, err)
		}
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	b, err := e.bookings.GetByIDForUpdateTx(ctx, tx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status == model.BookingCancelled {
		return &CancelResult{AlreadyCancelled: true}, nil
	}
	if actor.Role == RoleCustomer {
		if b.UserID != actor.UserID {
			return nil, repository.ErrForbidden
		}
		// Users may only abandon holds they have not paid for yet.
		if b.Status != model.BookingPending {
			return nil, repository.ErrForbidden
		}
	}

	rev, err := e.reverseTx(ctx, tx, b, now)
	if err != nil {
		return nil, err
	}
	if err := e.bookings.UnlockSlotsTx(ctx, tx, b.ID); err != nil {
		return nil, err
	}
	if err := e.bookings.MarkCancelledTx(ctx, tx, b.ID, reason); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return rev, nil
}

// cancelTx runs the in-transaction part of a cancellation for a booking that
// is already covered by the caller's transaction.  Used by the stale-hold
// purge so an abandoned hold is reversed atomically with the new request.
func (e *Engine) cancelTx(ctx context.Context, tx *sql.Tx, bookingID uint64, reason string, now time.Time) error {
	b, err := e.bookings.GetByIDForUpdateTx(ctx, tx, bookingID)
	if err != nil {
		return err
	}
	if b.Status == model.BookingCancelled {
		return nil
	}
	if _, err := e.reverseTx(ctx, tx, b, now); err != nil {
		return err
	}
	if err := e.bookings.UnlockSlotsTx(ctx, tx, b.ID); err != nil {
		return err
	}
	return e.bookings.MarkCancelledTx(ctx, tx, b.ID, reason)
}

// reverseTx undoes a booking's financial side effects according to its
// settlement state:
//   - COURTESY: nothing to reverse.
//   - PENDING_PAYMENT: the debits never settled, so the same credit rows
//     are re-incremented and the coupon claim is released.
//   - PAID: settled value is immutable; a refund-eligible cancellation
//     mints a brand-new CANCELLATION credit for the booking's net value,
//     a late one yields no financial reversal.  The coupon is released in
//     both cases because its claim row must not reference a dead booking.
func (e *Engine) reverseTx(ctx context.Context, tx *sql.Tx, b *model.Booking, now time.Time) (*CancelResult, error) {
	res := &CancelResult{}
	switch b.Financial {
	case model.FinanceCourtesy:
		// no financial impact to reverse
	case model.FinancePendingPayment:
		consumed, err := e.bookings.ConsumedTx(ctx, tx, b.ID)
		if err != nil {
			return nil, err
		}
		for _, item := range consumed {
			if err := e.credits.RestoreTx(ctx, tx, item.CreditID, item.AmountCents); err != nil {
				return nil, err
			}
			res.CreditsRestoredCents += item.AmountCents
		}
	case model.FinancePaid:
		if RefundEligible(now, b.StartTime, e.cfg.RefundWindow) && b.NetAmountCents > 0 {
			roomID := b.RoomID
			minted := &model.Credit{
				UserID:         b.UserID,
				RoomID:         &roomID,
				AmountCents:    b.NetAmountCents,
				RemainingCents: b.NetAmountCents,
				Type:           model.CreditCancellation,
				Usage:          model.UsageLegacy,
				Saturday:       b.StartTime.UTC().Weekday() == time.Saturday,
				Status:         model.CreditConfirmed,
			}
			if err := e.credits.MintTx(ctx, tx, minted); err != nil {
				return nil, err
			}
			res.CreditMintedCents = b.NetAmountCents
		}
	}
	if b.CouponCode != nil && !e.isDevCoupon(*b.CouponCode) {
		restored, err := e.coupons.RestoreUsageTx(ctx, tx, b.ID)
		if err != nil {
			return nil, err
		}
		res.CouponRestored = restored
	}
	return res, nil
}
