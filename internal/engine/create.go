package engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/arthemi/roombook/internal/model"
	"github.com/arthemi/roombook/internal/payment"
	"github.com/arthemi/roombook/internal/repository"
	"github.com/arthemi/roombook/internal/timeutil"
)

// CreateInput describes a reservation request.
type CreateInput struct {
	RoomID     uint64
	Start      time.Time
	End        time.Time
	UseCredits bool
	CouponCode string
	// Courtesy marks a no-financial-impact booking; admin only.
	Courtesy bool
}

// CreateResult is returned on a successful reservation.
type CreateResult struct {
	Booking          *model.Booking
	CreditsUsedCents int64
	CreditIDs        []uint64
	AmountToPayCents int64
	PaymentURL       string
}

// Create performs the atomic reservation.  Inside one transaction, in fixed
// order: purge stale conflicting holds, conflict check, price computation,
// credit consumption against the gross price, coupon claim against the
// remainder, booking insert with its slot locks.  A failure at any step
// rolls back every side effect.  When an amount remains to pay, the gateway
// charge is created strictly after commit; a gateway failure rolls the
// booking forward to CANCELLED rather than leaving an unpayable hold.
func (e *Engine) Create(ctx context.Context, actor Actor, in CreateInput) (*CreateResult, error) {
	now := time.Now().UTC()
	start, end := in.Start.UTC(), in.End.UTC()
	if !timeutil.WithinBusinessHours(start, end) || !timeutil.AlignedToGrid(start, end) || !start.After(now) {
		return nil, ErrInvalidWindow
	}
	if in.Courtesy && actor.Role != RoleAdmin {
		return nil, repository.ErrForbidden
	}
	room, err := e.rooms.GetByID(ctx, in.RoomID)
	if err != nil {
		return nil, err
	}
	if !room.IsActive {
		return nil, repository.ErrRoomNotFound
	}

	// Coupon lookup happens before the transaction: it is reference data,
	// and the claim itself is what must be transactional.
	var coupon *model.Coupon
	isDev := false
	if in.CouponCode != "" && !in.Courtesy {
		isDev = e.isDevCoupon(in.CouponCode)
		if isDev && !e.devCouponAllowed(actor) {
			return nil, ErrDevCouponNoSession
		}
		coupon, err = e.coupons.GetByCode(ctx, in.CouponCode)
		if err != nil {
			return nil, err
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

	// 1. Purge stale holds that would block this request.  Each purge runs
	// the full cancellation reversal so the abandoned hold's credits and
	// coupon are released in the same transaction.
	stale, err := e.bookings.StaleConflictingTx(ctx, tx, room.ID, start, end, e.cfg.CleanupBuffer, now.Add(-e.cfg.StaleHoldTolerance))
	if err != nil {
		return nil, err
	}
	for _, id := range stale {
		if err := e.cancelTx(ctx, tx, id, model.ReasonSystemExpired, now); err != nil {
			return nil, err
		}
	}

	// 2. Conflict check.  The slot_locks unique index below remains the
	// final defense if a concurrent transaction slips past this read.
	conflict, err := e.bookings.HasConflictTx(ctx, tx, room.ID, start, end, e.cfg.CleanupBuffer, 0)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, repository.ErrSlotConflict
	}

	// 3. Price.
	gross := e.quoter.Quote(room, start, end)

	// 4. Credit consumption against the gross price.
	var consumed []repository.CreditConsumption
	var creditsUsed int64
	if in.UseCredits && !in.Courtesy {
		eligible, err := e.credits.EligibleForUpdateTx(ctx, tx, actor.UserID, now)
		if err != nil {
			return nil, err
		}
		consumed, creditsUsed = PlanConsumption(eligible, room.ID, room.Tier, start, end, now, gross)
		for _, item := range consumed {
			if err := e.credits.DebitTx(ctx, tx, item.CreditID, item.AmountCents); err != nil {
				return nil, err
			}
		}
	}

	pct := 0
	if coupon != nil {
		pct = coupon.PercentOff
	}
	amounts := ComputeAmounts(gross, creditsUsed, pct)
	if in.Courtesy {
		amounts = Amounts{}
	}

	if amounts.ToPay > 0 {
		if start.Sub(now) < e.cfg.MinAdvanceNotice {
			return nil, ErrAdvanceNotice
		}
		if amounts.ToPay < e.cfg.MinChargeCents {
			if amounts.Discount > 0 {
				return nil, ErrBelowMinimumAfterDiscount
			}
			return nil, ErrBelowMinimum
		}
	}

	b := &model.Booking{
		RoomID:              room.ID,
		UserID:              actor.UserID,
		StartTime:           start,
		EndTime:             end,
		GrossAmountCents:    amounts.Gross,
		DiscountAmountCents: amounts.Discount,
		NetAmountCents:      amounts.Net,
		CreditsUsedCents:    amounts.CreditsUsed,
	}
	if in.CouponCode != "" && !in.Courtesy {
		code := in.CouponCode
		b.CouponCode = &code
	}
	switch {
	case in.Courtesy:
		b.Status, b.Financial = model.BookingConfirmed, model.FinanceCourtesy
	case amounts.ToPay == 0:
		b.Status, b.Financial = model.BookingConfirmed, model.FinancePaid
	default:
		b.Status, b.Financial = model.BookingPending, model.FinancePendingPayment
		deadline := now.Add(e.cfg.PaymentHoldTTL)
		b.ExpiresAt = &deadline
	}

	// 5. Persist: booking row, constraint-backed slot locks, per-credit
	// consumption records, then the coupon claim keyed on the new booking.
	if err := e.bookings.CreateTx(ctx, tx, b); err != nil {
		return nil, err
	}
	if err := e.bookings.LockSlotsTx(ctx, tx, b.ID, room.ID, start, end); err != nil {
		return nil, err
	}
	if err := e.bookings.AddConsumptionTx(ctx, tx, b.ID, consumed); err != nil {
		return nil, err
	}
	if coupon != nil && !isDev {
		if _, err := e.coupons.ClaimOrCreateTx(ctx, tx, coupon.Code, actor.UserID, b.ID); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	res := &CreateResult{
		Booking:          b,
		CreditsUsedCents: creditsUsed,
		AmountToPayCents: amounts.ToPay,
	}
	for _, item := range consumed {
		res.CreditIDs = append(res.CreditIDs, item.CreditID)
	}

	if amounts.ToPay > 0 {
		idemKey := uuid.NewString()
		charge, err := e.gateway.CreateCharge(ctx, payment.ChargeRequest{
			BookingID:      b.ID,
			AmountCents:    amounts.ToPay,
			IdempotencyKey: idemKey,
			Description:    fmt.Sprintf("booking %d", b.ID),
		})
		if err != nil {
			// Roll the booking forward to CANCELLED: the hold must not
			// vanish silently without a record of why.
			log.Printf("engine: gateway charge failed for booking %d: %v", b.ID, err)
			if _, cerr := e.Cancel(ctx, SystemActor(), b.ID, model.ReasonPaymentFailed); cerr != nil {
				log.Printf("engine: roll-forward cancel of booking %d failed: %v", b.ID, cerr)
			}
			return nil, ErrPaymentFailed
		}
		pay := &model.Payment{
			BookingID:      b.ID,
			ExternalID:     charge.ExternalID,
			RedirectURL:    charge.RedirectURL,
			IdempotencyKey: idemKey,
			AmountCents:    amounts.ToPay,
			Status:         model.PaymentCreated,
		}
		if err := e.payments.Create(ctx, pay); err != nil {
			log.Printf("engine: recording payment for booking %d failed: %v", b.ID, err)
		}
		res.PaymentURL = charge.RedirectURL
	}
	return res, nil
}
