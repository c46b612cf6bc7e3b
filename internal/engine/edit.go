package engine

import (
	"context"
	"time"

	"github.com/arthemi/roombook/internal/model"
	"github.com/arthemi/roombook/internal/repository"
	"github.com/arthemi/roombook/internal/timeutil"
)

// Adjustment descriptors returned by AdminEdit.
const (
	AdjustCreditDebited  = "CREDIT_DEBITED"
	AdjustCreditRefunded = "CREDIT_REFUNDED"
	AdjustNoImpact       = "COURTESY_NO_IMPACT"
)

// EditInput describes an admin edit.  Only window changes are supported;
// status transitions to CANCELLED are rejected with a pointer to the cancel
// endpoint so the financial reversal can never be skipped via a raw status
// patch.
type EditInput struct {
	Start  *time.Time
	End    *time.Time
	Status *string
}

// EditResult reports the financial adjustment an edit produced.
type EditResult struct {
	Adjustment string
	DeltaCents int64
	Booking    *model.Booking
}

// AdminEdit repositions or resizes a booking.  The signed price delta
// (new window price minus old window price, at current rates) decides the
// adjustment: a positive delta consumes additional credit and fails hard
// when the ledger cannot cover it; a negative delta mints a new restoration
// credit, never reinflating previously consumed ones, so the consumption
// audit trail stays immutable.  Courtesy bookings accept only zero-delta
// repositioning.
func (e *Engine) AdminEdit(ctx context.Context, actor Actor, bookingID uint64, in EditInput) (*EditResult, error) {
	if actor.Role != RoleAdmin {
		return nil, repository.ErrForbidden
	}
	if in.Status != nil {
		if *in.Status == string(model.BookingCancelled) {
			return nil, ErrUseCancelEndpoint
		}
		return nil, ErrUnsupportedEdit
	}
	if in.Start == nil || in.End == nil {
		return nil, ErrUnsupportedEdit
	}
	now := time.Now().UTC()
	start, end := in.Start.UTC(), in.End.UTC()
	if !timeutil.WithinBusinessHours(start, end) || !timeutil.AlignedToGrid(start, end) {
		return nil, ErrInvalidWindow
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
		return nil, ErrBookingCancelled
	}
	room, err := e.rooms.GetByIDTx(ctx, tx, b.RoomID)
	if err != nil {
		return nil, err
	}

	// Availability on the new window, ignoring the booking itself.
	conflict, err := e.bookings.HasConflictTx(ctx, tx, room.ID, start, end, e.cfg.CleanupBuffer, b.ID)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, repository.ErrSlotConflict
	}
	if err := e.bookings.UnlockSlotsTx(ctx, tx, b.ID); err != nil {
		return nil, err
	}
	if err := e.bookings.LockSlotsTx(ctx, tx, b.ID, room.ID, start, end); err != nil {
		return nil, err
	}

	delta := e.quoter.Quote(room, start, end) - e.quoter.Quote(room, b.StartTime, b.EndTime)
	if b.Financial == model.FinanceCourtesy && delta != 0 {
		return nil, ErrCourtesyImmutable
	}

	result := &EditResult{Adjustment: AdjustNoImpact, DeltaCents: delta}
	switch {
	case delta > 0 && b.Financial != model.FinanceCourtesy:
		eligible, err := e.credits.EligibleForUpdateTx(ctx, tx, b.UserID, now)
		if err != nil {
			return nil, err
		}
		plan, total := PlanConsumption(eligible, room.ID, room.Tier, start, end, now, delta)
		if total < delta {
			// Insufficient credit is a hard failure: the edit is
			// rejected, nothing is partially applied.
			return nil, repository.ErrInsufficientCredit
		}
		for _, item := range plan {
			if err := e.credits.DebitTx(ctx, tx, item.CreditID, item.AmountCents); err != nil {
				return nil, err
			}
		}
		if err := e.bookings.AddConsumptionTx(ctx, tx, b.ID, plan); err != nil {
			return nil, err
		}
		b.GrossAmountCents += delta
		b.NetAmountCents += delta
		b.CreditsUsedCents += total
		result.Adjustment = AdjustCreditDebited
	case delta < 0 && b.Financial != model.FinanceCourtesy:
		roomID := b.RoomID
		minted := &model.Credit{
			UserID:         b.UserID,
			RoomID:         &roomID,
			AmountCents:    -delta,
			RemainingCents: -delta,
			Type:           model.CreditCancellation,
			Usage:          model.UsageLegacy,
			Saturday:       start.UTC().Weekday() == time.Saturday,
			Status:         model.CreditConfirmed,
		}
		if err := e.credits.MintTx(ctx, tx, minted); err != nil {
			return nil, err
		}
		b.GrossAmountCents += delta
		b.NetAmountCents += delta
		result.Adjustment = AdjustCreditRefunded
	}
	if err := e.bookings.UpdateAmountsTx(ctx, tx, b.ID, b.GrossAmountCents, b.DiscountAmountCents, b.NetAmountCents, b.CreditsUsedCents); err != nil {
		return nil, err
	}
	if err := e.bookings.UpdateWindowTx(ctx, tx, b.ID, start, end); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	b.StartTime, b.EndTime = start, end
	result.Booking = b
	return result, nil
}
