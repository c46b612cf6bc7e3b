package engine

import (
	"context"
	"time"

	"github.com/arthemi/roombook/internal/model"
	"github.com/arthemi/roombook/internal/repository"
)

// GrantInput describes a manually issued credit.
type GrantInput struct {
	UserID      uint64
	AmountCents int64
	Type        model.CreditType
	Usage       model.UsageType
	RoomID      *uint64
	Saturday    bool
	ExpiresAt   *time.Time
}

// GrantCredit mints a credit on behalf of an operator.  Manual, promo and
// sublet credits all enter the ledger CONFIRMED and spendable immediately.
func (e *Engine) GrantCredit(ctx context.Context, actor Actor, in GrantInput) (*model.Credit, error) {
	if actor.Role != RoleAdmin {
		return nil, repository.ErrForbidden
	}
	if in.AmountCents <= 0 {
		return nil, ErrInvalidAmount
	}
	if in.Usage == "" {
		in.Usage = model.UsageLegacy
	}
	if !in.Usage.Valid() {
		return nil, ErrInvalidUsageType
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

	c := &model.Credit{
		UserID:         in.UserID,
		RoomID:         in.RoomID,
		AmountCents:    in.AmountCents,
		RemainingCents: in.AmountCents,
		Type:           in.Type,
		Usage:          in.Usage,
		Saturday:       in.Saturday,
		Status:         model.CreditConfirmed,
		ExpiresAt:      in.ExpiresAt,
	}
	if err := e.credits.MintTx(ctx, tx, c); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return c, nil
}
