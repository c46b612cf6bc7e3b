package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/arthemi/roombook/internal/model"
)

// ClaimMode describes how a coupon claim succeeded.
type ClaimMode string

const (
	// ClaimCreated means a fresh usage row was inserted.
	ClaimCreated ClaimMode = "CREATED"
	// ClaimRestored means a previously RESTORED row was re-activated.
	ClaimRestored ClaimMode = "CLAIMED_RESTORED"
	// ClaimIdempotent means the same booking already holds the claim; the
	// retry is a success with no state change.
	ClaimIdempotent ClaimMode = "IDEMPOTENT"
)

// CouponRepo guards coupon redemption with the claim-or-create pattern:
// insert first, reconcile on the unique-key collision.  Check-then-act is
// never used because two concurrent requests would both observe "unused"
// and both redeem.  The unique index on coupon_usages.coupon_code is the
// race decider; the loser re-reads the winner's row and reconciles.
type CouponRepo struct {
	db *sql.DB
}

// NewCouponRepo returns a new CouponRepo bound to the given database.
func NewCouponRepo(db *sql.DB) *CouponRepo { return &CouponRepo{db: db} }

// GetByCode returns an active coupon or ErrCouponNotFound.
func (r *CouponRepo) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	const q = `SELECT id, code, percent_off, is_active, created_at FROM coupons WHERE code = ? AND is_active = 1`
	var c model.Coupon
	err := r.db.QueryRowContext(ctx, q, code).Scan(&c.ID, &c.Code, &c.PercentOff, &c.IsActive, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCouponNotFound
		}
		return nil, err
	}
	return &c, nil
}

// ResolveClaim decides how to reconcile an existing usage row with a new
// claim attempt.  Pure so the race-resolution policy is testable without a
// database:
//   - RESTORED row: re-activate it for the new booking (CLAIMED_RESTORED).
//   - USED row held by the same booking: idempotent retry, no state change.
//   - USED row held by a different booking: ErrCouponAlreadyUsed.
func ResolveClaim(status model.CouponUsageStatus, heldBy *uint64, bookingID uint64) (ClaimMode, error) {
	switch status {
	case model.CouponRestored:
		return ClaimRestored, nil
	case model.CouponUsed:
		if heldBy != nil && *heldBy == bookingID {
			return ClaimIdempotent, nil
		}
		return "", ErrCouponAlreadyUsed
	default:
		return "", ErrCouponAlreadyUsed
	}
}

// ClaimOrCreateTx claims a coupon code for a booking inside the reservation
// transaction.  It attempts the INSERT first; on a duplicate-key violation
// it locks and re-reads the existing row and applies ResolveClaim.  The
// returned mode tells the caller whether anything changed.
func (r *CouponRepo) ClaimOrCreateTx(ctx context.Context, tx *sql.Tx, code string, userID, bookingID uint64) (ClaimMode, error) {
	const ins = `INSERT INTO coupon_usages (coupon_code, user_id, booking_id, status) VALUES (?, ?, ?, 'USED')`
	_, err := tx.ExecContext(ctx, ins, code, userID, bookingID)
	if err == nil {
		return ClaimCreated, nil
	}
	if !isDuplicateKey(err) {
		return "", err
	}
	// Lost the insert race or the code was claimed earlier; re-read the
	// winning row under lock and reconcile.
	const sel = `SELECT id, status, booking_id FROM coupon_usages WHERE coupon_code = ? FOR UPDATE`
	var id uint64
	var status model.CouponUsageStatus
	var heldByNull sql.NullInt64
	if err := tx.QueryRowContext(ctx, sel, code).Scan(&id, &status, &heldByNull); err != nil {
		return "", err
	}
	var heldBy *uint64
	if heldByNull.Valid {
		v := uint64(heldByNull.Int64)
		heldBy = &v
	}
	mode, err := ResolveClaim(status, heldBy, bookingID)
	if err != nil {
		return "", err
	}
	if mode == ClaimRestored {
		const upd = `UPDATE coupon_usages SET status = 'USED', user_id = ?, booking_id = ? WHERE id = ?`
		if _, err := tx.ExecContext(ctx, upd, userID, bookingID, id); err != nil {
			return "", err
		}
	}
	return mode, nil
}

// RestoreUsageTx flips the USED row referencing a booking to RESTORED,
// freeing the coupon for reuse.  Only the booking's own cancellation path
// calls this.  It reports whether a row was actually released so the cancel
// result can surface couponRestored truthfully on idempotent re-cancels.
func (r *CouponRepo) RestoreUsageTx(ctx context.Context, tx *sql.Tx, bookingID uint64) (bool, error) {
	const q = `UPDATE coupon_usages SET status = 'RESTORED' WHERE booking_id = ? AND status = 'USED'`
	res, err := tx.ExecContext(ctx, q, bookingID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
