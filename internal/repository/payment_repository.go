package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/arthemi/roombook/internal/model"
)

// PaymentRepo stores gateway charge references.  Rows are written once per
// attempt; only the status column is ever mutated afterwards.
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepo returns a new PaymentRepo bound to the given database.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

// Create inserts a payment reference.  This runs outside the reservation
// transaction, after the gateway call, because the charge only exists once
// the gateway answered.
func (r *PaymentRepo) Create(ctx context.Context, p *model.Payment) error {
	const q = `INSERT INTO payments (booking_id, external_id, redirect_url, idempotency_key, amount_cents, status)
		VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, p.BookingID, p.ExternalID, p.RedirectURL, p.IdempotencyKey, p.AmountCents, p.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// LatestByBooking returns the most recent payment attempt for a booking,
// or nil when the booking never reached the gateway.
func (r *PaymentRepo) LatestByBooking(ctx context.Context, bookingID uint64) (*model.Payment, error) {
	const q = `SELECT id, booking_id, external_id, redirect_url, idempotency_key, amount_cents, status, created_at, updated_at
		FROM payments WHERE booking_id = ? ORDER BY id DESC LIMIT 1`
	var p model.Payment
	err := r.db.QueryRowContext(ctx, q, bookingID).Scan(
		&p.ID, &p.BookingID, &p.ExternalID, &p.RedirectURL, &p.IdempotencyKey,
		&p.AmountCents, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// UpdateStatus transitions a payment's gateway-side status.
func (r *PaymentRepo) UpdateStatus(ctx context.Context, id uint64, status model.PaymentStatus) error {
	_, err := r.db.ExecContext(ctx, `UPDATE payments SET status = ? WHERE id = ?`, status, id)
	return err
}
