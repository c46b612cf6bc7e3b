package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/arthemi/roombook/internal/model"
	"github.com/arthemi/roombook/internal/timeutil"
)

// BookingRepo provides data access to bookings, their slot locks and their
// per-credit consumption records.  Every method that participates in the
// reservation transaction takes an explicit *sql.Tx: the transaction handle
// is the unit of work and is always passed by reference, never stored or
// read from ambient state.  The caller owns commit/rollback.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `id, room_id, user_id, start_time, end_time, status, financial_status,
	gross_amount_cents, discount_amount_cents, net_amount_cents, credits_used_cents,
	coupon_code, expires_at, cancel_reason, created_at, updated_at`

type bookingScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row bookingScanner) (*model.Booking, error) {
	var b model.Booking
	var coupon, reason sql.NullString
	var expires sql.NullTime
	err := row.Scan(
		&b.ID, &b.RoomID, &b.UserID, &b.StartTime, &b.EndTime, &b.Status, &b.Financial,
		&b.GrossAmountCents, &b.DiscountAmountCents, &b.NetAmountCents, &b.CreditsUsedCents,
		&coupon, &expires, &reason, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if coupon.Valid {
		v := coupon.String
		b.CouponCode = &v
	}
	if expires.Valid {
		v := expires.Time.UTC()
		b.ExpiresAt = &v
	}
	if reason.Valid {
		v := reason.String
		b.CancelReason = &v
	}
	return &b, nil
}

// CreateTx inserts a new booking within the scope of an existing
// transaction and populates the generated ID plus database defaults on the
// provided model.  The caller must commit or rollback the transaction.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings
		(room_id, user_id, start_time, end_time, status, financial_status,
		 gross_amount_cents, discount_amount_cents, net_amount_cents, credits_used_cents,
		 coupon_code, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	var expires any
	if b.ExpiresAt != nil {
		expires = b.ExpiresAt.UTC()
	}
	var coupon any
	if b.CouponCode != nil {
		coupon = *b.CouponCode
	}
	result, err := tx.ExecContext(ctx, q,
		b.RoomID, b.UserID, b.StartTime.UTC(), b.EndTime.UTC(), b.Status, b.Financial,
		b.GrossAmountCents, b.DiscountAmountCents, b.NetAmountCents, b.CreditsUsedCents,
		coupon, expires,
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	// Query back the full row to populate timestamps and defaults.
	got, err := scanBooking(tx.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, b.ID))
	if err != nil {
		return err
	}
	*b = *got
	return nil
}

// GetByID retrieves a booking outside any transaction.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	return scanBooking(r.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id))
}

// GetByIDForUpdateTx loads a booking with a row lock so that concurrent
// cancellations and edits of the same booking serialize on the row.
func (r *BookingRepo) GetByIDForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Booking, error) {
	return scanBooking(tx.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ? FOR UPDATE`, id))
}

// HasConflictTx reports whether [start,end) collides with any active
// (PENDING or CONFIRMED) booking on the room.  Two bookings conflict iff
// newStart < existingEnd + buffer AND newEnd > existingStart; the trailing
// cleanup buffer is added to the existing booking's end.  excludeID skips a
// booking (used when re-checking availability during an edit); pass 0 for
// none.  Must run inside the reservation transaction so the read and the
// subsequent insert are not separated by another writer's commit; the
// slot_locks unique index remains the final defense either way.
func (r *BookingRepo) HasConflictTx(ctx context.Context, tx *sql.Tx, roomID uint64, start, end time.Time, buffer time.Duration, excludeID uint64) (bool, error) {
	const q = `SELECT COUNT(*) FROM bookings
		WHERE room_id = ? AND id <> ? AND status IN ('PENDING','CONFIRMED')
		  AND ? < DATE_ADD(end_time, INTERVAL ? SECOND)
		  AND ? > start_time`
	var n int
	err := tx.QueryRowContext(ctx, q, roomID, excludeID, start.UTC(), int64(buffer.Seconds()), end.UTC()).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// StaleConflictingTx returns the IDs of stale holds blocking the requested
// interval: PENDING, unpaid bookings on the room whose created_at is older
// than the tolerance cutoff and which would otherwise conflict.  The caller
// cancels each through the engine's cancel path (reason SYSTEM_EXPIRED)
// before running the conflict check, so an abandoned hold cannot block a
// live request.  Rows are locked to keep a concurrent sweeper from
// cancelling them twice.
func (r *BookingRepo) StaleConflictingTx(ctx context.Context, tx *sql.Tx, roomID uint64, start, end time.Time, buffer time.Duration, olderThan time.Time) ([]uint64, error) {
	const q = `SELECT id FROM bookings
		WHERE room_id = ? AND status = 'PENDING' AND financial_status = 'PENDING_PAYMENT'
		  AND created_at < ?
		  AND ? < DATE_ADD(end_time, INTERVAL ? SECOND)
		  AND ? > start_time
		FOR UPDATE`
	rows, err := tx.QueryContext(ctx, q, roomID, olderThan.UTC(), start.UTC(), int64(buffer.Seconds()), end.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// LockSlotsTx inserts one slot_locks row per bucket covered by the booking's
// interval.  The UNIQUE (room_id, slot_start) index makes two transactions
// that both passed the application-level check collide here; the duplicate
// key error is mapped to ErrSlotConflict so callers surface one error class.
func (r *BookingRepo) LockSlotsTx(ctx context.Context, tx *sql.Tx, bookingID, roomID uint64, start, end time.Time) error {
	buckets := timeutil.Buckets(start, end)
	if len(buckets) == 0 {
		return nil
	}
	query := `INSERT INTO slot_locks (room_id, slot_start, booking_id) VALUES `
	args := make([]any, 0, len(buckets)*3)
	for i, bkt := range buckets {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?)"
		args = append(args, roomID, bkt.UTC(), bookingID)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isDuplicateKey(err) {
			return ErrSlotConflict
		}
		return err
	}
	return nil
}

// UnlockSlotsTx releases all slot locks held by a booking.  Called on every
// cancellation and before re-locking during an admin window edit.
func (r *BookingRepo) UnlockSlotsTx(ctx context.Context, tx *sql.Tx, bookingID uint64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM slot_locks WHERE booking_id = ?`, bookingID)
	return err
}

// MarkCancelledTx flips a booking to CANCELLED with the given reason.  The
// guard on status makes the flip idempotent at the SQL level as well.
func (r *BookingRepo) MarkCancelledTx(ctx context.Context, tx *sql.Tx, id uint64, reason string) error {
	const q = `UPDATE bookings SET status = 'CANCELLED', cancel_reason = ?, expires_at = NULL
		WHERE id = ? AND status <> 'CANCELLED'`
	_, err := tx.ExecContext(ctx, q, reason, id)
	return err
}

// UpdateWindowTx repositions a booking to a new interval.
func (r *BookingRepo) UpdateWindowTx(ctx context.Context, tx *sql.Tx, id uint64, start, end time.Time) error {
	_, err := tx.ExecContext(ctx, `UPDATE bookings SET start_time = ?, end_time = ? WHERE id = ?`,
		start.UTC(), end.UTC(), id)
	return err
}

// UpdateAmountsTx rewrites the monetary columns after an admin edit computed
// a signed delta.  The engine is responsible for keeping
// gross = net + discount intact.
func (r *BookingRepo) UpdateAmountsTx(ctx context.Context, tx *sql.Tx, id uint64, gross, discount, net, creditsUsed int64) error {
	const q = `UPDATE bookings SET gross_amount_cents = ?, discount_amount_cents = ?,
		net_amount_cents = ?, credits_used_cents = ? WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, gross, discount, net, creditsUsed, id)
	return err
}

// CreditConsumption links a booking to one debited credit and the exact
// amount taken from it.  Stored in booking_credits so restoration can
// re-increment precisely the rows that were debited.
type CreditConsumption struct {
	CreditID    uint64
	AmountCents int64
}

// AddConsumptionTx records the ordered list of credit debits backing a
// booking.  Position preserves consumption order for the audit trail.
func (r *BookingRepo) AddConsumptionTx(ctx context.Context, tx *sql.Tx, bookingID uint64, items []CreditConsumption) error {
	if len(items) == 0 {
		return nil
	}
	query := `INSERT INTO booking_credits (booking_id, credit_id, amount_cents, position) VALUES `
	args := make([]any, 0, len(items)*4)
	for i, it := range items {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?)"
		args = append(args, bookingID, it.CreditID, it.AmountCents, i)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// ConsumedTx returns the credit debits recorded for a booking in
// consumption order.
func (r *BookingRepo) ConsumedTx(ctx context.Context, tx *sql.Tx, bookingID uint64) ([]CreditConsumption, error) {
	const q = `SELECT credit_id, amount_cents FROM booking_credits WHERE booking_id = ? ORDER BY position`
	rows, err := tx.QueryContext(ctx, q, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CreditConsumption
	for rows.Next() {
		var it CreditConsumption
		if err := rows.Scan(&it.CreditID, &it.AmountCents); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// ExpiredPending selects bookings due for auto-expiry: still PENDING and
// unpaid, and past their recorded payment deadline, starting within the lead
// time, or created before the expiration horizon regardless of start time.
// The sweeper cancels each one through the engine's cancel path; this method
// only selects.
func (r *BookingRepo) ExpiredPending(ctx context.Context, now time.Time, lead, horizon time.Duration, limit int) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings
		WHERE status = 'PENDING' AND financial_status = 'PENDING_PAYMENT'
		  AND (expires_at <= ? OR start_time <= ? OR created_at <= ?)
		ORDER BY created_at
		LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, now.UTC(), now.Add(lead).UTC(), now.Add(-horizon).UTC(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// ListByUser returns a user's bookings, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// BusyWindow is one occupied interval returned by the public availability
// listing.  Only the interval is exposed; booking ownership stays private.
type BusyWindow struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// BusySlots lists the occupied intervals of a room between from and to,
// ordered by start time.
func (r *BookingRepo) BusySlots(ctx context.Context, roomID uint64, from, to time.Time) ([]BusyWindow, error) {
	const q = `SELECT start_time, end_time FROM bookings
		WHERE room_id = ? AND status IN ('PENDING','CONFIRMED')
		  AND start_time < ? AND end_time > ?
		ORDER BY start_time`
	rows, err := r.db.QueryContext(ctx, q, roomID, to.UTC(), from.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]BusyWindow, 0)
	for rows.Next() {
		var w BusyWindow
		if err := rows.Scan(&w.StartTime, &w.EndTime); err != nil {
			return nil, err
		}
		w.StartTime = w.StartTime.UTC()
		w.EndTime = w.EndTime.UTC()
		out = append(out, w)
	}
	return out, rows.Err()
}
