package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/arthemi/roombook/internal/model"
)

// CreditRepo is the only component allowed to mutate credit rows.  All
// debits and restorations go through conditional updates so the ledger
// invariant 0 <= remaining_amount <= amount can never be violated by a
// read-then-write race: the WHERE clause is the guard, and zero affected
// rows means the operation lost and must abort its transaction.
type CreditRepo struct {
	db *sql.DB
}

// NewCreditRepo returns a new CreditRepo bound to the given database.
func NewCreditRepo(db *sql.DB) *CreditRepo { return &CreditRepo{db: db} }

const creditColumns = `c.id, c.user_id, c.room_id, r.tier, c.amount_cents, c.remaining_amount_cents,
	c.type, c.usage_type, c.saturday, c.status, c.expires_at, c.created_at, c.updated_at`

func scanCredit(rows *sql.Rows) (*model.Credit, error) {
	var c model.Credit
	var roomID sql.NullInt64
	var roomTier sql.NullInt64
	var usage sql.NullString
	var expires sql.NullTime
	err := rows.Scan(
		&c.ID, &c.UserID, &roomID, &roomTier, &c.AmountCents, &c.RemainingCents,
		&c.Type, &usage, &c.Saturday, &c.Status, &expires, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if roomID.Valid {
		v := uint64(roomID.Int64)
		c.RoomID = &v
	}
	if roomTier.Valid {
		v := int(roomTier.Int64)
		c.RoomTier = &v
	}
	// NULL usage_type marks a credit created before usage typing existed;
	// it follows the grandfathered legacy rule.
	c.Usage = model.UsageLegacy
	if usage.Valid && usage.String != "" {
		c.Usage = model.UsageType(usage.String)
	}
	if expires.Valid {
		v := expires.Time.UTC()
		c.ExpiresAt = &v
	}
	return &c, nil
}

const eligibleWhere = ` FROM credits c LEFT JOIN rooms r ON r.id = c.room_id
	WHERE c.user_id = ? AND c.status = 'CONFIRMED' AND c.remaining_amount_cents > 0
	  AND (c.expires_at IS NULL OR c.expires_at > ?)
	ORDER BY (c.expires_at IS NULL), c.expires_at, c.created_at, c.id`

// EligibleForUpdateTx loads and locks every credit a user could possibly
// spend right now: CONFIRMED, non-expired, with value left.  Room and
// usage-type gating happen in the engine's pure consumption planner; the
// FOR UPDATE lock serializes concurrent consumers of the same ledger.
// Ordering is oldest-expiring-first to minimize waste.
func (r *CreditRepo) EligibleForUpdateTx(ctx context.Context, tx *sql.Tx, userID uint64, now time.Time) ([]model.Credit, error) {
	rows, err := tx.QueryContext(ctx, `SELECT `+creditColumns+eligibleWhere+` FOR UPDATE`, userID, now.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCredits(rows)
}

// Eligible is the read-only variant used by the balance endpoint.
func (r *CreditRepo) Eligible(ctx context.Context, userID uint64, now time.Time) ([]model.Credit, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+creditColumns+eligibleWhere, userID, now.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCredits(rows)
}

// ListByUser returns all of a user's credits regardless of state, newest
// first, for the customer-facing ledger view.
func (r *CreditRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Credit, error) {
	const q = `SELECT ` + creditColumns + ` FROM credits c LEFT JOIN rooms r ON r.id = c.room_id
		WHERE c.user_id = ? ORDER BY c.created_at DESC, c.id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCredits(rows)
}

func collectCredits(rows *sql.Rows) ([]model.Credit, error) {
	out := make([]model.Credit, 0)
	for rows.Next() {
		c, err := scanCredit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// DebitTx decrements one credit by amount.  The conditional WHERE keeps the
// remaining amount non-negative; when it would go below zero no row is
// affected and ErrInsufficientCredit is returned, aborting the enclosing
// transaction.  A credit drained to zero flips to USED in the same
// statement.
func (r *CreditRepo) DebitTx(ctx context.Context, tx *sql.Tx, creditID uint64, amount int64) error {
	if amount <= 0 {
		return nil
	}
	const q = `UPDATE credits
		SET remaining_amount_cents = remaining_amount_cents - ?,
		    status = IF(remaining_amount_cents - ? = 0, 'USED', status)
		WHERE id = ? AND status = 'CONFIRMED' AND remaining_amount_cents >= ?`
	res, err := tx.ExecContext(ctx, q, amount, amount, creditID, amount)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrInsufficientCredit
	}
	return nil
}

// RestoreTx re-increments the same credit row a prior consumption debited.
// Used when reversing a booking that never settled; settled cancellations
// mint a new credit instead (see the engine).  A fully restored credit
// flips back to CONFIRMED.  The guard keeps remaining <= amount.
func (r *CreditRepo) RestoreTx(ctx context.Context, tx *sql.Tx, creditID uint64, amount int64) error {
	if amount <= 0 {
		return nil
	}
	const q = `UPDATE credits
		SET remaining_amount_cents = remaining_amount_cents + ?,
		    status = IF(status = 'USED', 'CONFIRMED', status)
		WHERE id = ? AND remaining_amount_cents + ? <= amount_cents`
	res, err := tx.ExecContext(ctx, q, amount, creditID, amount)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrLedgerOverRestore
	}
	return nil
}

// MintTx inserts a brand-new credit, used for cancellation-to-credit
// conversion and admin refund deltas.  The generated ID is populated on the
// model.
func (r *CreditRepo) MintTx(ctx context.Context, tx *sql.Tx, c *model.Credit) error {
	const q = `INSERT INTO credits
		(user_id, room_id, amount_cents, remaining_amount_cents, type, usage_type, saturday, status, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	var roomID any
	if c.RoomID != nil {
		roomID = *c.RoomID
	}
	var usage any
	if c.Usage != model.UsageLegacy {
		usage = string(c.Usage)
	}
	var expires any
	if c.ExpiresAt != nil {
		expires = c.ExpiresAt.UTC()
	}
	res, err := tx.ExecContext(ctx, q,
		c.UserID, roomID, c.AmountCents, c.RemainingCents, c.Type, usage, c.Saturday, c.Status, expires)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}
