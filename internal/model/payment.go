package model

import "time"

// PaymentStatus mirrors the gateway-side state of a charge attempt.
type PaymentStatus string

const (
	PaymentCreated   PaymentStatus = "CREATED"
	PaymentSettled   PaymentStatus = "SETTLED"
	PaymentCancelled PaymentStatus = "CANCELLED"
	PaymentFailed    PaymentStatus = "FAILED"
)

// Payment references an external-gateway charge for a booking.  A row is
// written once per attempt and only its status is ever mutated.  The
// idempotency key is generated by us so a retried request after a timeout
// cannot create a duplicate charge.
//
// Fields:
//  ID             – primary key identifier.
//  BookingID      – booking the charge pays for.
//  ExternalID     – gateway-side charge identifier.
//  RedirectURL    – checkout URL returned to the client.
//  IdempotencyKey – caller-generated key sent to the gateway.
//  AmountCents    – charged amount in cents.
//  Status         – gateway-side state of the charge.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type Payment struct {
	ID             uint64        // payments.id
	BookingID      uint64        // payments.booking_id
	ExternalID     string        // payments.external_id
	RedirectURL    string        // payments.redirect_url
	IdempotencyKey string        // payments.idempotency_key
	AmountCents    int64         // payments.amount_cents
	Status         PaymentStatus // payments.status
	CreatedAt      time.Time     // payments.created_at
	UpdatedAt      time.Time     // payments.updated_at
}
