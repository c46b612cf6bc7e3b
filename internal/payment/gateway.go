// Package payment defines the external payment-gateway port.  The gateway's
// wire protocol, webhook verification and invoice generation are external
// collaborators; the engine only needs to create and cancel charges, always
// outside any database transaction and always with a caller-generated
// idempotency key so retries cannot double-charge.
package payment

import (
	"context"
	"fmt"
	"log"
)

// ChargeRequest describes a charge to create at the gateway.
type ChargeRequest struct {
	BookingID      uint64
	AmountCents    int64
	IdempotencyKey string
	Description    string
}

// Charge is the gateway's reference for a created charge.
type Charge struct {
	ExternalID  string
	RedirectURL string
}

// Gateway is the port implemented by the real payment provider client.
type Gateway interface {
	CreateCharge(ctx context.Context, req ChargeRequest) (*Charge, error)
	// CancelCharge is best-effort: cancellation callers log failures and
	// proceed, they never fail the primary operation on a gateway error.
	CancelCharge(ctx context.Context, externalID string) error
}

// LogGateway is a development stand-in that fabricates charge references and
// logs every call.  It keeps the full booking flow exercisable without a
// provider account.
type LogGateway struct{}

// CreateCharge implements Gateway.
func (LogGateway) CreateCharge(_ context.Context, req ChargeRequest) (*Charge, error) {
	ext := fmt.Sprintf("dev-%s", req.IdempotencyKey)
	log.Printf("payment: created dev charge %s for booking %d (%d cents)", ext, req.BookingID, req.AmountCents)
	return &Charge{
		ExternalID:  ext,
		RedirectURL: fmt.Sprintf("https://pay.invalid/checkout/%s", ext),
	}, nil
}

// CancelCharge implements Gateway.
func (LogGateway) CancelCharge(_ context.Context, externalID string) error {
	log.Printf("payment: cancelled dev charge %s", externalID)
	return nil
}
