// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingConfirmedEvent is published when a reservation reaches CONFIRMED.
// It contains enough information for downstream consumers to log, notify, or
// trigger analytics without querying the primary database.
type BookingConfirmedEvent struct {
	BookingID        uint64 `json:"booking_id"`
	UserID           uint64 `json:"user_id"`
	RoomID           uint64 `json:"room_id"`
	RoomName         string `json:"room_name"`
	StartsAt         string `json:"starts_at"`
	EndsAt           string `json:"ends_at"`
	GrossCents       int64  `json:"gross_cents"`
	CreditsUsedCents int64  `json:"credits_used_cents"`
	NetCents         int64  `json:"net_cents"`
	ConfirmedAt      string `json:"confirmed_at"`
}

// BookingCancelledEvent is published when a reservation is cancelled,
// whichever actor triggered it.
type BookingCancelledEvent struct {
	BookingID            uint64 `json:"booking_id"`
	UserID               uint64 `json:"user_id"`
	RoomID               uint64 `json:"room_id"`
	Reason               string `json:"reason"`
	CreditsRestoredCents int64  `json:"credits_restored_cents"`
	CreditMintedCents    int64  `json:"credit_minted_cents"`
	CancelledAt          string `json:"cancelled_at"`
}
