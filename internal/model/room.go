package model

import "time"

// Room represents a physical, bookable room.  Rooms are immutable during a
// booking's lifetime and are referenced, never owned, by bookings and
// credits.  Tier orders rooms by capability: a lower tier means a more
// capable room, and credits earned at a low-tier room may be spent at any
// room of equal or higher tier.
//
// Fields:
//  ID              – primary key identifier.
//  Name            – human readable label.
//  Tier            – capability tier (lower = more capable).
//  HourlyRateCents – base price per hour in cents.
//  IsActive        – whether the room accepts new bookings.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Room struct {
	ID              uint64    // rooms.id
	Name            string    // rooms.name
	Tier            int       // rooms.tier
	HourlyRateCents int64     // rooms.hourly_rate_cents
	IsActive        bool      // rooms.is_active
	CreatedAt       time.Time // rooms.created_at
	UpdatedAt       time.Time // rooms.updated_at
}
