package model

import "time"

// BookingLock is an advisory per-room lock held while a booking is checked and written.
// ExpiresAt backs a TTL index so a crashed holder cannot wedge the room.
type BookingLock struct {
	ID        string    `bson:"_id" json:"id"`
	Owner     string    `bson:"owner" json:"owner"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
