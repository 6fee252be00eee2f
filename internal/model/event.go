package model

import "time"

// Event status values. An event is bookable regardless of status; Status is
// a display attribute managed by administrators.
const (
	EventStatusActive    = "active"
	EventStatusCancelled = "cancelled"
	EventStatusCompleted = "completed"
)

// Event represents a bookable event in the catalog.
//
// THE INVENTORY INVARIANT:
// 0 <= Available <= Capacity must hold at all times. Available starts equal
// to Capacity, is decremented by bookings, and is recomputed when an
// administrator changes Capacity (the number already sold is preserved —
// see EventService.Update). Every write path that touches these two fields
// is responsible for keeping the invariant true; the repository's booking
// transaction enforces the lower bound atomically.
//
// WHY Price IS int64 CENTS, NOT float64:
// Floating point cannot represent most decimal amounts exactly (0.1 + 0.2 !=
// 0.3). Summing float ticket prices into a revenue figure accumulates drift.
// Integer cents make every price and every sum exact.
type Event struct {
	ID          string    `json:"id"          db:"id"`
	Title       string    `json:"title"       db:"title"`
	Description string    `json:"description" db:"description"`
	Date        time.Time `json:"date"        db:"date"` // stored and served in UTC
	Location    string    `json:"location"    db:"location"`
	Category    string    `json:"category"    db:"category"`
	Capacity    int       `json:"capacity"    db:"capacity"`
	Available   int       `json:"available"   db:"available"`
	Price       int64     `json:"price"       db:"price"` // unit price in cents
	ImageURL    string    `json:"imageUrl"    db:"image_url"`
	Status      string    `json:"status"      db:"status"`
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt"   db:"updated_at"`
}

// SoldCount returns the number of tickets already booked.
func (e *Event) SoldCount() int {
	return e.Capacity - e.Available
}

// IsSoldOut returns true when no tickets remain.
func (e *Event) IsSoldOut() bool {
	return e.Available <= 0
}
