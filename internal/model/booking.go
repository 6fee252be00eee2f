package model

import "time"

// BookingStatusConfirmed is the status every successful booking carries.
// There is no cancellation or refund path, so it is currently the only value.
const BookingStatusConfirmed = "Confirmed"

// Booking records a successful ticket purchase. Bookings are immutable once
// written — no field is ever updated, and an event with at least one booking
// cannot be deleted.
//
// TotalPrice is always derived server-side as Event.Price * Quantity at
// booking time. It is stored (rather than recomputed on read) because the
// event's price can change later; the booking keeps the price that was
// actually charged.
type Booking struct {
	ID         string    `json:"id"         db:"id"`
	UserID     string    `json:"userId"     db:"user_id"`
	EventID    string    `json:"eventId"    db:"event_id"`
	Quantity   int       `json:"quantity"   db:"quantity"`
	TotalPrice int64     `json:"totalPrice" db:"total_price"` // cents
	Status     string    `json:"status"     db:"status"`
	CreatedAt  time.Time `json:"createdAt"  db:"created_at"`
}

// EventSnapshot is the read-only slice of an event attached to a booking for
// display. It is built at read time from the current event record.
type EventSnapshot struct {
	Title    string    `json:"title"`
	Date     time.Time `json:"date"`
	Location string    `json:"location"`
}

// BookingView is a booking enriched with display fields from its event.
// Event is nil when the event has since been deleted by an administrator —
// the booking itself survives (it is a weak reference, no cascading delete).
type BookingView struct {
	Booking
	Event *EventSnapshot `json:"event"`
}
