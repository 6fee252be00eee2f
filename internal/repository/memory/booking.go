package memory

import (
	"context"
	"sort"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/eventhub/internal/apperror"
	"github.com/sakif/eventhub/internal/model"
)

// BookingStore is the BookingRepository view of a Store.
type BookingStore struct {
	s *Store
}

// Book atomically reserves tickets and records the booking.
//
// The whole read-check-decrement-insert sequence holds the store mutex, so
// two concurrent bookings against the same event are fully serialized: the
// second one sees the first one's decrement before its own availability
// check runs. This is the per-store-lock answer to the oversell race; the
// sqlite backend solves the same problem with a conditional UPDATE inside a
// transaction.
func (b *BookingStore) Book(_ context.Context, booking *model.Booking) error {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()

	event, ok := b.s.events[booking.EventID]
	if !ok {
		return apperror.NotFound("event", booking.EventID)
	}

	if event.Available < booking.Quantity {
		return apperror.InsufficientStock(booking.Quantity, event.Available)
	}

	booking.ID = xid.New().String()
	booking.CreatedAt = time.Now().UTC()

	event.Available -= booking.Quantity
	event.UpdatedAt = booking.CreatedAt

	stored := *booking
	b.s.bookings[booking.ID] = &stored
	b.s.userBookings[booking.UserID] = append(b.s.userBookings[booking.UserID], booking.ID)

	return nil
}

// ListByUser returns the user's bookings enriched with event display
// fields, newest first. Bookings whose event was deleted carry a nil
// snapshot.
func (b *BookingStore) ListByUser(_ context.Context, userID string) ([]model.BookingView, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()

	views := []model.BookingView{}
	for _, id := range b.s.userBookings[userID] {
		booking := b.s.bookings[id]
		view := model.BookingView{Booking: *booking}
		if event, ok := b.s.events[booking.EventID]; ok {
			view.Event = &model.EventSnapshot{
				Title:    event.Title,
				Date:     event.Date,
				Location: event.Location,
			}
		}
		views = append(views, view)
	}

	sort.Slice(views, func(i, j int) bool {
		return views[i].CreatedAt.After(views[j].CreatedAt)
	})

	return views, nil
}

// Count returns the total number of bookings.
func (b *BookingStore) Count(_ context.Context) (int, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	return len(b.s.bookings), nil
}

// Revenue returns the sum of all booking totals in cents.
func (b *BookingStore) Revenue(_ context.Context) (int64, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()

	var total int64
	for _, booking := range b.s.bookings {
		total += booking.TotalPrice
	}
	return total, nil
}
