package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/eventhub/internal/apperror"
	"github.com/sakif/eventhub/internal/model"
	"github.com/sakif/eventhub/internal/repository"
)

// BookingService handles the one stateful business transaction in the
// system: reserving tickets.
type BookingService struct {
	events   repository.EventRepository
	bookings repository.BookingRepository
	logger   *slog.Logger
}

// NewBookingService creates a BookingService.
func NewBookingService(
	events repository.EventRepository,
	bookings repository.BookingRepository,
	logger *slog.Logger,
) *BookingService {
	return &BookingService{
		events:   events,
		bookings: bookings,
		logger:   logger,
	}
}

// Book reserves quantity tickets for the event on behalf of userID.
//
// The total price is ALWAYS computed server-side as unit price × quantity.
// The request carries no amount field: accepting a client-supplied total
// would let a client dictate its own charge.
//
// The availability check that matters is the one inside the repository's
// Book — it is atomic with the decrement and the booking insert. The event
// read here only resolves the unit price and the display snapshot; by the
// time Book runs, availability may have changed, and Book re-checks it.
func (s *BookingService) Book(ctx context.Context, userID, eventID string, quantity int) (*model.BookingView, error) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return nil, apperror.ValidationFailed("eventId", "event id is required")
	}
	if quantity < 1 {
		return nil, apperror.ValidationFailed("quantity", "quantity must be at least 1")
	}

	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	booking := &model.Booking{
		UserID:     userID,
		EventID:    event.ID,
		Quantity:   quantity,
		TotalPrice: event.Price * int64(quantity),
		Status:     model.BookingStatusConfirmed,
	}

	if err := s.bookings.Book(ctx, booking); err != nil {
		// NotFound (event deleted since the read) and InsufficientStock
		// pass through as-is; anything else is a store failure.
		if isDomainError(err) {
			return nil, err
		}
		s.logger.Error("booking transaction failed",
			slog.String("eventID", eventID),
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("booking tickets: %w", err)
	}

	s.logger.Info("tickets booked",
		slog.String("bookingID", booking.ID),
		slog.String("eventID", event.ID),
		slog.String("userID", userID),
		slog.Int("quantity", quantity),
		slog.Int64("totalPrice", booking.TotalPrice),
	)

	return &model.BookingView{
		Booking: *booking,
		Event: &model.EventSnapshot{
			Title:    event.Title,
			Date:     event.Date,
			Location: event.Location,
		},
	}, nil
}

// ListUserBookings returns the caller's bookings, newest first, each
// enriched with event display fields (nil when the event was deleted).
func (s *BookingService) ListUserBookings(ctx context.Context, userID string) ([]model.BookingView, error) {
	views, err := s.bookings.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list bookings",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing bookings: %w", err)
	}
	return views, nil
}

// isDomainError reports whether err is (or wraps) a typed application
// error, as opposed to a raw store failure.
func isDomainError(err error) bool {
	var appErr *apperror.AppError
	return errors.As(err, &appErr)
}
