// Package repository defines the storage interfaces the service layer
// depends on. Two implementations exist: sqlite (durable, default) and
// memory (in-process, used for tests and demo runs). The service layer only
// ever sees these interfaces.
package repository

import (
	"context"

	"github.com/sakif/eventhub/internal/model"
)

// EventFilter narrows a catalog listing. All provided fields must match
// (logical AND); zero-value fields are ignored.
type EventFilter struct {
	Category   string // case-insensitive exact match
	Search     string // case-insensitive substring of title OR description
	DatePrefix string // prefix match against the RFC 3339 date, e.g. "2026-09" or "2026-09-14"
}

// UserRepository handles persistence for user accounts.
//
// Email uniqueness is the repository's responsibility: Create must reject a
// duplicate email and keep the primary record and the email index consistent
// in a single atomic step, so no partial-failure window exists between them.
type UserRepository interface {
	// Create inserts a new user, filling in ID and timestamps.
	// Returns apperror.ErrValidation when the email is already registered.
	Create(ctx context.Context, user *model.User) error
	// GetByID returns a user or apperror.ErrNotFound.
	GetByID(ctx context.Context, id string) (*model.User, error)
	// GetByEmail looks up via the email index. Matching is case-sensitive.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// GetByGitHubID returns the user linked to a GitHub account, or
	// apperror.ErrNotFound when no account is linked.
	GetByGitHubID(ctx context.Context, githubID int64) (*model.User, error)
	// Update persists mutable profile fields (name, admin flag, GitHub link).
	Update(ctx context.Context, user *model.User) error
	// Count returns the total number of accounts.
	Count(ctx context.Context) (int, error)
}

// EventRepository handles persistence for catalog events.
type EventRepository interface {
	// Create inserts a new event, filling in ID and timestamps.
	Create(ctx context.Context, event *model.Event) error
	// GetByID returns an event or apperror.ErrNotFound.
	GetByID(ctx context.Context, id string) (*model.Event, error)
	// List returns all events matching the filter, newest first. Unbounded.
	List(ctx context.Context, filter EventFilter) ([]model.Event, error)
	// Update persists all fields of an existing event except Available,
	// which the store recomputes from event.Capacity and the sold count of
	// the stored row at write time. The caller's Available is ignored and
	// overwritten with the recomputed value, so a booking committing between
	// the caller's read and this write is never undone. Returns
	// apperror.ErrValidation when event.Capacity is below the sold count.
	Update(ctx context.Context, event *model.Event) error
	// Delete removes an event. Returns apperror.ErrNotFound for an unknown
	// id and apperror.ErrConflict when bookings still reference it.
	Delete(ctx context.Context, id string) error
	// Count returns the total number of events; CountByStatus counts those
	// with the given status.
	Count(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status string) (int, error)
}

// BookingRepository handles persistence for bookings, including the one
// stateful transaction in the system.
type BookingRepository interface {
	// Book atomically reserves booking.Quantity tickets: it decrements the
	// event's available count and inserts the booking record as one unit.
	// No oversell is possible — concurrent calls against the same event are
	// serialized by the store.
	//
	// Returns apperror.ErrNotFound when the event does not exist and
	// apperror.ErrInsufficientStock (message carrying the remaining count)
	// when fewer than Quantity tickets remain. On either failure nothing is
	// written.
	Book(ctx context.Context, booking *model.Booking) error
	// ListByUser returns the user's bookings enriched with event display
	// fields, newest first. Bookings whose event was deleted carry a nil
	// snapshot.
	ListByUser(ctx context.Context, userID string) ([]model.BookingView, error)
	// Count returns the total number of bookings.
	Count(ctx context.Context) (int, error)
	// Revenue returns the sum of all booking totals, in cents.
	Revenue(ctx context.Context) (int64, error)
}
