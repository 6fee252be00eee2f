package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/eventhub/internal/apperror"
	"github.com/sakif/eventhub/internal/model"
	"github.com/sakif/eventhub/internal/repository"
)

// Catalog defaults applied when an administrator omits optional fields.
const (
	DefaultCategory = "General"
	DefaultCapacity = 100
)

// EventService handles the catalog business rules.
type EventService struct {
	events repository.EventRepository
	logger *slog.Logger
}

// NewEventService creates an EventService.
func NewEventService(events repository.EventRepository, logger *slog.Logger) *EventService {
	return &EventService{
		events: events,
		logger: logger,
	}
}

// CreateEventInput carries the fields an administrator supplies when
// creating an event. Title, Date, Location, and Price are required; the
// rest default.
type CreateEventInput struct {
	Title       string
	Description string
	Date        time.Time
	Location    string
	Category    string
	Capacity    int
	Price       int64 // cents; must be > 0
	ImageURL    string
}

// Create validates the input, applies defaults, and stores a new event with
// its full capacity available.
func (s *EventService) Create(ctx context.Context, in CreateEventInput) (*model.Event, error) {
	title := strings.TrimSpace(in.Title)
	location := strings.TrimSpace(in.Location)

	if title == "" {
		return nil, apperror.ValidationFailed("title", "title is required")
	}
	if in.Date.IsZero() {
		return nil, apperror.ValidationFailed("date", "date is required")
	}
	if location == "" {
		return nil, apperror.ValidationFailed("location", "location is required")
	}
	if in.Price <= 0 {
		return nil, apperror.ValidationFailed("price", "price is required and must be positive")
	}
	if in.Capacity < 0 {
		return nil, apperror.ValidationFailed("capacity", "capacity must not be negative")
	}

	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = DefaultCategory
	}
	capacity := in.Capacity
	if capacity == 0 {
		capacity = DefaultCapacity
	}

	event := &model.Event{
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Date:        in.Date.UTC(),
		Location:    location,
		Category:    category,
		Capacity:    capacity,
		Available:   capacity, // every ticket starts unsold
		Price:       in.Price,
		ImageURL:    strings.TrimSpace(in.ImageURL),
		Status:      model.EventStatusActive,
	}

	if err := s.events.Create(ctx, event); err != nil {
		s.logger.Error("failed to create event",
			slog.String("title", title),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating event: %w", err)
	}

	s.logger.Info("event created",
		slog.String("id", event.ID),
		slog.String("title", event.Title),
		slog.Int("capacity", event.Capacity),
	)

	return event, nil
}

// Get retrieves a single event by id.
func (s *EventService) Get(ctx context.Context, id string) (*model.Event, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "event id is required")
	}
	return s.events.GetByID(ctx, id)
}

// List returns all events matching the filter. Unbounded by contract.
func (s *EventService) List(ctx context.Context, filter repository.EventFilter) ([]model.Event, error) {
	events, err := s.events.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list events", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing events: %w", err)
	}
	return events, nil
}

// UpdateEventInput carries a partial event update. Nil fields keep their
// previous values.
type UpdateEventInput struct {
	Title       *string
	Description *string
	Date        *time.Time
	Location    *string
	Category    *string
	Capacity    *int
	Price       *int64
	ImageURL    *string
	Status      *string
}

// Update applies a partial update, fetch-then-save.
//
// CAPACITY IS A DERIVED-INVARIANT UPDATE, NOT AN OVERWRITE:
// available counts unsold tickets, so changing capacity must preserve the
// number already sold:
//
//	available = newCapacity - (oldCapacity - oldAvailable)
//
// Growing a 100-seat event with 40 sold to 150 seats leaves 110 available.
// Shrinking it below 40 would make available negative; that update is
// rejected with a validation error rather than clamped, so the stored
// fields always stay mutually consistent.
//
// The recompute here works on the fetched snapshot and can go stale if a
// booking commits before the save; the repository repeats it against the
// current row at write time (under its lock or transaction) and overwrites
// event.Available with the result, so the stored count never loses a
// concurrent sale and the handler returns the authoritative value. This
// pass exists for the early validation error on a shrinking capacity.
func (s *EventService) Update(ctx context.Context, id string, in UpdateEventInput) (*model.Event, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "event id is required")
	}

	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, apperror.ValidationFailed("title", "title must not be empty")
		}
		event.Title = title
	}
	if in.Description != nil {
		event.Description = strings.TrimSpace(*in.Description)
	}
	if in.Date != nil {
		if in.Date.IsZero() {
			return nil, apperror.ValidationFailed("date", "date must not be empty")
		}
		event.Date = in.Date.UTC()
	}
	if in.Location != nil {
		location := strings.TrimSpace(*in.Location)
		if location == "" {
			return nil, apperror.ValidationFailed("location", "location must not be empty")
		}
		event.Location = location
	}
	if in.Category != nil {
		category := strings.TrimSpace(*in.Category)
		if category == "" {
			category = DefaultCategory
		}
		event.Category = category
	}
	if in.Price != nil {
		if *in.Price <= 0 {
			return nil, apperror.ValidationFailed("price", "price must be positive")
		}
		event.Price = *in.Price
	}
	if in.ImageURL != nil {
		event.ImageURL = strings.TrimSpace(*in.ImageURL)
	}
	if in.Status != nil {
		status := strings.TrimSpace(*in.Status)
		switch status {
		case model.EventStatusActive, model.EventStatusCancelled, model.EventStatusCompleted:
			event.Status = status
		default:
			return nil, apperror.ValidationFailed("status", "status must be active, cancelled, or completed")
		}
	}
	if in.Capacity != nil {
		newCapacity := *in.Capacity
		if newCapacity <= 0 {
			return nil, apperror.ValidationFailed("capacity", "capacity must be positive")
		}
		sold := event.SoldCount()
		if newCapacity < sold {
			return nil, apperror.ValidationFailed("capacity",
				fmt.Sprintf("capacity %d is below the %d tickets already sold", newCapacity, sold))
		}
		event.Capacity = newCapacity
		event.Available = newCapacity - sold
	}

	if err := s.events.Update(ctx, event); err != nil {
		s.logger.Error("failed to update event",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating event: %w", err)
	}

	s.logger.Info("event updated", slog.String("id", event.ID))

	return event, nil
}

// Delete removes an event. The repository refuses (with a conflict error)
// while any booking still references it.
func (s *EventService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "event id is required")
	}

	if err := s.events.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("event deleted", slog.String("id", id))
	return nil
}
