package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/eventhub/internal/apperror"
	"github.com/sakif/eventhub/internal/model"
	"github.com/sakif/eventhub/internal/repository"
)

// EventStore is the EventRepository view of a Store.
type EventStore struct {
	s *Store
}

// Create inserts a new event, generating its id and timestamps.
func (e *EventStore) Create(_ context.Context, event *model.Event) error {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()

	event.ID = xid.New().String()
	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now

	stored := *event
	e.s.events[event.ID] = &stored
	return nil
}

// GetByID returns a copy of the event, or apperror.ErrNotFound.
func (e *EventStore) GetByID(_ context.Context, id string) (*model.Event, error) {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()

	event, ok := e.s.events[id]
	if !ok {
		return nil, apperror.NotFound("event", id)
	}
	result := *event
	return &result, nil
}

// List returns all events matching the filter, newest date first.
// Filter semantics mirror the sqlite backend: case-insensitive exact
// category, case-insensitive substring search over title and description,
// RFC 3339 prefix match on the date.
func (e *EventStore) List(_ context.Context, filter repository.EventFilter) ([]model.Event, error) {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()

	events := []model.Event{}
	for _, event := range e.s.events {
		if matchesFilter(event, filter) {
			events = append(events, *event)
		}
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].Date.After(events[j].Date)
	})

	return events, nil
}

func matchesFilter(event *model.Event, filter repository.EventFilter) bool {
	if filter.Category != "" && !strings.EqualFold(event.Category, filter.Category) {
		return false
	}
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(event.Title), needle) &&
			!strings.Contains(strings.ToLower(event.Description), needle) {
			return false
		}
	}
	if filter.DatePrefix != "" {
		if !strings.HasPrefix(event.Date.UTC().Format(time.RFC3339), filter.DatePrefix) {
			return false
		}
	}
	return true
}

// Update persists an existing event. The caller's available count may be
// stale (a booking can land between its read and this write), so it is
// recomputed here from the new capacity and the stored row's sold count,
// under the same lock that Book holds.
func (e *EventStore) Update(_ context.Context, event *model.Event) error {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()

	current, ok := e.s.events[event.ID]
	if !ok {
		return apperror.NotFound("event", event.ID)
	}

	sold := current.Capacity - current.Available
	if event.Capacity < sold {
		return apperror.ValidationFailed("capacity",
			fmt.Sprintf("capacity %d is below the %d tickets already sold", event.Capacity, sold))
	}
	event.Available = event.Capacity - sold
	event.UpdatedAt = time.Now().UTC()

	stored := *event
	e.s.events[event.ID] = &stored
	return nil
}

// Delete removes an event, refusing while bookings reference it. The
// booking scan and the delete share the lock, so a concurrent Book cannot
// slip a booking in between them.
func (e *EventStore) Delete(_ context.Context, id string) error {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()

	if _, ok := e.s.events[id]; !ok {
		return apperror.NotFound("event", id)
	}

	count := 0
	for _, b := range e.s.bookings {
		if b.EventID == id {
			count++
		}
	}
	if count > 0 {
		return apperror.Conflict(fmt.Sprintf("event has %d bookings and cannot be deleted", count))
	}

	delete(e.s.events, id)
	return nil
}

// Count returns the total number of events.
func (e *EventStore) Count(_ context.Context) (int, error) {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	return len(e.s.events), nil
}

// CountByStatus counts events with the given status.
func (e *EventStore) CountByStatus(_ context.Context, status string) (int, error) {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()

	n := 0
	for _, event := range e.s.events {
		if event.Status == status {
			n++
		}
	}
	return n, nil
}
