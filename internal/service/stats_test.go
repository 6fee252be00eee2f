package service

import (
	"context"
	"testing"
	"time"

	"github.com/sakif/eventhub/internal/model"
	"github.com/sakif/eventhub/internal/repository/memory"
)

func TestStatsOverview(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	events := NewEventService(store.Events(), testLogger())
	bookings := NewBookingService(store.Events(), store.Bookings(), testLogger())
	stats := NewStatsService(store.Users(), store.Events(), store.Bookings(), testLogger())

	for _, email := range []string{"a@example.com", "b@example.com"} {
		if err := store.Users().Create(ctx, &model.User{Email: email}); err != nil {
			t.Fatalf("Create(user) error = %v", err)
		}
	}

	active, err := events.Create(ctx, CreateEventInput{
		Title: "Active", Date: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		Location: "Berlin", Capacity: 10, Price: 1000,
	})
	if err != nil {
		t.Fatalf("Create(event) error = %v", err)
	}
	cancelled, err := events.Create(ctx, CreateEventInput{
		Title: "Cancelled", Date: time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC),
		Location: "Berlin", Capacity: 10, Price: 1000,
	})
	if err != nil {
		t.Fatalf("Create(event) error = %v", err)
	}
	status := model.EventStatusCancelled
	if _, err := events.Update(ctx, cancelled.ID, UpdateEventInput{Status: &status}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	// Two bookings: 2×1000 + 3×1000 = 5000 cents of revenue.
	if _, err := bookings.Book(ctx, "u1", active.ID, 2); err != nil {
		t.Fatalf("Book() error = %v", err)
	}
	if _, err := bookings.Book(ctx, "u2", active.ID, 3); err != nil {
		t.Fatalf("Book() error = %v", err)
	}

	got, err := stats.Overview(ctx)
	if err != nil {
		t.Fatalf("Overview() error = %v", err)
	}

	if got.EventCount != 2 {
		t.Errorf("EventCount = %d, want 2", got.EventCount)
	}
	if got.ActiveEventCount != 1 {
		t.Errorf("ActiveEventCount = %d, want 1", got.ActiveEventCount)
	}
	if got.BookingCount != 2 {
		t.Errorf("BookingCount = %d, want 2", got.BookingCount)
	}
	if got.TotalUsers != 2 {
		t.Errorf("TotalUsers = %d, want 2", got.TotalUsers)
	}
	if got.Revenue != 5000 {
		t.Errorf("Revenue = %d, want 5000", got.Revenue)
	}
}

func TestStatsOverview_EmptyStore(t *testing.T) {
	store := memory.New()
	stats := NewStatsService(store.Users(), store.Events(), store.Bookings(), testLogger())

	got, err := stats.Overview(context.Background())
	if err != nil {
		t.Fatalf("Overview() error = %v", err)
	}
	if got.EventCount != 0 || got.BookingCount != 0 || got.TotalUsers != 0 || got.Revenue != 0 {
		t.Errorf("expected all-zero stats, got %+v", got)
	}
}
