package sqlite

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sakif/eventhub/internal/apperror"
	"github.com/sakif/eventhub/internal/model"
	"github.com/sakif/eventhub/internal/repository"
)

// newTestDB opens a throwaway in-memory database. Each test gets its own;
// ":memory:" databases vanish on close, so there is nothing to clean up.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("New(:memory:) error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *DB, email string) *model.User {
	t.Helper()
	user := &model.User{Email: email, PasswordHash: "x", FirstName: "Test"}
	if err := db.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("Create(user %q) error = %v", email, err)
	}
	return user
}

func createTestEvent(t *testing.T, db *DB, title string, capacity int) *model.Event {
	t.Helper()
	event := &model.Event{
		Title:     title,
		Date:      time.Date(2026, time.September, 14, 19, 0, 0, 0, time.UTC),
		Location:  "Berlin",
		Category:  "Music",
		Capacity:  capacity,
		Available: capacity,
		Price:     2500,
		Status:    model.EventStatusActive,
	}
	if err := db.Events().Create(context.Background(), event); err != nil {
		t.Fatalf("Create(event %q) error = %v", title, err)
	}
	return event
}

// =========================================================================
// MIGRATION TESTS
// =========================================================================

func TestMigrate_Idempotent(t *testing.T) {
	db := newTestDB(t)

	// Running migrations again against populated tables must be a no-op.
	createTestUser(t, db, "keep@example.com")
	if err := db.migrate(); err != nil {
		t.Fatalf("second migrate() error = %v", err)
	}

	if _, err := db.Users().GetByEmail(context.Background(), "keep@example.com"); err != nil {
		t.Errorf("data lost across re-migration: %v", err)
	}
}

// =========================================================================
// USER REPO TESTS
// =========================================================================

func TestUserRepo_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, db, "jane@example.com")
	if user.ID == "" {
		t.Fatal("expected Create to assign an ID")
	}

	byID, err := db.Users().GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if byID.Email != "jane@example.com" {
		t.Errorf("Email = %q, want %q", byID.Email, "jane@example.com")
	}

	byEmail, err := db.Users().GetByEmail(ctx, "jane@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if byEmail.ID != user.ID {
		t.Errorf("GetByEmail ID = %q, want %q", byEmail.ID, user.ID)
	}
}

func TestUserRepo_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	createTestUser(t, db, "jane@example.com")

	err := db.Users().Create(ctx, &model.User{Email: "jane@example.com"})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("duplicate Create() error = %v, want ErrValidation", err)
	}
}

func TestUserRepo_GetByGitHubID(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, db, "jane@example.com")
	user.GitHubID = 12345
	if err := db.Users().Update(ctx, user); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := db.Users().GetByGitHubID(ctx, 12345)
	if err != nil {
		t.Fatalf("GetByGitHubID() error = %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("ID = %q, want %q", got.ID, user.ID)
	}

	// github_id 0 means "not linked" and must never match the accounts
	// that carry the zero default.
	if _, err := db.Users().GetByGitHubID(ctx, 0); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByGitHubID(0) error = %v, want ErrNotFound", err)
	}
}

func TestUserRepo_UpdateUnknown(t *testing.T) {
	db := newTestDB(t)

	err := db.Users().Update(context.Background(), &model.User{ID: "ghost"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// EVENT REPO TESTS
// =========================================================================

func TestEventRepo_ListFilters(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	seed := []struct {
		title    string
		date     time.Time
		category string
	}{
		{"Jazz Night", time.Date(2026, 9, 14, 19, 0, 0, 0, time.UTC), "Music"},
		{"Rock Festival", time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC), "Music"},
		{"Go Workshop", time.Date(2026, 9, 20, 9, 0, 0, 0, time.UTC), "Tech"},
	}
	for _, e := range seed {
		event := &model.Event{
			Title: e.title, Date: e.date, Location: "Berlin", Category: e.category,
			Capacity: 10, Available: 10, Price: 1000, Status: model.EventStatusActive,
		}
		if err := db.Events().Create(ctx, event); err != nil {
			t.Fatalf("Create(%q) error = %v", e.title, err)
		}
	}

	tests := []struct {
		name   string
		filter repository.EventFilter
		want   int
	}{
		{"no filter", repository.EventFilter{}, 3},
		{"category case-insensitive", repository.EventFilter{Category: "MUSIC"}, 2},
		{"search case-insensitive", repository.EventFilter{Search: "JAZZ"}, 1},
		{"month prefix", repository.EventFilter{DatePrefix: "2026-09"}, 2},
		{"day prefix", repository.EventFilter{DatePrefix: "2026-09-14"}, 1},
		{"combined AND", repository.EventFilter{Category: "Music", DatePrefix: "2026-09"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := db.Events().List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(events) != tt.want {
				t.Errorf("List() returned %d events, want %d", len(events), tt.want)
			}
		})
	}
}

func TestEventRepo_ListNewestFirst(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	createTestEvent(t, db, "Earlier", 10) // 2026-09-14
	later := &model.Event{
		Title: "Later", Date: time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC),
		Location: "Berlin", Category: "Music", Capacity: 10, Available: 10,
		Price: 1000, Status: model.EventStatusActive,
	}
	if err := db.Events().Create(ctx, later); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	events, err := db.Events().List(ctx, repository.EventFilter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(events) != 2 || events[0].Title != "Later" {
		t.Errorf("expected newest event first, got order %v", []string{events[0].Title, events[1].Title})
	}
}

func TestEventRepo_RoundTripPreservesDate(t *testing.T) {
	db := newTestDB(t)

	event := createTestEvent(t, db, "Concert", 10)

	got, err := db.Events().GetByID(context.Background(), event.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if !got.Date.Equal(event.Date) {
		t.Errorf("Date = %v, want %v", got.Date, event.Date)
	}
}

func TestEventRepo_UpdateKeepsConcurrentSale(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, db, "buyer@example.com")
	event := createTestEvent(t, db, "Concert", 10)

	// An admin edit holds a snapshot of the row while a sale lands.
	stale, err := db.Events().GetByID(ctx, event.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if err := db.Bookings().Book(ctx, &model.Booking{
		UserID: user.ID, EventID: event.ID, Quantity: 3, TotalPrice: 7500,
		Status: model.BookingStatusConfirmed,
	}); err != nil {
		t.Fatalf("Book() error = %v", err)
	}

	// Saving the snapshot (Available still 10) must not resurrect the
	// three sold tickets.
	stale.Title = "Concert, renamed"
	if err := db.Events().Update(ctx, stale); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if stale.Available != 7 {
		t.Errorf("Update left Available = %d on the struct, want recomputed 7", stale.Available)
	}

	got, err := db.Events().GetByID(ctx, event.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Available != 7 {
		t.Errorf("Available = %d after stale update, want 7", got.Available)
	}
	if got.Title != "Concert, renamed" {
		t.Errorf("Title = %q, want the update applied", got.Title)
	}
}

func TestEventRepo_UpdateCapacityBelowSold(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, db, "buyer@example.com")
	event := createTestEvent(t, db, "Concert", 10)

	if err := db.Bookings().Book(ctx, &model.Booking{
		UserID: user.ID, EventID: event.ID, Quantity: 4, TotalPrice: 10000,
		Status: model.BookingStatusConfirmed,
	}); err != nil {
		t.Fatalf("Book() error = %v", err)
	}

	event.Capacity = 3
	if err := db.Events().Update(ctx, event); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Update() error = %v, want ErrValidation", err)
	}

	got, err := db.Events().GetByID(ctx, event.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Capacity != 10 || got.Available != 6 {
		t.Errorf("rejected update changed the row: capacity=%d available=%d", got.Capacity, got.Available)
	}
}

func TestEventRepo_UpdateUnknown(t *testing.T) {
	db := newTestDB(t)

	err := db.Events().Update(context.Background(), &model.Event{
		ID: "ghost", Title: "Ghost", Date: time.Now(), Capacity: 10,
	})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
}

func TestEventRepo_DeleteConflict(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, db, "buyer@example.com")
	event := createTestEvent(t, db, "Concert", 10)

	if err := db.Bookings().Book(ctx, &model.Booking{
		UserID: user.ID, EventID: event.ID, Quantity: 1, TotalPrice: 2500,
		Status: model.BookingStatusConfirmed,
	}); err != nil {
		t.Fatalf("Book() error = %v", err)
	}

	if err := db.Events().Delete(ctx, event.ID); !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Delete() error = %v, want ErrConflict", err)
	}

	// Blocked delete leaves the event in place.
	if _, err := db.Events().GetByID(ctx, event.ID); err != nil {
		t.Errorf("GetByID() after blocked delete error = %v", err)
	}
}

func TestEventRepo_DeleteUnknown(t *testing.T) {
	db := newTestDB(t)
	if err := db.Events().Delete(context.Background(), "ghost"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// BOOKING REPO TESTS
// =========================================================================

func TestBookingRepo_BookDecrementsAvailability(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, db, "buyer@example.com")
	event := createTestEvent(t, db, "Concert", 10)

	booking := &model.Booking{
		UserID: user.ID, EventID: event.ID, Quantity: 3, TotalPrice: 7500,
		Status: model.BookingStatusConfirmed,
	}
	if err := db.Bookings().Book(ctx, booking); err != nil {
		t.Fatalf("Book() error = %v", err)
	}
	if booking.ID == "" {
		t.Error("expected Book to assign an ID")
	}

	got, err := db.Events().GetByID(ctx, event.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Available != 7 {
		t.Errorf("Available = %d, want 7", got.Available)
	}
}

func TestBookingRepo_InsufficientTicketsWritesNothing(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, db, "buyer@example.com")
	event := createTestEvent(t, db, "Concert", 3)

	err := db.Bookings().Book(ctx, &model.Booking{
		UserID: user.ID, EventID: event.ID, Quantity: 4, TotalPrice: 10000,
		Status: model.BookingStatusConfirmed,
	})
	if !errors.Is(err, apperror.ErrInsufficientStock) {
		t.Fatalf("Book() error = %v, want ErrInsufficientStock", err)
	}

	got, _ := db.Events().GetByID(ctx, event.ID)
	if got.Available != 3 {
		t.Errorf("Available = %d, want untouched 3", got.Available)
	}
	count, _ := db.Bookings().Count(ctx)
	if count != 0 {
		t.Errorf("booking count = %d, want 0", count)
	}
}

func TestBookingRepo_UnknownEvent(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "buyer@example.com")

	err := db.Bookings().Book(context.Background(), &model.Booking{
		UserID: user.ID, EventID: "ghost", Quantity: 1,
		Status: model.BookingStatusConfirmed,
	})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Book() error = %v, want ErrNotFound", err)
	}
}

func TestBookingRepo_ConcurrentNoOversell(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	const capacity = 5
	const attempts = 30

	event := createTestEvent(t, db, "Concert", capacity)

	users := make([]*model.User, attempts)
	for i := range users {
		users[i] = createTestUser(t, db, fmt.Sprintf("buyer%d@example.com", i))
	}

	var wg sync.WaitGroup
	errs := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			errs <- db.Bookings().Book(ctx, &model.Booking{
				UserID: users[n].ID, EventID: event.ID, Quantity: 1, TotalPrice: 2500,
				Status: model.BookingStatusConfirmed,
			})
		}(i)
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
		} else if !errors.Is(err, apperror.ErrInsufficientStock) {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if succeeded != capacity {
		t.Errorf("%d bookings succeeded, want exactly %d", succeeded, capacity)
	}

	got, _ := db.Events().GetByID(ctx, event.ID)
	if got.Available != 0 {
		t.Errorf("Available = %d, want 0", got.Available)
	}
	count, _ := db.Bookings().Count(ctx)
	if count != capacity {
		t.Errorf("booking count = %d, want %d", count, capacity)
	}
}

func TestBookingRepo_ListByUser_DeletedEventSnapshot(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, db, "buyer@example.com")
	event := createTestEvent(t, db, "Concert", 10)

	if err := db.Bookings().Book(ctx, &model.Booking{
		UserID: user.ID, EventID: event.ID, Quantity: 2, TotalPrice: 5000,
		Status: model.BookingStatusConfirmed,
	}); err != nil {
		t.Fatalf("Book() error = %v", err)
	}

	// Remove the event row directly — Delete refuses while bookings
	// reference it, but a booking must survive its event regardless.
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, event.ID); err != nil {
		t.Fatalf("raw delete error = %v", err)
	}

	views, err := db.Bookings().ListByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("got %d bookings, want 1", len(views))
	}
	if views[0].Event != nil {
		t.Error("expected nil event snapshot after event deletion")
	}
	if views[0].TotalPrice != 5000 {
		t.Errorf("TotalPrice = %d, want preserved 5000", views[0].TotalPrice)
	}
}

func TestBookingRepo_Revenue(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	// Empty table sums to zero, not NULL.
	revenue, err := db.Bookings().Revenue(ctx)
	if err != nil {
		t.Fatalf("Revenue() error = %v", err)
	}
	if revenue != 0 {
		t.Errorf("Revenue = %d, want 0 for empty table", revenue)
	}

	user := createTestUser(t, db, "buyer@example.com")
	event := createTestEvent(t, db, "Concert", 10)

	for _, total := range []int64{2500, 7500} {
		if err := db.Bookings().Book(ctx, &model.Booking{
			UserID: user.ID, EventID: event.ID, Quantity: 1, TotalPrice: total,
			Status: model.BookingStatusConfirmed,
		}); err != nil {
			t.Fatalf("Book() error = %v", err)
		}
	}

	revenue, err = db.Bookings().Revenue(ctx)
	if err != nil {
		t.Fatalf("Revenue() error = %v", err)
	}
	if revenue != 10000 {
		t.Errorf("Revenue = %d, want 10000", revenue)
	}
}
