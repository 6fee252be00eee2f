package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/eventhub/internal/apperror"
	"github.com/sakif/eventhub/internal/model"
	"github.com/sakif/eventhub/internal/repository"
)

// EventRepo implements repository.EventRepository on the shared pool.
type EventRepo struct {
	conn *sql.DB
}

var _ repository.EventRepository = (*EventRepo)(nil)

// eventColumns is the SELECT list shared by every event query, matching the
// scan order in scanEvent.
const eventColumns = `id, title, description, date, location, category, capacity, available, price, image_url, status, created_at, updated_at`

// Create inserts a new event, generating its id and timestamps.
// The caller (the service layer) has already applied defaults and set
// Available = Capacity.
func (r *EventRepo) Create(ctx context.Context, event *model.Event) error {
	event.ID = xid.New().String()

	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now

	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO events (id, title, description, date, location, category, capacity, available, price, image_url, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID,
		event.Title,
		event.Description,
		event.Date.UTC().Format(time.RFC3339),
		event.Location,
		event.Category,
		event.Capacity,
		event.Available,
		event.Price,
		event.ImageURL,
		event.Status,
		event.CreatedAt,
		event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating event: %w", err)
	}

	return nil
}

// GetByID retrieves a single event, or apperror.ErrNotFound.
func (r *EventRepo) GetByID(ctx context.Context, id string) (*model.Event, error) {
	row := r.conn.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = ?`, id)

	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("event", id)
		}
		return nil, fmt.Errorf("sqlite: getting event: %w", err)
	}
	return event, nil
}

// List returns all events matching the filter, newest date first.
//
// The WHERE clause is assembled from the provided filter fields:
//   - category: case-insensitive exact match
//   - search:   case-insensitive substring against title OR description
//     (instr instead of LIKE, so '%' and '_' in user input stay literal)
//   - date:     prefix match against the RFC 3339 date text
//
// No pagination — the catalog contract is an unbounded result set.
func (r *EventRepo) List(ctx context.Context, filter repository.EventFilter) ([]model.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events`
	var (
		clauses []string
		args    []any
	)

	if filter.Category != "" {
		clauses = append(clauses, `LOWER(category) = LOWER(?)`)
		args = append(args, filter.Category)
	}
	if filter.Search != "" {
		clauses = append(clauses, `(instr(LOWER(title), LOWER(?)) > 0 OR instr(LOWER(description), LOWER(?)) > 0)`)
		args = append(args, filter.Search, filter.Search)
	}
	if filter.DatePrefix != "" {
		clauses = append(clauses, `substr(date, 1, length(?)) = ?`)
		args = append(args, filter.DatePrefix, filter.DatePrefix)
	}

	for i, clause := range clauses {
		if i == 0 {
			query += ` WHERE ` + clause
		} else {
			query += ` AND ` + clause
		}
	}
	query += ` ORDER BY date DESC`

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing events: %w", err)
	}
	defer rows.Close()

	events := []model.Event{}
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning event: %w", err)
		}
		events = append(events, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating events: %w", err)
	}

	return events, nil
}

// Update persists an existing event. The available count is NOT taken from
// the caller: the service fetched the row earlier, and a booking committing
// in between would have its decrement silently overwritten by that stale
// value. Instead the sold count is re-read inside the transaction and
// available is recomputed from it, the same way Book's conditional
// decrement trusts only the current row.
func (r *EventRepo) Update(ctx context.Context, event *model.Event) error {
	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning update transaction: %w", err)
	}
	defer tx.Rollback()

	var capacity, available int
	err = tx.QueryRowContext(ctx,
		`SELECT capacity, available FROM events WHERE id = ?`, event.ID,
	).Scan(&capacity, &available)
	if errors.Is(err, sql.ErrNoRows) {
		return apperror.NotFound("event", event.ID)
	}
	if err != nil {
		return fmt.Errorf("sqlite: reading event for update: %w", err)
	}

	sold := capacity - available
	if event.Capacity < sold {
		return apperror.ValidationFailed("capacity",
			fmt.Sprintf("capacity %d is below the %d tickets already sold", event.Capacity, sold))
	}
	event.Available = event.Capacity - sold
	event.UpdatedAt = time.Now().UTC()

	_, err = tx.ExecContext(ctx,
		`UPDATE events
		 SET title = ?, description = ?, date = ?, location = ?, category = ?,
		     capacity = ?, available = ?, price = ?, image_url = ?, status = ?, updated_at = ?
		 WHERE id = ?`,
		event.Title,
		event.Description,
		event.Date.UTC().Format(time.RFC3339),
		event.Location,
		event.Category,
		event.Capacity,
		event.Available,
		event.Price,
		event.ImageURL,
		event.Status,
		event.UpdatedAt,
		event.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing update: %w", err)
	}

	return nil
}

// Delete removes an event, refusing while bookings reference it.
//
// The booking check and the delete run in one transaction so a booking
// committed between them cannot be orphaned: Book also runs in a
// transaction, and SQLite's single-writer model serializes the two.
func (r *EventRepo) Delete(ctx context.Context, id string) error {
	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning delete transaction: %w", err)
	}
	defer tx.Rollback()

	var bookings int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE event_id = ?`, id,
	).Scan(&bookings)
	if err != nil {
		return fmt.Errorf("sqlite: checking event bookings: %w", err)
	}
	if bookings > 0 {
		return apperror.Conflict(fmt.Sprintf("event has %d bookings and cannot be deleted", bookings))
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting event: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking delete result: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("event", id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing delete: %w", err)
	}

	return nil
}

// Count returns the total number of events.
func (r *EventRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: counting events: %w", err)
	}
	return n, nil
}

// CountByStatus counts events with the given status.
func (r *EventRepo) CountByStatus(ctx context.Context, status string) (int, error) {
	var n int
	err := r.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM events WHERE status = ?`, status,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting events by status: %w", err)
	}
	return n, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanEvent reads one event row in eventColumns order, parsing the RFC 3339
// date text back into a time.Time.
func scanEvent(s scanner) (*model.Event, error) {
	var (
		e       model.Event
		dateStr string
	)
	err := s.Scan(
		&e.ID,
		&e.Title,
		&e.Description,
		&dateStr,
		&e.Location,
		&e.Category,
		&e.Capacity,
		&e.Available,
		&e.Price,
		&e.ImageURL,
		&e.Status,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	e.Date, err = time.Parse(time.RFC3339, dateStr)
	if err != nil {
		return nil, fmt.Errorf("parsing event date %q: %w", dateStr, err)
	}

	return &e, nil
}
