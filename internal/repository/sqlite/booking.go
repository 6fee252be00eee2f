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

// BookingRepo implements repository.BookingRepository on the shared pool.
type BookingRepo struct {
	conn *sql.DB
}

var _ repository.BookingRepository = (*BookingRepo)(nil)

// Book atomically reserves tickets and records the booking.
//
// THE OVERSELL PROBLEM:
// A naive read-then-write sequence is racy:
//
//	request A: SELECT available → 1
//	request B: SELECT available → 1
//	request A: 1 >= 1, ok → UPDATE available = 0, INSERT booking
//	request B: 1 >= 1, ok → UPDATE available = -1, INSERT booking
//
// Both requests pass the check before either writes, and the event is
// oversold. The fix here is a conditional decrement: the availability check
// and the decrement are a single UPDATE statement, so the database evaluates
// them atomically —
//
//	UPDATE events SET available = available - ?
//	WHERE id = ? AND available >= ?
//
// When the guard fails the statement matches no row and RowsAffected is 0;
// nothing was written and we report why. The decrement and the booking
// insert share one transaction, so a failure between them rolls both back —
// there is no state where tickets are gone but no booking exists.
func (r *BookingRepo) Book(ctx context.Context, booking *model.Booking) error {
	booking.ID = xid.New().String()
	booking.CreatedAt = time.Now().UTC()

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning booking transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE events
		 SET available = available - ?, updated_at = ?
		 WHERE id = ? AND available >= ?`,
		booking.Quantity,
		booking.CreatedAt,
		booking.EventID,
		booking.Quantity,
	)
	if err != nil {
		return fmt.Errorf("sqlite: decrementing availability: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking decrement result: %w", err)
	}
	if affected == 0 {
		// The guard failed: either the event is gone, or not enough
		// tickets remain. Re-read inside the same transaction to tell the
		// two apart and report the remaining count.
		var available int
		err := tx.QueryRowContext(ctx,
			`SELECT available FROM events WHERE id = ?`, booking.EventID,
		).Scan(&available)
		if errors.Is(err, sql.ErrNoRows) {
			return apperror.NotFound("event", booking.EventID)
		}
		if err != nil {
			return fmt.Errorf("sqlite: reading availability: %w", err)
		}
		return apperror.InsufficientStock(booking.Quantity, available)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO bookings (id, user_id, event_id, quantity, total_price, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		booking.ID,
		booking.UserID,
		booking.EventID,
		booking.Quantity,
		booking.TotalPrice,
		booking.Status,
		booking.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting booking: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing booking: %w", err)
	}

	return nil
}

// ListByUser returns the user's bookings enriched with event display
// fields, newest first.
//
// LEFT JOIN keeps bookings whose event has since been deleted; their event
// columns come back NULL and the view carries a nil snapshot.
func (r *BookingRepo) ListByUser(ctx context.Context, userID string) ([]model.BookingView, error) {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT b.id, b.user_id, b.event_id, b.quantity, b.total_price, b.status, b.created_at,
		        e.title, e.date, e.location
		 FROM bookings b
		 LEFT JOIN events e ON e.id = b.event_id
		 WHERE b.user_id = ?
		 ORDER BY b.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing bookings: %w", err)
	}
	defer rows.Close()

	views := []model.BookingView{}
	for rows.Next() {
		var (
			v        model.BookingView
			title    sql.NullString
			dateStr  sql.NullString
			location sql.NullString
		)
		err := rows.Scan(
			&v.ID,
			&v.UserID,
			&v.EventID,
			&v.Quantity,
			&v.TotalPrice,
			&v.Status,
			&v.CreatedAt,
			&title,
			&dateStr,
			&location,
		)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning booking: %w", err)
		}

		if title.Valid {
			date, err := time.Parse(time.RFC3339, dateStr.String)
			if err != nil {
				return nil, fmt.Errorf("sqlite: parsing booked event date %q: %w", dateStr.String, err)
			}
			v.Event = &model.EventSnapshot{
				Title:    title.String,
				Date:     date,
				Location: location.String,
			}
		}

		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating bookings: %w", err)
	}

	return views, nil
}

// Count returns the total number of bookings.
func (r *BookingRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: counting bookings: %w", err)
	}
	return n, nil
}

// Revenue returns the sum of all booking totals in cents.
// COALESCE because SUM over zero rows is NULL, not 0.
func (r *BookingRepo) Revenue(ctx context.Context) (int64, error) {
	var total int64
	err := r.conn.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(total_price), 0) FROM bookings`,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sqlite: summing revenue: %w", err)
	}
	return total, nil
}
