// Package sqlite implements the repository interfaces on SQLite.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which needs a C compiler and makes
// cross-compilation painful. modernc.org/sqlite is a pure Go translation of
// the SQLite sources — works everywhere Go works, no toolchain surprises.
//
// CONCURRENCY MODEL:
// SQLite allows many readers but a single writer. The booking transaction
// relies on this: inside one write transaction, a conditional
// UPDATE ... WHERE available >= ? either decrements the inventory or
// matches no row, and no other writer can interleave. See booking.go.
package sqlite

import (
	"database/sql"
	"fmt"

	// Side-effect import: the driver's init() registers itself with
	// database/sql under the name "sqlite".
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB pool. It owns the connection lifecycle and the schema;
// the per-entity repositories (UserRepo, EventRepo, BookingRepo) share its
// pool. One repository type per entity keeps the interface method sets from
// colliding — Create(ctx, *model.User) and Create(ctx, *model.Event) cannot
// live on the same receiver.
type DB struct {
	conn *sql.DB
}

// Users returns the UserRepository backed by this database.
func (db *DB) Users() *UserRepo { return &UserRepo{conn: db.conn} }

// Events returns the EventRepository backed by this database.
func (db *DB) Events() *EventRepo { return &EventRepo{conn: db.conn} }

// Bookings returns the BookingRepository backed by this database.
func (db *DB) Bookings() *BookingRepo { return &BookingRepo{conn: db.conn} }

// New opens (or creates) the database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/eventhub.db"  → file-based, persistent
//   - ":memory:"          → in-memory, lost on close (tests)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// SQLite has one writer at a time. Funnelling all statements through a
	// single pooled connection turns would-be SQLITE_BUSY failures under
	// concurrent bookings into in-process queueing, and makes ":memory:"
	// databases (one per connection!) behave as a single database.
	conn.SetMaxOpenConns(1)

	// Ping forces a real connection now, so a bad path or permission
	// problem surfaces at startup instead of on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL mode allows concurrent reads while a write is in progress.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are off by default in SQLite for historical reasons.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool. Callers should defer this next to New.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps it idempotent.
//
// Schema notes:
//   - users.email carries a UNIQUE index: this is the email → id secondary
//     index, and keeping it in the same table as the primary record means
//     the two can never drift apart.
//   - events.date is stored as RFC 3339 TEXT (not DATETIME) so the catalog
//     date filter can prefix-match "2026-09" or "2026-09-14T19" directly.
//   - bookings has indexes on user_id (the per-user booking listing) and
//     event_id (the delete-conflict check).
//   - bookings.event_id has NO foreign key constraint: a booking is a weak
//     reference that must survive event deletion attempts, and the
//     "cannot delete an event with bookings" rule is enforced in Delete.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL DEFAULT '',
			first_name    TEXT NOT NULL DEFAULT '',
			last_name     TEXT NOT NULL DEFAULT '',
			is_admin      INTEGER NOT NULL DEFAULT 0,
			github_id     INTEGER NOT NULL DEFAULT 0,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_users_github_id ON users(github_id);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS events (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			date        TEXT NOT NULL,
			location    TEXT NOT NULL,
			category    TEXT NOT NULL DEFAULT 'General',
			capacity    INTEGER NOT NULL,
			available   INTEGER NOT NULL,
			price       INTEGER NOT NULL,
			image_url   TEXT NOT NULL DEFAULT '',
			status      TEXT NOT NULL DEFAULT 'active',
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CHECK (available >= 0),
			CHECK (available <= capacity)
		);
		CREATE INDEX IF NOT EXISTS idx_events_date ON events(date);
		CREATE INDEX IF NOT EXISTS idx_events_category ON events(category);
	`)
	if err != nil {
		return fmt.Errorf("creating events table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS bookings (
			id          TEXT PRIMARY KEY,
			user_id     TEXT NOT NULL REFERENCES users(id),
			event_id    TEXT NOT NULL,
			quantity    INTEGER NOT NULL CHECK (quantity >= 1),
			total_price INTEGER NOT NULL,
			status      TEXT NOT NULL,
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_bookings_user_id ON bookings(user_id);
		CREATE INDEX IF NOT EXISTS idx_bookings_event_id ON bookings(event_id);
	`)
	if err != nil {
		return fmt.Errorf("creating bookings table: %w", err)
	}

	return nil
}
