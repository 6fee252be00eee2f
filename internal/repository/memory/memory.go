// Package memory implements the repository interfaces on in-process maps.
//
// It serves two roles: the zero-infrastructure backend for demo runs
// (STORE=memory), and the fixture store for service and handler tests.
//
// LIFECYCLE:
// The store is created explicitly with New and optionally populated with
// seed.Demo before the server starts accepting traffic. There is no lazy,
// flag-guarded initialization — construction and seeding are ordinary
// synchronous calls owned by the composition root.
//
// CONCURRENCY:
// A single store-wide mutex guards every operation. In particular Book's
// read-check-decrement-insert sequence runs entirely under the lock, so
// concurrent bookings against the same event are serialized and oversell is
// impossible. A coarse lock is plenty here: every operation is a handful of
// map accesses.
package memory

import (
	"sync"

	"github.com/sakif/eventhub/internal/model"
	"github.com/sakif/eventhub/internal/repository"
)

// Compile-time checks that the per-entity views satisfy their interfaces.
var (
	_ repository.UserRepository    = (*UserStore)(nil)
	_ repository.EventRepository   = (*EventStore)(nil)
	_ repository.BookingRepository = (*BookingStore)(nil)
)

// Store holds all application state in process memory. The per-entity views
// returned by Users, Events, and Bookings share its mutex, so an operation
// that spans entities (booking, event deletion) still sees a consistent
// snapshot.
//
// The email and GitHub-id maps are secondary indexes into users; the
// userBookings map is the secondary index that makes listing a user's
// bookings a direct lookup instead of a scan. Every write that touches a
// primary record and its index happens under the one mutex, so the two can
// never drift apart.
type Store struct {
	mu sync.Mutex

	users       map[string]*model.User
	emailIndex  map[string]string // email → user id (case-sensitive)
	githubIndex map[int64]string  // github id → user id

	events map[string]*model.Event

	bookings     map[string]*model.Booking
	userBookings map[string][]string // user id → booking ids, insertion order
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		users:        make(map[string]*model.User),
		emailIndex:   make(map[string]string),
		githubIndex:  make(map[int64]string),
		events:       make(map[string]*model.Event),
		bookings:     make(map[string]*model.Booking),
		userBookings: make(map[string][]string),
	}
}

// Users returns the UserRepository view of this store.
func (s *Store) Users() *UserStore { return &UserStore{s: s} }

// Events returns the EventRepository view of this store.
func (s *Store) Events() *EventStore { return &EventStore{s: s} }

// Bookings returns the BookingRepository view of this store.
func (s *Store) Bookings() *BookingStore { return &BookingStore{s: s} }
