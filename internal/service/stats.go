package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/eventhub/internal/model"
	"github.com/sakif/eventhub/internal/repository"
)

// Stats is the admin dashboard summary.
type Stats struct {
	EventCount       int   `json:"eventCount"`
	ActiveEventCount int   `json:"activeEventCount"`
	BookingCount     int   `json:"bookingCount"`
	TotalUsers       int   `json:"totalUsers"`
	Revenue          int64 `json:"revenue"` // cents
}

// StatsService aggregates counts across all three repositories for the
// admin dashboard.
type StatsService struct {
	users    repository.UserRepository
	events   repository.EventRepository
	bookings repository.BookingRepository
	logger   *slog.Logger
}

// NewStatsService creates a StatsService.
func NewStatsService(
	users repository.UserRepository,
	events repository.EventRepository,
	bookings repository.BookingRepository,
	logger *slog.Logger,
) *StatsService {
	return &StatsService{
		users:    users,
		events:   events,
		bookings: bookings,
		logger:   logger,
	}
}

// Overview computes the current dashboard numbers. The counts are separate
// store reads, not a snapshot — a booking landing mid-computation can skew
// revenue against bookingCount by one, which is fine for a dashboard.
func (s *StatsService) Overview(ctx context.Context) (*Stats, error) {
	eventCount, err := s.events.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting events: %w", err)
	}

	activeCount, err := s.events.CountByStatus(ctx, model.EventStatusActive)
	if err != nil {
		return nil, fmt.Errorf("counting active events: %w", err)
	}

	bookingCount, err := s.bookings.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting bookings: %w", err)
	}

	userCount, err := s.users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting users: %w", err)
	}

	revenue, err := s.bookings.Revenue(ctx)
	if err != nil {
		return nil, fmt.Errorf("summing revenue: %w", err)
	}

	s.logger.Debug("stats computed",
		slog.Int("events", eventCount),
		slog.Int("bookings", bookingCount),
	)

	return &Stats{
		EventCount:       eventCount,
		ActiveEventCount: activeCount,
		BookingCount:     bookingCount,
		TotalUsers:       userCount,
		Revenue:          revenue,
	}, nil
}
