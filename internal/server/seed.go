package server

import (
	"context"
	"fmt"
	"time"

	"github.com/sakif/eventhub/internal/service"
)

// SeedDemoData loads a small demo catalog. It is a no-op when any event
// already exists, so restarting against a persistent database never
// duplicates the catalog.
func (s *Server) SeedDemoData(ctx context.Context) error {
	count, err := s.events.Count(ctx)
	if err != nil {
		return fmt.Errorf("checking event count: %w", err)
	}
	if count > 0 {
		return nil
	}

	demo := []service.CreateEventInput{
		{
			Title:       "Midnight Jazz Sessions",
			Description: "Late-night quartet sets in an intimate basement club.",
			Date:        time.Date(2026, time.September, 14, 19, 0, 0, 0, time.UTC),
			Location:    "Blue Note Cellar, Berlin",
			Category:    "Music",
			Capacity:    80,
			Price:       3500,
		},
		{
			Title:       "Go Systems Workshop",
			Description: "A full-day hands-on workshop on writing network services.",
			Date:        time.Date(2026, time.October, 2, 9, 0, 0, 0, time.UTC),
			Location:    "Station F, Paris",
			Category:    "Tech",
			Capacity:    120,
			Price:       14900,
		},
		{
			Title:       "Street Food Festival",
			Description: "Forty vendors, one riverside promenade.",
			Date:        time.Date(2026, time.October, 17, 12, 0, 0, 0, time.UTC),
			Location:    "South Bank, London",
			Category:    "Food",
			Capacity:    500,
			Price:       1200,
		},
		{
			Title:       "Marathon Expo",
			Description: "Gear, nutrition talks, and bib pickup ahead of race day.",
			Date:        time.Date(2026, time.November, 6, 10, 0, 0, 0, time.UTC),
			Location:    "Convention Centre, Dublin",
			Category:    "Sports",
			Capacity:    300,
			Price:       500,
		},
	}

	for _, in := range demo {
		if _, err := s.eventSvc.Create(ctx, in); err != nil {
			return fmt.Errorf("seeding %q: %w", in.Title, err)
		}
	}

	s.logger.Info("demo catalog seeded", "events", len(demo))
	return nil
}
