package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lorrc/event-board/internal/core/domain"
)

// Seeder loads demo events into an empty database.
type Seeder struct {
	tx     *TransactionManager
	events *EventRepository
	logger *slog.Logger
}

// NewSeeder creates a new seeder.
func NewSeeder(tx *TransactionManager, events *EventRepository, logger *slog.Logger) *Seeder {
	return &Seeder{
		tx:     tx,
		events: events,
		logger: logger.With("component", "seeder"),
	}
}

// SeedEvents inserts events in a single transaction. It does nothing when
// events already exist, so it is safe to run on every start.
func (s *Seeder) SeedEvents(ctx context.Context, events []*domain.Event) (int, error) {
	inserted := 0
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.events.List(ctx)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return nil
		}

		for _, event := range events {
			if _, err := s.events.Create(ctx, event); err != nil {
				return fmt.Errorf("seed event %q: %w", event.Title, err)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("seeded events", "count", inserted)
	return inserted, nil
}

// DemoEvents returns a small catalogue of upcoming events relative to now.
func DemoEvents(now time.Time) []*domain.Event {
	day := 24 * time.Hour
	start := now.Truncate(time.Hour)
	notes := "Bring a reusable cup."

	return []*domain.Event{
		{
			Title:           "Community Meetup",
			Description:     "Monthly get-together for members and newcomers.",
			StartDate:       start.Add(7 * day),
			EndDate:         start.Add(7*day + 3*time.Hour),
			Location:        "Town Hall",
			MaxParticipants: 80,
		},
		{
			Title:           "Go Workshop",
			Description:     "Hands-on afternoon on concurrency patterns.",
			StartDate:       start.Add(14 * day),
			EndDate:         start.Add(14*day + 4*time.Hour),
			Location:        "Library, Room 2",
			MaxParticipants: 25,
			IsPaid:          true,
			Price:           15,
		},
		{
			Title:           "Summer Concert",
			Description:     "Open-air evening with local bands.",
			StartDate:       start.Add(30 * day),
			EndDate:         start.Add(30*day + 5*time.Hour),
			Location:        "City Park",
			MaxParticipants: 500,
			IsPaid:          true,
			Price:           25.5,
			AdditionalInfo:  &notes,
		},
	}
}
