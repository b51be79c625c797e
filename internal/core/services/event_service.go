package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/lorrc/event-board/internal/core/domain"
	apperrors "github.com/lorrc/event-board/internal/core/errors"
	"github.com/lorrc/event-board/internal/core/ports"
)

// EventService handles event queries.
type EventService struct {
	eventRepo ports.EventRepository
}

var _ ports.EventService = (*EventService)(nil)

// NewEventService creates a new event service.
func NewEventService(eventRepo ports.EventRepository) ports.EventService {
	return &EventService{eventRepo: eventRepo}
}

// ListEvents returns every listed event, soonest first.
func (s *EventService) ListEvents(ctx context.Context) ([]*domain.Event, error) {
	return s.eventRepo.List(ctx)
}

// GetEvent performs the single-row lookup for a detail view.
func (s *EventService) GetEvent(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	if id == uuid.Nil {
		return nil, apperrors.ErrEventIDRequired
	}
	return s.eventRepo.GetByID(ctx, id)
}

// CheckPayment compares the typed amount against the event price.
func (s *EventService) CheckPayment(ctx context.Context, id uuid.UUID, amount string) (bool, error) {
	event, err := s.GetEvent(ctx, id)
	if err != nil {
		return false, err
	}
	return event.MatchesPayment(amount), nil
}
