package realtime

import (
	"github.com/google/uuid"
	"github.com/lorrc/event-board/internal/core/domain"
)

// subscription is one open stream on a Hub room.
type subscription struct {
	hub     *Hub
	eventID uuid.UUID
	ch      chan *domain.Comment

	// closed is guarded by hub.mu
	closed bool
}

func (s *subscription) Comments() <-chan *domain.Comment {
	return s.ch
}

// Close leaves the room. It is safe to call more than once.
func (s *subscription) Close() error {
	s.hub.remove(s)
	return nil
}
