package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/lorrc/event-board/internal/core/domain"
)

// EventRepository reads events from the store.
type EventRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error)
	List(ctx context.Context) ([]*domain.Event, error)
}

// CommentRepository persists and lists comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) (*domain.Comment, error)
	ListByEventID(ctx context.Context, eventID uuid.UUID) ([]*domain.Comment, error)
}

// CommentStream is a cancellable sequence of comments inserted for one event.
// Comments arrive in store delivery order. The channel is closed after Close
// or when the feed drops the subscriber.
type CommentStream interface {
	Comments() <-chan *domain.Comment
	Close() error
}

// CommentFeed opens insert subscriptions filtered by event id.
type CommentFeed interface {
	Subscribe(ctx context.Context, eventID uuid.UUID) (CommentStream, error)
}

// CommentPublisher accepts comments observed on the store's change channel.
type CommentPublisher interface {
	Publish(comment *domain.Comment) error
}
