package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/lorrc/event-board/internal/core/domain"
)

// EventService defines the port for event lookups.
type EventService interface {
	ListEvents(ctx context.Context) ([]*domain.Event, error)
	GetEvent(ctx context.Context, id uuid.UUID) (*domain.Event, error)
	CheckPayment(ctx context.Context, id uuid.UUID, amount string) (bool, error)
}

// InsertCommentParams defines the input for inserting a comment.
type InsertCommentParams struct {
	EventID uuid.UUID
	Content string
	Author  string
}

// CommentService defines the port for comment reads, writes and subscriptions.
type CommentService interface {
	ListComments(ctx context.Context, eventID uuid.UUID) ([]*domain.Comment, error)
	InsertComment(ctx context.Context, params InsertCommentParams) (*domain.Comment, error)
	Subscribe(ctx context.Context, eventID uuid.UUID) (CommentStream, error)
	Shutdown()
}

// SessionService resolves the signed-in user for a request.
type SessionService interface {
	GetCurrentUser(ctx context.Context, token string) (*domain.User, error)
}

// CommentNotification is sent downstream after a comment is stored.
type CommentNotification struct {
	CommentID int64
	EventID   uuid.UUID
	Author    string
	Content   string
}

// Notifier defines the port for sending asynchronous notifications.
type Notifier interface {
	Notify(ctx context.Context, params CommentNotification)
}

// SessionMetrics receives live session lifecycle signals.
type SessionMetrics interface {
	SessionActivated()
	SessionDeactivated()
	CommentDelivered()
	SnapshotFailed()
	SubmitFinished(ok bool)
}
