// Package notify delivers downstream notifications about posted comments.
package notify

import (
	"context"
	"log/slog"

	"github.com/lorrc/event-board/internal/core/ports"
)

// LogNotifier is used when no broker is configured. It logs each
// notification together with the event title.
type LogNotifier struct {
	events ports.EventRepository
	logger *slog.Logger
}

var _ ports.Notifier = (*LogNotifier)(nil)

// NewLogNotifier creates a notifier that only logs.
func NewLogNotifier(events ports.EventRepository, logger *slog.Logger) *LogNotifier {
	return &LogNotifier{
		events: events,
		logger: logger.With("component", "log_notifier"),
	}
}

// Notify logs the posted comment. It runs in a separate goroutine and
// handles its own errors.
func (n *LogNotifier) Notify(ctx context.Context, params ports.CommentNotification) {
	event, err := n.events.GetByID(ctx, params.EventID)
	if err != nil {
		n.logger.Error("failed to get event for notification",
			"event_id", params.EventID,
			"error", err,
		)
		return
	}

	n.logger.Info("comment posted",
		"event_id", params.EventID,
		"event_title", event.Title,
		"comment_id", params.CommentID,
		"author", params.Author,
	)
}
