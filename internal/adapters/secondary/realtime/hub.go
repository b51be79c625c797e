// Package realtime fans inserted comments out to per-event subscribers.
package realtime

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/lorrc/event-board/internal/core/domain"
	"github.com/lorrc/event-board/internal/core/ports"
)

const (
	// publishBuffer bounds comments waiting for dispatch.
	publishBuffer = 256

	// subscriberBuffer bounds comments waiting for one slow subscriber.
	subscriberBuffer = 256
)

// ErrHubClosed is returned by Subscribe once Run has returned.
var ErrHubClosed = errors.New("realtime hub is closed")

// Hub keeps one room per event and delivers every published comment to
// the subscribers of its event's room in publish order.
type Hub struct {
	// rooms maps event IDs to their subscriptions
	rooms map[uuid.UUID]map[*subscription]struct{}

	// publish queues comments for the dispatch loop
	publish chan *domain.Comment

	// mu protects rooms, closed and every subscription channel
	mu     sync.RWMutex
	closed bool

	logger *slog.Logger
}

// Ensure Hub implements the feed and publisher ports.
var (
	_ ports.CommentFeed      = (*Hub)(nil)
	_ ports.CommentPublisher = (*Hub)(nil)
)

// NewHub creates a new comment hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		rooms:   make(map[uuid.UUID]map[*subscription]struct{}),
		publish: make(chan *domain.Comment, publishBuffer),
		logger:  logger.With("component", "realtime_hub"),
	}
}

// Publish queues a comment for delivery. It never blocks; a full queue
// drops the comment with a warning.
func (h *Hub) Publish(comment *domain.Comment) error {
	if comment == nil {
		return nil
	}
	select {
	case h.publish <- comment:
	default:
		h.logger.Warn("publish queue full, dropping comment",
			"comment_id", comment.ID,
			"event_id", comment.EventID,
		)
	}
	return nil
}

// Run dispatches published comments until ctx is done, then closes every
// subscription. This MUST be run as a goroutine.
func (h *Hub) Run(ctx context.Context) {
	defer h.shutdown()

	for {
		select {
		case <-ctx.Done():
			return
		case comment := <-h.publish:
			h.dispatch(comment)
		}
	}
}

// Subscribe joins the room of eventID. The returned stream yields every
// comment published for that event after this call returns.
func (h *Hub) Subscribe(_ context.Context, eventID uuid.UUID) (ports.CommentStream, error) {
	sub := &subscription{
		hub:     h,
		eventID: eventID,
		ch:      make(chan *domain.Comment, subscriberBuffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}
	if h.rooms[eventID] == nil {
		h.rooms[eventID] = make(map[*subscription]struct{})
	}
	h.rooms[eventID][sub] = struct{}{}

	h.logger.Debug("subscriber joined",
		"event_id", eventID,
		"room_size", len(h.rooms[eventID]),
	)
	return sub, nil
}

// dispatch delivers comment to its room. Channel sends happen under the
// read lock so a concurrent Close cannot close a channel mid-send.
func (h *Hub) dispatch(comment *domain.Comment) {
	var overflow []*subscription

	h.mu.RLock()
	room := h.rooms[comment.EventID]
	for sub := range room {
		select {
		case sub.ch <- comment:
		default:
			overflow = append(overflow, sub)
		}
	}
	count := len(room)
	h.mu.RUnlock()

	h.logger.Debug("dispatched comment",
		"comment_id", comment.ID,
		"event_id", comment.EventID,
		"subscriber_count", count,
	)

	// A subscriber that cannot keep up loses its subscription rather than
	// silently missing a comment.
	for _, sub := range overflow {
		h.logger.Warn("subscriber buffer full, closing subscription",
			"event_id", sub.eventID,
		)
		_ = sub.Close()
	}
}

// remove drops sub from its room and closes its channel once.
func (h *Hub) remove(sub *subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(sub)
}

func (h *Hub) removeLocked(sub *subscription) {
	if sub.closed {
		return
	}
	sub.closed = true
	close(sub.ch)

	if room, ok := h.rooms[sub.eventID]; ok {
		delete(room, sub)
		if len(room) == 0 {
			delete(h.rooms, sub.eventID)
		}
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for _, room := range h.rooms {
		for sub := range room {
			h.removeLocked(sub)
		}
	}
	h.logger.Info("realtime hub stopped")
}

// RoomCount returns the number of events with at least one subscriber.
func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// SubscriberCount returns the total number of open subscriptions.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, room := range h.rooms {
		count += len(room)
	}
	return count
}

// SubscribersOf returns the number of open subscriptions for eventID.
func (h *Hub) SubscribersOf(eventID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[eventID])
}
