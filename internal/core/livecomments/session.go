// Package livecomments keeps one event's comment list in sync with the store
// for the lifetime of a detail view: an initial snapshot, then inserts pushed
// by the store's change feed.
package livecomments

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/lorrc/event-board/internal/core/domain"
	apperrors "github.com/lorrc/event-board/internal/core/errors"
	"github.com/lorrc/event-board/internal/core/ports"
)

// State is the lifecycle state of a Session.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateLive
	// StateNotFound is the view state for an event id with no matching row.
	StateNotFound
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateLive:
		return "live"
	case StateNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// UpdateKind identifies what changed in a Session.
type UpdateKind int

const (
	// UpdateSnapshot fires once the session is live with its initial list.
	UpdateSnapshot UpdateKind = iota
	// UpdateNotFound fires when activation found no event.
	UpdateNotFound
	// UpdateCommentAdded fires for each pushed comment appended to the list.
	UpdateCommentAdded
)

// Update describes one change of session state.
type Update struct {
	Kind       UpdateKind
	Generation uint64
	// EventKey is the id passed to Activate.
	EventKey string
	Event    *domain.Event
	Comments []*domain.Comment
	Comment  *domain.Comment
}

// Listener observes session updates. It runs with the session locked, so it
// must not block and must not call back into the Session.
type Listener func(Update)

// Session is the synchronizer for one mounted event detail view.
// Activate, Deactivate and SubmitComment are expected from a single
// goroutine; pushed comments are applied concurrently by the session's pump.
type Session struct {
	events    ports.EventService
	comments  ports.CommentService
	logger    *slog.Logger
	metrics   ports.SessionMetrics
	listener  Listener
	newAuthor func() string
	dedup     bool

	mu         sync.Mutex
	state      State
	generation uint64
	eventKey   string
	event      *domain.Event
	list       []*domain.Comment
	seen       map[int64]struct{}
	draft      string
	stream     ports.CommentStream
	cancel     context.CancelFunc
	pumpDone   chan struct{}
}

// NewSession creates an idle session bound to its collaborators.
func NewSession(events ports.EventService, comments ports.CommentService, opts ...Option) *Session {
	s := &Session{
		events:    events,
		comments:  comments,
		logger:    slog.Default(),
		metrics:   nopMetrics{},
		listener:  func(Update) {},
		newAuthor: domain.AnonymousAuthor,
		state:     StateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "live_comments")
	return s
}

// Activate starts a session for eventID, first releasing any previous one.
// A missing event leaves the session in StateNotFound without fetching
// comments or subscribing. Snapshot and subscription failures are logged
// and leave the session live with whatever it could load.
func (s *Session) Activate(ctx context.Context, eventID string) error {
	if strings.TrimSpace(eventID) == "" {
		return apperrors.ErrEventIDRequired
	}

	s.Deactivate()

	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.state = StateLoading
	s.eventKey = eventID
	s.mu.Unlock()

	logger := s.logger.With("event_id", eventID)

	// 1. Single-row lookup.
	event, err := s.lookupEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, apperrors.ErrEventNotFound) {
			logger.Info("event not found")
		} else {
			logger.Error("failed to fetch event", "error", err)
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if gen == s.generation {
			s.state = StateNotFound
			s.listener(Update{Kind: UpdateNotFound, Generation: gen, EventKey: eventID})
		}
		return nil
	}

	// 2. Snapshot of existing comments.
	snapshot, err := s.comments.ListComments(ctx, event.ID)
	if err != nil {
		logger.Warn("failed to fetch comments, starting empty", "error", err)
		s.metrics.SnapshotFailed()
		snapshot = nil
	}

	// 3. Push subscription for inserts on this event.
	stream, err := s.comments.Subscribe(ctx, event.ID)
	if err != nil {
		logger.Error("failed to subscribe to comment feed", "error", err)
		stream = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		// Deactivated while loading; drop the results.
		if stream != nil {
			_ = stream.Close()
		}
		return nil
	}

	s.event = event
	s.list = make([]*domain.Comment, 0, len(snapshot))
	s.seen = make(map[int64]struct{}, len(snapshot))
	for _, comment := range snapshot {
		s.appendLocked(comment)
	}
	s.state = StateLive

	if stream != nil {
		pumpCtx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		s.stream = stream
		s.cancel = cancel
		s.pumpDone = done
		go s.pump(pumpCtx, gen, stream, done)
	}

	s.metrics.SessionActivated()
	s.listener(Update{
		Kind:       UpdateSnapshot,
		Generation: gen,
		EventKey:   s.eventKey,
		Event:      event,
		Comments:   s.copyListLocked(),
	})

	logger.Debug("session live", "comment_count", len(s.list), "subscribed", stream != nil)
	return nil
}

// Deactivate releases the subscription and discards all local state.
// It returns after the push pump has stopped, so no update is applied
// once it returns. Calling it on an idle session is a no-op.
func (s *Session) Deactivate() {
	s.mu.Lock()
	wasLive := s.state == StateLive
	s.generation++
	stream := s.stream
	cancel := s.cancel
	done := s.pumpDone

	s.state = StateIdle
	s.eventKey = ""
	s.event = nil
	s.list = nil
	s.seen = nil
	s.draft = ""
	s.stream = nil
	s.cancel = nil
	s.pumpDone = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if stream != nil {
		if err := stream.Close(); err != nil {
			s.logger.Warn("failed to release comment subscription", "error", err)
		}
	}
	if done != nil {
		<-done
	}
	if wasLive {
		s.metrics.SessionDeactivated()
	}
}

// SubmitComment inserts text as a new anonymous comment on the active event.
// Whitespace-only text is ignored. The stored comment is not appended here;
// it arrives through the push subscription. On success the draft is cleared;
// on failure the draft keeps text.
func (s *Session) SubmitComment(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	s.mu.Lock()
	if s.state != StateLive {
		s.mu.Unlock()
		return apperrors.ErrSessionNotLive
	}
	gen := s.generation
	eventID := s.event.ID
	s.draft = text
	s.mu.Unlock()

	author := s.newAuthor()
	_, err := s.comments.InsertComment(ctx, ports.InsertCommentParams{
		EventID: eventID,
		Content: text,
		Author:  author,
	})

	s.metrics.SubmitFinished(err == nil)

	if err != nil {
		s.logger.Error("failed to submit comment",
			"event_id", eventID,
			"author", author,
			"error", err,
		)
		return err
	}

	s.mu.Lock()
	if gen == s.generation && s.draft == text {
		s.draft = ""
	}
	s.mu.Unlock()
	return nil
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// EventID returns the id passed to the last Activate, or "" when idle.
func (s *Session) EventID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eventKey
}

// Event returns the active event, or nil.
func (s *Session) Event() *domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.event
}

// Comments returns a copy of the ordered comment list.
func (s *Session) Comments() []*domain.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyListLocked()
}

// Draft returns the pending comment input.
func (s *Session) Draft() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// SetDraft replaces the pending comment input.
func (s *Session) SetDraft(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = text
}

func (s *Session) lookupEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	id, err := uuid.Parse(eventID)
	if err != nil {
		// No row can carry a malformed key.
		return nil, apperrors.ErrEventNotFound
	}
	return s.events.GetEvent(ctx, id)
}

// pump drains one subscription until it is cancelled or the feed closes it.
func (s *Session) pump(ctx context.Context, gen uint64, stream ports.CommentStream, done chan<- struct{}) {
	defer close(done)

	comments := stream.Comments()
	for {
		select {
		case <-ctx.Done():
			return
		case comment, ok := <-comments:
			if !ok {
				if ctx.Err() == nil {
					s.logger.Warn("comment feed closed the subscription")
				}
				return
			}
			s.onCommentInserted(gen, comment)
		}
	}
}

func (s *Session) onCommentInserted(gen uint64, comment *domain.Comment) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation || s.state != StateLive || comment == nil {
		return
	}
	if comment.EventID != s.event.ID {
		s.logger.Warn("dropping comment for another event",
			"event_id", s.event.ID,
			"comment_event_id", comment.EventID,
		)
		return
	}
	if !s.appendLocked(comment) {
		return
	}

	s.metrics.CommentDelivered()
	s.listener(Update{
		Kind:       UpdateCommentAdded,
		Generation: gen,
		EventKey:   s.eventKey,
		Event:      s.event,
		Comment:    comment,
	})
}

// appendLocked appends comment and reports whether the list changed.
func (s *Session) appendLocked(comment *domain.Comment) bool {
	if s.dedup {
		if _, dup := s.seen[comment.ID]; dup {
			return false
		}
		s.seen[comment.ID] = struct{}{}
	}
	s.list = append(s.list, comment)
	return true
}

func (s *Session) copyListLocked() []*domain.Comment {
	out := make([]*domain.Comment, len(s.list))
	copy(out, s.list)
	return out
}
