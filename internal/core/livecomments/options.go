package livecomments

import (
	"log/slog"

	"github.com/lorrc/event-board/internal/core/ports"
)

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics reports lifecycle signals to m.
func WithMetrics(m ports.SessionMetrics) Option {
	return func(s *Session) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithListener registers the update listener.
func WithListener(l Listener) Option {
	return func(s *Session) {
		if l != nil {
			s.listener = l
		}
	}
}

// WithDedupByID ignores pushed comments whose id is already in the list,
// making re-delivery idempotent. Off by default.
func WithDedupByID() Option {
	return func(s *Session) {
		s.dedup = true
	}
}

// WithAuthorGenerator replaces the anonymous author label generator.
func WithAuthorGenerator(gen func() string) Option {
	return func(s *Session) {
		if gen != nil {
			s.newAuthor = gen
		}
	}
}

type nopMetrics struct{}

func (nopMetrics) SessionActivated()   {}
func (nopMetrics) SessionDeactivated() {}
func (nopMetrics) CommentDelivered()   {}
func (nopMetrics) SnapshotFailed()     {}
func (nopMetrics) SubmitFinished(bool) {}
