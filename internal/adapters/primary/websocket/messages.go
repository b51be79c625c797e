package websocket

import (
	"encoding/json"

	"github.com/lorrc/event-board/internal/core/domain"
)

// Client → server message types.
const (
	TypeActivate      = "ACTIVATE"
	TypeDeactivate    = "DEACTIVATE"
	TypeSubmitComment = "SUBMIT_COMMENT"
	TypePing          = "PING"
)

// Server → client message types.
const (
	TypeEventNotFound    = "EVENT_NOT_FOUND"
	TypeSnapshot         = "SNAPSHOT"
	TypeCommentAdded     = "COMMENT_ADDED"
	TypeCommentSubmitted = "COMMENT_SUBMITTED"
	TypeCommentFailed    = "COMMENT_FAILED"
	TypeError            = "ERROR"
	TypePong             = "PONG"
)

// ClientMessage is the structure for messages sent from the client.
type ClientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ActivatePayload opens the detail view of one event.
type ActivatePayload struct {
	EventID string `json:"eventId"`
}

// SubmitCommentPayload carries the draft text of a new comment.
type SubmitCommentPayload struct {
	Content string `json:"content"`
}

// ServerMessage is the envelope of every message sent to the client.
type ServerMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// SnapshotPayload is the initial state of a live detail view.
type SnapshotPayload struct {
	Event    domain.EventSnapshot     `json:"event"`
	Comments []domain.CommentSnapshot `json:"comments"`
}

// CommentAddedPayload carries one pushed comment.
type CommentAddedPayload struct {
	Comment domain.CommentSnapshot `json:"comment"`
}

// EventNotFoundPayload names the id that matched no event.
type EventNotFoundPayload struct {
	EventID string `json:"eventId"`
}

// CommentFailedPayload returns the draft so the client can keep it.
type CommentFailedPayload struct {
	Content string `json:"content"`
	Error   string `json:"error"`
}

// ErrorPayload reports a rejected client message.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
