package domain

import (
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/lorrc/event-board/internal/core/errors"
)

// MaxCommentContentLength bounds comment content in bytes.
const MaxCommentContentLength = 2000

// maxNotifyTextLength bounds content plus author as escaped by row_to_json.
// The inserted row travels as one NOTIFY payload, which Postgres caps below
// 8000 bytes; the remaining columns and keys take under 200.
const maxNotifyTextLength = 7000

// anonymousAuthorLimit is the exclusive upper bound of the author suffix.
const anonymousAuthorLimit = 1000

// AnonymousAuthorPattern matches every label produced by AnonymousAuthor.
var AnonymousAuthorPattern = regexp.MustCompile(`^Anonymous([0-9]|[1-9][0-9]{1,2})$`)

// Comment is an anonymous, timestamped message attached to an Event.
// ID and CreatedAt are assigned by the store.
type Comment struct {
	ID        int64     `json:"id"`
	EventID   uuid.UUID `json:"event_id"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentParams holds the client-supplied fields of a new comment.
type CommentParams struct {
	EventID uuid.UUID
	Author  string
	Content string
}

// NewComment validates params and builds an unsaved comment.
// Content is kept verbatim; only the emptiness check trims it.
func NewComment(params CommentParams) (*Comment, error) {
	if params.EventID == uuid.Nil {
		return nil, apperrors.ErrEventIDRequired
	}
	if strings.TrimSpace(params.Content) == "" {
		return nil, apperrors.ErrCommentContentRequired
	}
	if len(params.Content) > MaxCommentContentLength {
		return nil, apperrors.ErrCommentContentTooLong
	}
	if strings.TrimSpace(params.Author) == "" {
		return nil, apperrors.ErrAuthorRequired
	}
	if jsonEscapedLength(params.Content)+jsonEscapedLength(params.Author) > maxNotifyTextLength {
		return nil, apperrors.ErrCommentContentTooLong
	}

	return &Comment{
		EventID: params.EventID,
		Author:  params.Author,
		Content: params.Content,
	}, nil
}

// AnonymousAuthor returns a display name of the form Anonymous<0..999>.
// Labels are not unique.
func AnonymousAuthor() string {
	return "Anonymous" + strconv.Itoa(rand.IntN(anonymousAuthorLimit))
}

// jsonEscapedLength is the byte length of s inside a JSON string as Postgres
// writes it: quote, backslash and \b \f \n \r \t take two bytes, other
// control characters take six (\u00XX).
func jsonEscapedLength(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '"', c == '\\', c == '\b', c == '\f', c == '\n', c == '\r', c == '\t':
			n += 2
		case c < 0x20:
			n += 6
		default:
			n++
		}
	}
	return n
}
