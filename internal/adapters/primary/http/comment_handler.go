package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lorrc/event-board/internal/adapters/primary/validation"
	"github.com/lorrc/event-board/internal/core/domain"
	"github.com/lorrc/event-board/internal/core/ports"
	"github.com/lorrc/event-board/internal/infrastructure/logging"
)

// CommentHandler handles HTTP requests for event comments
type CommentHandler struct {
	commentService ports.CommentService
	submitLimiter  func(http.Handler) http.Handler
	newAuthor      func() string
	errorHandler   *ErrorHandler
	logger         *slog.Logger
}

// NewCommentHandler creates a new comment handler. submitLimiter, when not
// nil, wraps the create endpoint only.
func NewCommentHandler(
	commentService ports.CommentService,
	submitLimiter func(http.Handler) http.Handler,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
		submitLimiter:  submitLimiter,
		newAuthor:      domain.AnonymousAuthor,
		errorHandler:   errorHandler,
		logger:         logger.With("handler", "comment"),
	}
}

// RegisterRoutes sets up the comment routes under /events/{eventID}/comments.
func (h *CommentHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleListComments)

	if h.submitLimiter != nil {
		r.With(h.submitLimiter).Post("/", h.HandleCreateComment)
	} else {
		r.Post("/", h.HandleCreateComment)
	}
}

// CreateCommentRequest defines the expected JSON body for posting a comment
type CreateCommentRequest struct {
	Content string `json:"content"`
}

// Validate validates the create comment request
func (r *CreateCommentRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("content", r.Content).
		MaxLength("content", r.Content, domain.MaxCommentContentLength)

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// HandleListComments returns the event's comments in creation order. A failed
// read is logged and answered with an empty list.
func (h *CommentHandler) HandleListComments(w http.ResponseWriter, r *http.Request) {
	eventID, err := parseEventID(r)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	comments, err := h.commentService.ListComments(r.Context(), eventID)
	if err != nil {
		logging.LoggerFromContext(r.Context(), h.logger).Warn("failed to list comments, returning empty",
			"event_id", eventID,
			"error", err,
		)
		comments = nil
	}

	WriteList(w, domain.NewCommentSnapshots(comments))
}

// HandleCreateComment stores an anonymous comment on the event
func (h *CommentHandler) HandleCreateComment(w http.ResponseWriter, r *http.Request) {
	eventID, err := parseEventID(r)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	req, err := validation.DecodeAndValidate[CreateCommentRequest](w, r)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}
	if HandleError(w, r, req.Validate(), h.errorHandler) {
		return
	}

	comment, err := h.commentService.InsertComment(r.Context(), ports.InsertCommentParams{
		EventID: eventID,
		Content: req.Content,
		Author:  h.newAuthor(),
	})
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	WriteCreated(w, domain.NewCommentSnapshot(comment))
}
