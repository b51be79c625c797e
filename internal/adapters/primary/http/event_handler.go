package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	mw "github.com/lorrc/event-board/internal/adapters/primary/http/middleware"
	"github.com/lorrc/event-board/internal/adapters/primary/validation"
	"github.com/lorrc/event-board/internal/core/domain"
	apperrors "github.com/lorrc/event-board/internal/core/errors"
	"github.com/lorrc/event-board/internal/core/ports"
)

// EventHandler handles HTTP requests for events
type EventHandler struct {
	eventService   ports.EventService
	commentHandler *CommentHandler
	errorHandler   *ErrorHandler
	logger         *slog.Logger
}

// NewEventHandler creates a new event handler
func NewEventHandler(
	eventService ports.EventService,
	commentHandler *CommentHandler,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *EventHandler {
	return &EventHandler{
		eventService:   eventService,
		commentHandler: commentHandler,
		errorHandler:   errorHandler,
		logger:         logger.With("handler", "event"),
	}
}

// RegisterRoutes sets up the routing for all event endpoints.
func (h *EventHandler) RegisterRoutes(r chi.Router) {
	// Browsing the list needs a signed-in user; detail links are shareable.
	r.With(mw.RequireUser(h.errorHandler.Handle)).Get("/", h.HandleListEvents)

	r.Route("/{eventID}", func(r chi.Router) {
		r.Get("/", h.HandleGetEvent)
		r.Post("/payment", h.HandleCheckPayment)

		if h.commentHandler != nil {
			r.Route("/comments", h.commentHandler.RegisterRoutes)
		}
	})
}

// --- Request/Response DTOs ---

// PaymentRequest defines the expected JSON body for the payment check
type PaymentRequest struct {
	Amount string `json:"amount"`
}

// Validate validates the payment request
func (r *PaymentRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("amount", r.Amount).
		Amount("amount", r.Amount)

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// PaymentResponse reports whether the amount matched the event price
type PaymentResponse struct {
	Paid bool `json:"paid"`
}

// --- Handlers ---

// HandleListEvents lists every event, soonest first
func (h *EventHandler) HandleListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.eventService.ListEvents(r.Context())
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	snapshots := make([]domain.EventSnapshot, 0, len(events))
	for _, event := range events {
		snapshots = append(snapshots, domain.NewEventSnapshot(event))
	}
	WriteList(w, snapshots)
}

// HandleGetEvent returns a single event
func (h *EventHandler) HandleGetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := parseEventID(r)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	event, err := h.eventService.GetEvent(r.Context(), eventID)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	WriteJSON(w, http.StatusOK, domain.NewEventSnapshot(event))
}

// HandleCheckPayment compares the submitted amount with the event price
func (h *EventHandler) HandleCheckPayment(w http.ResponseWriter, r *http.Request) {
	eventID, err := parseEventID(r)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	req, err := validation.DecodeAndValidate[PaymentRequest](w, r)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}
	if HandleError(w, r, req.Validate(), h.errorHandler) {
		return
	}

	paid, err := h.eventService.CheckPayment(r.Context(), eventID, req.Amount)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	WriteJSON(w, http.StatusOK, PaymentResponse{Paid: paid})
}

// parseEventID reads the {eventID} route parameter. A malformed id cannot
// name any event, so it is reported as not found.
func parseEventID(r *http.Request) (uuid.UUID, error) {
	eventID, err := uuid.Parse(chi.URLParam(r, "eventID"))
	if err != nil {
		return uuid.Nil, apperrors.ErrEventNotFound
	}
	return eventID, nil
}
