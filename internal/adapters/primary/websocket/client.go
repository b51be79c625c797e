package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lorrc/event-board/internal/core/domain"
	apperrors "github.com/lorrc/event-board/internal/core/errors"
	"github.com/lorrc/event-board/internal/core/livecomments"
	"github.com/lorrc/event-board/internal/infrastructure/logging"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Outbound queue length per connection.
	sendBuffer = 256
)

// Config holds per-connection limits.
type Config struct {
	PongWait       time.Duration
	PingInterval   time.Duration
	MaxMessageSize int64
}

// DefaultConfig returns the limits used when none are configured.
func DefaultConfig() Config {
	return Config{
		PongWait:       60 * time.Second,
		PingInterval:   54 * time.Second,
		MaxMessageSize: 8192,
	}
}

// Limiter rate limits comment submissions per connection.
type Limiter interface {
	Allow(key string) bool
}

// SessionFactory builds the live comment session owned by one connection.
// The listener forwards session updates to the connection.
type SessionFactory func(listener livecomments.Listener, logger *slog.Logger) *livecomments.Session

// Client is a middleman between the websocket connection and its live
// comment session. Each connection shows at most one event at a time.
type Client struct {
	ID string

	conn    *websocket.Conn
	session *livecomments.Session
	limiter Limiter
	cfg     Config

	// Buffered channel of outbound messages.
	send      chan ServerMessage
	closeOnce sync.Once

	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger
}

// NewClient creates a client for an upgraded connection. limiter may be nil.
func NewClient(conn *websocket.Conn, id string, newSession SessionFactory, limiter Limiter, cfg Config, logger *slog.Logger) *Client {
	ctx, cancel := context.WithCancel(logging.WithConnID(context.Background(), id))
	c := &Client{
		ID:      id,
		conn:    conn,
		limiter: limiter,
		cfg:     cfg,
		send:    make(chan ServerMessage, sendBuffer),
		ctx:     ctx,
		cancel:  cancel,
		logger:  logger.With("conn_id", id),
	}
	c.session = newSession(c.onUpdate, c.logger)
	return c
}

// Run starts both pumps and returns immediately.
func (c *Client) Run() {
	go c.WritePump()
	go c.ReadPump()
}

// ReadPump reads client messages and drives the session. It runs in its own
// goroutine; all session calls are made from it.
func (c *Client) ReadPump() {
	defer c.shutdown()

	c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait)); err != nil {
		c.logger.Error("failed to set read deadline", "error", err)
		return
	}

	c.conn.SetPongHandler(func(string) error {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait)); err != nil {
			c.logger.Error("failed to set read deadline in pong handler", "error", err)
		}
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read error", "error", err)
			}
			return
		}

		c.handleIncomingMessage(message)
	}
}

// WritePump writes queued messages and keep-alive pings to the connection.
// It runs in its own goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error("failed to set write deadline", "error", err)
				return
			}

			if !ok {
				if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					c.logger.Debug("failed to send close message", "error", err)
				}
				return
			}

			if err := c.writeJSON(msg); err != nil {
				c.logger.Error("failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error("failed to set write deadline for ping", "error", err)
				return
			}

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug("failed to send ping", "error", err)
				return
			}
		}
	}
}

// writeJSON writes a JSON message to the websocket connection
func (c *Client) writeJSON(msg ServerMessage) error {
	w, err := c.conn.NextWriter(websocket.TextMessage)
	if err != nil {
		return err
	}

	if err := json.NewEncoder(w).Encode(msg); err != nil {
		_ = w.Close()
		return err
	}

	return w.Close()
}

// shutdown releases the session before closing the outbound queue; once
// Deactivate returns no listener call can enqueue again.
func (c *Client) shutdown() {
	c.cancel()
	c.session.Deactivate()
	c.closeOnce.Do(func() {
		close(c.send)
	})
	_ = c.conn.Close()
	c.logger.Debug("websocket client closed")
}

// enqueue queues msg without blocking. A client that cannot keep up is
// disconnected rather than silently missing comments.
func (c *Client) enqueue(msg ServerMessage) {
	select {
	case c.send <- msg:
	default:
		c.logger.Warn("send buffer full, closing connection", "type", msg.Type)
		_ = c.conn.Close()
	}
}

// onUpdate is the session listener. It runs under the session lock.
func (c *Client) onUpdate(update livecomments.Update) {
	switch update.Kind {
	case livecomments.UpdateSnapshot:
		c.enqueue(ServerMessage{Type: TypeSnapshot, Payload: SnapshotPayload{
			Event:    domain.NewEventSnapshot(update.Event),
			Comments: domain.NewCommentSnapshots(update.Comments),
		}})
	case livecomments.UpdateNotFound:
		c.enqueue(ServerMessage{Type: TypeEventNotFound, Payload: EventNotFoundPayload{
			EventID: update.EventKey,
		}})
	case livecomments.UpdateCommentAdded:
		c.enqueue(ServerMessage{Type: TypeCommentAdded, Payload: CommentAddedPayload{
			Comment: domain.NewCommentSnapshot(update.Comment),
		}})
	}
}

// --- Incoming Message Handling ---

// handleIncomingMessage processes messages received from the client
func (c *Client) handleIncomingMessage(message []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		c.logger.Warn("failed to unmarshal client message", "error", err)
		c.sendError("BAD_REQUEST", "Invalid message")
		return
	}

	switch msg.Type {
	case TypeActivate:
		c.handleActivate(msg.Payload)

	case TypeDeactivate:
		c.session.Deactivate()

	case TypeSubmitComment:
		c.handleSubmitComment(msg.Payload)

	case TypePing:
		// Client-side keep-alive, respond with pong
		c.enqueue(ServerMessage{Type: TypePong})

	default:
		c.logger.Debug("received unknown message type", "type", msg.Type)
	}
}

func (c *Client) handleActivate(payload json.RawMessage) {
	var p ActivatePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		c.logger.Warn("failed to unmarshal activate payload", "error", err)
		c.sendError("BAD_REQUEST", "Invalid activate payload")
		return
	}

	if err := c.session.Activate(c.ctx, p.EventID); err != nil {
		c.sendError("VALIDATION_ERROR", err.Error())
	}
}

func (c *Client) handleSubmitComment(payload json.RawMessage) {
	var p SubmitCommentPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		c.logger.Warn("failed to unmarshal submit payload", "error", err)
		c.sendError("BAD_REQUEST", "Invalid comment payload")
		return
	}

	// Blank drafts are ignored without a round trip.
	if strings.TrimSpace(p.Content) == "" {
		return
	}

	if c.limiter != nil && !c.limiter.Allow(c.ID) {
		c.enqueue(ServerMessage{Type: TypeCommentFailed, Payload: CommentFailedPayload{
			Content: p.Content,
			Error:   apperrors.ErrRateLimited.Error(),
		}})
		return
	}

	err := c.session.SubmitComment(c.ctx, p.Content)
	switch {
	case err == nil:
		c.enqueue(ServerMessage{Type: TypeCommentSubmitted})
	case errors.Is(err, apperrors.ErrSessionNotLive):
		c.enqueue(ServerMessage{Type: TypeCommentFailed, Payload: CommentFailedPayload{
			Content: p.Content,
			Error:   "No event is open",
		}})
	default:
		c.enqueue(ServerMessage{Type: TypeCommentFailed, Payload: CommentFailedPayload{
			Content: c.session.Draft(),
			Error:   "Comment could not be posted",
		}})
	}
}

func (c *Client) sendError(code, message string) {
	c.enqueue(ServerMessage{Type: TypeError, Payload: ErrorPayload{Code: code, Message: message}})
}
