package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lorrc/event-board/internal/core/domain"
	"github.com/lorrc/event-board/internal/core/ports"
)

// CommentChannel is the NOTIFY channel the comments insert trigger writes to.
const CommentChannel = "comment_inserted"

const (
	minReconnectDelay = time.Second
	maxReconnectDelay = 30 * time.Second
)

// CommentListener turns comment_inserted notifications into published
// comments. It holds one dedicated pool connection while listening.
type CommentListener struct {
	pool      *pgxpool.Pool
	publisher ports.CommentPublisher
	logger    *slog.Logger

	minDelay time.Duration
	maxDelay time.Duration
}

// NewCommentListener creates a listener that publishes into publisher.
func NewCommentListener(pool *pgxpool.Pool, publisher ports.CommentPublisher, logger *slog.Logger) *CommentListener {
	return &CommentListener{
		pool:      pool,
		publisher: publisher,
		logger:    logger.With("component", "comment_listener", "channel", CommentChannel),
		minDelay:  minReconnectDelay,
		maxDelay:  maxReconnectDelay,
	}
}

// Run listens until ctx is cancelled, reconnecting with exponential
// backoff whenever the connection drops. Comments inserted while
// disconnected are not replayed.
func (l *CommentListener) Run(ctx context.Context) {
	retry := backoff.NewExponentialBackOff()
	retry.InitialInterval = l.minDelay
	retry.MaxInterval = l.maxDelay
	retry.MaxElapsedTime = 0
	retry.Reset()

	for {
		connected, err := l.listen(ctx)
		if ctx.Err() != nil {
			l.logger.Info("comment listener stopped")
			return
		}
		if connected {
			retry.Reset()
		}

		delay := retry.NextBackOff()
		l.logger.Error("comment listener disconnected",
			"error", err,
			"retry_in", delay,
		)

		select {
		case <-ctx.Done():
			l.logger.Info("comment listener stopped")
			return
		case <-time.After(delay):
		}
	}
}

// listen runs one LISTEN session. connected reports whether LISTEN succeeded.
func (l *CommentListener) listen(ctx context.Context) (connected bool, err error) {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer func() {
		// A LISTENing connection must not go back into the pool.
		_ = conn.Conn().Close(context.Background())
		conn.Release()
	}()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{CommentChannel}.Sanitize()); err != nil {
		return false, fmt.Errorf("listen: %w", err)
	}
	l.logger.Info("listening for inserted comments")

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return true, fmt.Errorf("wait for notification: %w", err)
		}

		comment, err := DecodeCommentNotification(notification.Payload)
		if err != nil {
			l.logger.Warn("dropping malformed comment notification", "error", err)
			continue
		}

		if err := l.publisher.Publish(comment); err != nil {
			l.logger.Error("failed to publish comment",
				"comment_id", comment.ID,
				"event_id", comment.EventID,
				"error", err,
			)
		}
	}
}

// DecodeCommentNotification parses a row_to_json(comments) payload.
func DecodeCommentNotification(payload string) (*domain.Comment, error) {
	var comment domain.Comment
	if err := json.Unmarshal([]byte(payload), &comment); err != nil {
		return nil, fmt.Errorf("decode comment notification: %w", err)
	}
	if comment.EventID == uuid.Nil {
		return nil, errors.New("comment notification has no event_id")
	}
	return &comment, nil
}
