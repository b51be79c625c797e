package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/lorrc/event-board/internal/core/ports"
)

const publishTimeout = 5 * time.Second

// CommentPostedMessage is the JSON body published for each stored comment.
type CommentPostedMessage struct {
	CommentID int64     `json:"comment_id"`
	EventID   uuid.UUID `json:"event_id"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	PostedAt  time.Time `json:"posted_at"`
}

// AMQPPublisher publishes comment notifications to a durable RabbitMQ
// queue through the default exchange. The connection is opened lazily and
// re-opened after a failure.
type AMQPPublisher struct {
	url    string
	queue  string
	logger *slog.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

var _ ports.Notifier = (*AMQPPublisher)(nil)

// NewAMQPPublisher creates a publisher for queue on the broker at url.
func NewAMQPPublisher(url, queue string, logger *slog.Logger) *AMQPPublisher {
	return &AMQPPublisher{
		url:    url,
		queue:  queue,
		logger: logger.With("component", "amqp_publisher", "queue", queue),
	}
}

// Notify publishes params as a persistent message. Failures are logged;
// the comment itself is already stored.
func (p *AMQPPublisher) Notify(ctx context.Context, params ports.CommentNotification) {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := p.Publish(ctx, params); err != nil {
		p.logger.Error("failed to publish comment notification",
			"comment_id", params.CommentID,
			"event_id", params.EventID,
			"error", err,
		)
	}
}

// Publish sends one message and returns any broker error.
func (p *AMQPPublisher) Publish(ctx context.Context, params ports.CommentNotification) error {
	msg, err := buildPublishing(params, time.Now().UTC())
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channelLocked()
	if err != nil {
		return err
	}

	if err := ch.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		msg,
	); err != nil {
		p.resetLocked()
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// Connect opens the connection and declares the queue up front so that
// startup fails fast on a bad broker URL.
func (p *AMQPPublisher) Connect() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := p.channelLocked()
	return err
}

// Close releases the broker connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetLocked()
	return nil
}

func (p *AMQPPublisher) channelLocked() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.resetLocked()

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		p.queue, // name
		true,    // durable
		false,   // autoDelete
		false,   // exclusive
		false,   // noWait
		nil,     // args
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	p.conn = conn
	p.ch = ch
	p.logger.Info("connected to broker")
	return ch, nil
}

func (p *AMQPPublisher) resetLocked() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

func buildPublishing(params ports.CommentNotification, now time.Time) (amqp.Publishing, error) {
	body, err := json.Marshal(CommentPostedMessage{
		CommentID: params.CommentID,
		EventID:   params.EventID,
		Author:    params.Author,
		Content:   params.Content,
		PostedAt:  now,
	})
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal comment notification: %w", err)
	}

	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    fmt.Sprintf("comment-%d", params.CommentID),
		Timestamp:    now,
		Type:         "comment.posted",
		Body:         body,
	}, nil
}
