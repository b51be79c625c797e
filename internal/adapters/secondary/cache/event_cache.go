package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/lorrc/event-board/internal/core/domain"
	"github.com/lorrc/event-board/internal/core/ports"
)

// EventCache decorates an EventRepository with a Redis read-through cache
// for single-row lookups. Event rows do not change while they are listed,
// so entries only expire by TTL. Redis failures fall through to the
// wrapped repository.
type EventCache struct {
	next   ports.EventRepository
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

var _ ports.EventRepository = (*EventCache)(nil)

// NewEventCache wraps next. With a nil client every call goes to next.
func NewEventCache(next ports.EventRepository, client *redis.Client, prefix string, ttl time.Duration, logger *slog.Logger) *EventCache {
	return &EventCache{
		next:   next,
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: logger.With("component", "event_cache"),
	}
}

func (c *EventCache) key(id uuid.UUID) string {
	return c.prefix + ":event:" + id.String()
}

// GetByID serves from Redis when possible and fills the cache on a miss.
// Not-found results are not cached.
func (c *EventCache) GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	if c.client == nil {
		return c.next.GetByID(ctx, id)
	}

	key := c.key(id)
	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var event domain.Event
		if err := json.Unmarshal(data, &event); err == nil {
			return &event, nil
		}
		c.logger.Warn("discarding undecodable cache entry", "key", key)
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("cache read failed", "key", key, "error", err)
	}

	event, err := c.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(event); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Warn("cache write failed", "key", key, "error", err)
		}
	}
	return event, nil
}

// List is never cached.
func (c *EventCache) List(ctx context.Context) ([]*domain.Event, error) {
	return c.next.List(ctx)
}
