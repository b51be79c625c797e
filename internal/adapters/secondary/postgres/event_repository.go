package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lorrc/event-board/internal/core/domain"
	apperrors "github.com/lorrc/event-board/internal/core/errors"
	"github.com/lorrc/event-board/internal/core/ports"
)

const eventColumns = `id, title, description, start_date, end_date, location,
	max_participants, is_paid, price, additional_info, created_at`

const getEventByID = `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

const listEvents = `SELECT ` + eventColumns + ` FROM events ORDER BY start_date ASC, id ASC`

const createEvent = `INSERT INTO events (
	title, description, start_date, end_date, location,
	max_participants, is_paid, price, additional_info
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING ` + eventColumns

// EventRepository handles database operations for events.
type EventRepository struct {
	pool *pgxpool.Pool
}

// Ensure implementation matches the interface.
var _ ports.EventRepository = (*EventRepository)(nil)

// NewEventRepository creates a new event repository.
func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

func scanEvent(row pgx.Row) (*domain.Event, error) {
	var e domain.Event
	err := row.Scan(
		&e.ID,
		&e.Title,
		&e.Description,
		&e.StartDate,
		&e.EndDate,
		&e.Location,
		&e.MaxParticipants,
		&e.IsPaid,
		&e.Price,
		&e.AdditionalInfo,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// GetByID retrieves a single event. A missing row is ErrEventNotFound.
func (r *EventRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	event, err := scanEvent(GetDBTX(ctx, r.pool).QueryRow(ctx, getEventByID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, fmt.Errorf("get event %s: %w", id, err)
	}
	return event, nil
}

// List retrieves every event ordered by start date.
func (r *EventRepository) List(ctx context.Context) ([]*domain.Event, error) {
	rows, err := GetDBTX(ctx, r.pool).Query(ctx, listEvents)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// Create persists a new event and returns it with its store-assigned fields.
func (r *EventRepository) Create(ctx context.Context, event *domain.Event) (*domain.Event, error) {
	created, err := scanEvent(GetDBTX(ctx, r.pool).QueryRow(ctx, createEvent,
		event.Title,
		event.Description,
		event.StartDate,
		event.EndDate,
		event.Location,
		event.MaxParticipants,
		event.IsPaid,
		event.Price,
		event.AdditionalInfo,
	))
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return created, nil
}
