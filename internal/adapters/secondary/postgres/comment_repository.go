package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lorrc/event-board/internal/core/domain"
	apperrors "github.com/lorrc/event-board/internal/core/errors"
	"github.com/lorrc/event-board/internal/core/ports"
)

const createComment = `INSERT INTO comments (event_id, author, content)
VALUES ($1, $2, $3)
RETURNING id, event_id, author, content, created_at`

// Ties on created_at fall back to id so the order is total.
const listCommentsByEventID = `SELECT id, event_id, author, content, created_at
FROM comments
WHERE event_id = $1
ORDER BY created_at ASC, id ASC`

// foreignKeyViolation is the SQLSTATE for a comment whose event is gone.
const foreignKeyViolation = "23503"

// CommentRepository handles database operations for comments.
type CommentRepository struct {
	pool *pgxpool.Pool
}

// Ensure implementation matches the interface.
var _ ports.CommentRepository = (*CommentRepository)(nil)

// NewCommentRepository creates a new comment repository.
func NewCommentRepository(pool *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{pool: pool}
}

func scanComment(row pgx.Row) (*domain.Comment, error) {
	var c domain.Comment
	if err := row.Scan(&c.ID, &c.EventID, &c.Author, &c.Content, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create persists a new comment. The insert trigger announces the row on
// the comment_inserted channel once the transaction commits.
func (r *CommentRepository) Create(ctx context.Context, comment *domain.Comment) (*domain.Comment, error) {
	created, err := scanComment(GetDBTX(ctx, r.pool).QueryRow(ctx, createComment,
		comment.EventID,
		comment.Author,
		comment.Content,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return created, nil
}

// ListByEventID retrieves all comments for an event in ascending creation order.
func (r *CommentRepository) ListByEventID(ctx context.Context, eventID uuid.UUID) ([]*domain.Comment, error) {
	rows, err := GetDBTX(ctx, r.pool).Query(ctx, listCommentsByEventID, eventID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := make([]*domain.Comment, 0)
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}
