package services

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/lorrc/event-board/internal/core/domain"
	apperrors "github.com/lorrc/event-board/internal/core/errors"
	"github.com/lorrc/event-board/internal/core/ports"
)

// CommentService implements the business logic for comments.
type CommentService struct {
	commentRepo ports.CommentRepository
	feed        ports.CommentFeed
	notifier    ports.Notifier
	wg          sync.WaitGroup
}

// Ensure implementation matches the interface.
var _ ports.CommentService = (*CommentService)(nil)

// NewCommentService creates a new service for comment logic.
func NewCommentService(
	commentRepo ports.CommentRepository,
	feed ports.CommentFeed,
	notifier ports.Notifier,
) ports.CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		feed:        feed,
		notifier:    notifier,
	}
}

// ListComments returns the comments of an event in ascending creation order.
func (s *CommentService) ListComments(ctx context.Context, eventID uuid.UUID) ([]*domain.Comment, error) {
	if eventID == uuid.Nil {
		return nil, apperrors.ErrEventIDRequired
	}
	return s.commentRepo.ListByEventID(ctx, eventID)
}

// InsertComment validates and stores a comment. The stored row reaches
// subscribers through the store's change channel, not through this call.
func (s *CommentService) InsertComment(ctx context.Context, params ports.InsertCommentParams) (*domain.Comment, error) {
	// 1. Build the domain entity.
	comment, err := domain.NewComment(domain.CommentParams{
		EventID: params.EventID,
		Author:  params.Author,
		Content: params.Content,
	})
	if err != nil {
		return nil, err
	}

	// 2. Persist the comment.
	created, err := s.commentRepo.Create(ctx, comment)
	if err != nil {
		return nil, err
	}

	// 3. Notify downstream consumers (asynchronously).
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.notifier.Notify(context.Background(), ports.CommentNotification{
			CommentID: created.ID,
			EventID:   created.EventID,
			Author:    created.Author,
			Content:   created.Content,
		})
	}()

	return created, nil
}

// Subscribe opens an insert subscription for one event.
func (s *CommentService) Subscribe(ctx context.Context, eventID uuid.UUID) (ports.CommentStream, error) {
	if eventID == uuid.Nil {
		return nil, apperrors.ErrEventIDRequired
	}
	return s.feed.Subscribe(ctx, eventID)
}

// Shutdown waits for pending notifications to finish.
func (s *CommentService) Shutdown() {
	s.wg.Wait()
}
