package postgres

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lorrc/event-board/internal/core/domain"
	apperrors "github.com/lorrc/event-board/internal/core/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentRepository_CreateList(t *testing.T) {
	ctx := context.Background()
	repo := NewCommentRepository(testPool)
	event := createTestEvent(t, "comment host", time.Now().Add(24*time.Hour))
	other := createTestEvent(t, "other host", time.Now().Add(24*time.Hour))

	contents := []string{"first", "  second with spaces  ", "third"}
	var created []*domain.Comment
	for _, content := range contents {
		c, err := repo.Create(ctx, &domain.Comment{
			EventID: event.ID,
			Author:  "Anonymous5",
			Content: content,
		})
		require.NoError(t, err)
		assert.NotZero(t, c.ID)
		assert.False(t, c.CreatedAt.IsZero())
		created = append(created, c)
	}

	_, err := repo.Create(ctx, &domain.Comment{EventID: other.ID, Author: "Anonymous6", Content: "elsewhere"})
	require.NoError(t, err)

	comments, err := repo.ListByEventID(ctx, event.ID)
	require.NoError(t, err)
	require.Len(t, comments, 3)

	for i, c := range comments {
		assert.Equal(t, created[i].ID, c.ID)
		assert.Equal(t, contents[i], c.Content)
		assert.Equal(t, event.ID, c.EventID)
		if i > 0 {
			assert.False(t, c.CreatedAt.Before(comments[i-1].CreatedAt))
		}
	}
}

func TestCommentRepository_ListEmpty(t *testing.T) {
	repo := NewCommentRepository(testPool)

	comments, err := repo.ListByEventID(context.Background(), uuid.New())

	require.NoError(t, err)
	assert.Empty(t, comments)
	assert.NotNil(t, comments)
}

func TestCommentRepository_RejectsUnknownEvent(t *testing.T) {
	repo := NewCommentRepository(testPool)

	_, err := repo.Create(context.Background(), &domain.Comment{
		EventID: uuid.New(),
		Author:  "Anonymous1",
		Content: "orphan",
	})

	assert.ErrorIs(t, err, apperrors.ErrEventNotFound)
}

func TestCommentRepository_EscapedContentFitsNotification(t *testing.T) {
	repo := NewCommentRepository(testPool)
	event := createTestEvent(t, "escaping host", time.Now().Add(24*time.Hour))

	comment, err := domain.NewComment(domain.CommentParams{
		EventID: event.ID,
		Author:  "Anonymous2",
		Content: strings.Repeat("\"\n", domain.MaxCommentContentLength/2),
	})
	require.NoError(t, err)

	created, err := repo.Create(context.Background(), comment)

	require.NoError(t, err)
	assert.Equal(t, comment.Content, created.Content)
}
