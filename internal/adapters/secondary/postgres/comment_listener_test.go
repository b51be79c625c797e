package postgres

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lorrc/event-board/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingPublisher collects published comments.
type recordingPublisher struct {
	mu       sync.Mutex
	comments []*domain.Comment
}

func (p *recordingPublisher) Publish(comment *domain.Comment) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.comments = append(p.comments, comment)
	return nil
}

func (p *recordingPublisher) snapshot() []*domain.Comment {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*domain.Comment, len(p.comments))
	copy(out, p.comments)
	return out
}

func TestDecodeCommentNotification(t *testing.T) {
	eventID := uuid.New()

	t.Run("row_to_json payload", func(t *testing.T) {
		payload := `{"id":17,"event_id":"` + eventID.String() + `","author":"Anonymous3",` +
			`"content":" hi ","created_at":"2026-05-04T10:11:12.345678+00:00"}`

		comment, err := DecodeCommentNotification(payload)

		require.NoError(t, err)
		assert.Equal(t, int64(17), comment.ID)
		assert.Equal(t, eventID, comment.EventID)
		assert.Equal(t, "Anonymous3", comment.Author)
		assert.Equal(t, " hi ", comment.Content)
		assert.Equal(t, 345678000, comment.CreatedAt.Nanosecond())
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := DecodeCommentNotification(`{"id":`)
		assert.Error(t, err)
	})

	t.Run("missing event id", func(t *testing.T) {
		_, err := DecodeCommentNotification(`{"id":1,"content":"x"}`)
		assert.Error(t, err)
	})
}

func TestCommentListener_PublishesInsertedRows(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	publisher := &recordingPublisher{}
	listener := NewCommentListener(testPool, publisher, slog.New(slog.NewTextHandler(io.Discard, nil)))

	done := make(chan struct{})
	go func() {
		listener.Run(ctx)
		close(done)
	}()

	event := createTestEvent(t, "listener host", time.Now().Add(time.Hour))
	repo := NewCommentRepository(testPool)

	// LISTEN is asynchronous; keep inserting until the first row arrives.
	require.Eventually(t, func() bool {
		if len(publisher.snapshot()) > 0 {
			return true
		}
		_, _ = repo.Create(context.Background(), &domain.Comment{
			EventID: event.ID,
			Author:  "Anonymous8",
			Content: "ping",
		})
		return false
	}, 10*time.Second, 100*time.Millisecond)

	second, err := repo.Create(context.Background(), &domain.Comment{
		EventID: event.ID,
		Author:  "Anonymous9",
		Content: "after subscribe",
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		for _, c := range publisher.snapshot() {
			if c.ID == second.ID {
				return true
			}
		}
		return false
	}, 5*time.Second, 20*time.Millisecond)

	for _, c := range publisher.snapshot() {
		if c.ID == second.ID {
			assert.Equal(t, event.ID, c.EventID)
			assert.Equal(t, "after subscribe", c.Content)
			assert.True(t, second.CreatedAt.Equal(c.CreatedAt))
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("listener did not stop")
	}
}

func TestSeeder_SeedsOnce(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	seeder := NewSeeder(NewTransactionManager(testPool), NewEventRepository(testPool), logger)

	// Other tests have already created events, so seeding is skipped.
	createTestEvent(t, "pre-existing", time.Now())
	inserted, err := seeder.SeedEvents(ctx, DemoEvents(time.Now()))

	require.NoError(t, err)
	assert.Zero(t, inserted)
}

func TestTransactionManager_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	tm := NewTransactionManager(testPool)
	repo := NewEventRepository(testPool)

	var createdID uuid.UUID
	err := tm.WithTransaction(ctx, func(ctx context.Context) error {
		e, err := repo.Create(ctx, &domain.Event{
			Title:     "rolled back",
			StartDate: time.Now(),
			EndDate:   time.Now().Add(time.Hour),
		})
		if err != nil {
			return err
		}
		createdID = e.ID
		return assert.AnError
	})

	require.ErrorIs(t, err, assert.AnError)
	require.NotEqual(t, uuid.Nil, createdID)

	_, err = repo.GetByID(ctx, createdID)
	assert.Error(t, err)
}
