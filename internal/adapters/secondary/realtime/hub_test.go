package realtime

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

func newTestHub(t *testing.T) *Hub {
	t.Helper()

	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return hub
}

func receive(t *testing.T, ch <-chan *domain.Comment) *domain.Comment {
	t.Helper()
	select {
	case c, ok := <-ch:
		require.True(t, ok, "stream closed unexpectedly")
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for comment")
		return nil
	}
}

func TestHub_DeliversToRoomInOrder(t *testing.T) {
	hub := newTestHub(t)
	eventID := uuid.New()
	otherID := uuid.New()

	stream, err := hub.Subscribe(context.Background(), eventID)
	require.NoError(t, err)
	defer stream.Close()

	other, err := hub.Subscribe(context.Background(), otherID)
	require.NoError(t, err)
	defer other.Close()

	for i := int64(1); i <= 3; i++ {
		require.NoError(t, hub.Publish(&domain.Comment{ID: i, EventID: eventID}))
	}

	for i := int64(1); i <= 3; i++ {
		assert.Equal(t, i, receive(t, stream.Comments()).ID)
	}

	select {
	case c := <-other.Comments():
		t.Fatalf("unexpected comment %d for another event", c.ID)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_FanOutToEverySubscriber(t *testing.T) {
	hub := newTestHub(t)
	eventID := uuid.New()

	a, err := hub.Subscribe(context.Background(), eventID)
	require.NoError(t, err)
	b, err := hub.Subscribe(context.Background(), eventID)
	require.NoError(t, err)

	assert.Equal(t, 2, hub.SubscribersOf(eventID))
	assert.Equal(t, 1, hub.RoomCount())

	require.NoError(t, hub.Publish(&domain.Comment{ID: 42, EventID: eventID}))

	assert.Equal(t, int64(42), receive(t, a.Comments()).ID)
	assert.Equal(t, int64(42), receive(t, b.Comments()).ID)
}

func TestHub_CloseLeavesRoom(t *testing.T) {
	hub := newTestHub(t)
	eventID := uuid.New()

	stream, err := hub.Subscribe(context.Background(), eventID)
	require.NoError(t, err)

	require.NoError(t, stream.Close())
	require.NoError(t, stream.Close())

	_, ok := <-stream.Comments()
	assert.False(t, ok)
	assert.Equal(t, 0, hub.SubscriberCount())
	assert.Equal(t, 0, hub.RoomCount())

	// Publishing to an empty room is harmless.
	require.NoError(t, hub.Publish(&domain.Comment{ID: 1, EventID: eventID}))
}

func TestHub_SlowSubscriberIsClosed(t *testing.T) {
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	eventID := uuid.New()

	stream, err := hub.Subscribe(context.Background(), eventID)
	require.NoError(t, err)

	// Dispatch directly so the test controls the pace.
	for i := 0; i <= subscriberBuffer; i++ {
		hub.dispatch(&domain.Comment{ID: int64(i), EventID: eventID})
	}

	assert.Equal(t, 0, hub.SubscribersOf(eventID))

	drained := 0
	for range stream.Comments() {
		drained++
	}
	assert.Equal(t, subscriberBuffer, drained)
}

func TestHub_StopClosesSubscriptions(t *testing.T) {
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	stream, err := hub.Subscribe(context.Background(), uuid.New())
	require.NoError(t, err)

	cancel()
	<-done

	_, ok := <-stream.Comments()
	assert.False(t, ok)

	_, err = hub.Subscribe(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrHubClosed)
}

func TestHub_PublishConcurrentWithSubscribeAndClose(t *testing.T) {
	hub := newTestHub(t)
	eventID := uuid.New()

	reader, err := hub.Subscribe(context.Background(), eventID)
	require.NoError(t, err)

	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for range reader.Comments() {
		}
	}()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 5000; i++ {
			_ = hub.Publish(&domain.Comment{ID: int64(i), EventID: eventID})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 2000; i++ {
			stream, err := hub.Subscribe(context.Background(), eventID)
			if !assert.NoError(t, err) {
				return
			}
			assert.NoError(t, stream.Close())
		}
	}()
	wg.Wait()

	require.NoError(t, reader.Close())
	<-drained
	assert.Equal(t, 0, hub.SubscribersOf(eventID))
}
