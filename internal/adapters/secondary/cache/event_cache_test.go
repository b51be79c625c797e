package cache

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/lorrc/event-board/internal/config"
	"github.com/lorrc/event-board/internal/core/domain"
	apperrors "github.com/lorrc/event-board/internal/core/errors"
	"github.com/lorrc/event-board/internal/core/mocks"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	addr, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := NewRedisClient(ctx, config.RedisConfig{Enabled: true, Addr: addr}, discardLogger())
	require.NotNil(t, client)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func sampleEvent() *domain.Event {
	info := "Bring a laptop"
	return &domain.Event{
		ID:              uuid.New(),
		Title:           "Go meetup",
		Description:     "Talks and pizza",
		StartDate:       time.Date(2026, 11, 1, 18, 0, 0, 0, time.UTC),
		EndDate:         time.Date(2026, 11, 1, 21, 0, 0, 0, time.UTC),
		Location:        "Copenhagen",
		MaxParticipants: 40,
		IsPaid:          true,
		Price:           25,
		AdditionalInfo:  &info,
	}
}

func TestEventCache_ReadThrough(t *testing.T) {
	client := startRedis(t)
	ctx := context.Background()
	event := sampleEvent()

	repo := mocks.NewMockEventRepository()
	repo.On("GetByID", mock.Anything, event.ID).Return(event, nil).Once()

	c := NewEventCache(repo, client, "test", time.Minute, discardLogger())

	first, err := c.GetByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, event.Title, first.Title)

	// Second read is served from Redis; the mock allows only one call.
	second, err := c.GetByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, event.ID, second.ID)
	assert.Equal(t, event.Price, second.Price)
	assert.True(t, event.StartDate.Equal(second.StartDate))
	require.NotNil(t, second.AdditionalInfo)
	assert.Equal(t, *event.AdditionalInfo, *second.AdditionalInfo)

	ttl, err := client.TTL(ctx, "test:event:"+event.ID.String()).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	repo.AssertExpectations(t)
}

func TestEventCache_NotFoundIsNotCached(t *testing.T) {
	client := startRedis(t)
	ctx := context.Background()
	id := uuid.New()

	repo := mocks.NewMockEventRepository()
	repo.On("GetByID", mock.Anything, id).Return(nil, apperrors.ErrEventNotFound).Twice()

	c := NewEventCache(repo, client, "test", time.Minute, discardLogger())

	for i := 0; i < 2; i++ {
		_, err := c.GetByID(ctx, id)
		assert.ErrorIs(t, err, apperrors.ErrEventNotFound)
	}

	exists, err := client.Exists(ctx, "test:event:"+id.String()).Result()
	require.NoError(t, err)
	assert.Zero(t, exists)
	repo.AssertExpectations(t)
}

func TestEventCache_DegradesWhenRedisIsDown(t *testing.T) {
	event := sampleEvent()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	repo := mocks.NewMockEventRepository()
	repo.On("GetByID", mock.Anything, event.ID).Return(event, nil)

	c := NewEventCache(repo, client, "test", time.Minute, discardLogger())

	got, err := c.GetByID(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, event, got)
}

func TestEventCache_NilClientPassesThrough(t *testing.T) {
	event := sampleEvent()
	repo := mocks.NewMockEventRepository()
	repo.On("GetByID", mock.Anything, event.ID).Return(event, nil).Twice()
	repo.On("List", mock.Anything).Return([]*domain.Event{event}, nil)

	c := NewEventCache(repo, nil, "test", time.Minute, discardLogger())

	for i := 0; i < 2; i++ {
		_, err := c.GetByID(context.Background(), event.ID)
		require.NoError(t, err)
	}
	events, err := c.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, events, 1)
	repo.AssertExpectations(t)
}

func TestNewRedisClient_Disabled(t *testing.T) {
	assert.Nil(t, NewRedisClient(context.Background(), config.RedisConfig{Enabled: false}, discardLogger()))
}
