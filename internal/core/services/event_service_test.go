package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/lorrc/event-board/internal/core/domain"
	apperrors "github.com/lorrc/event-board/internal/core/errors"
	"github.com/lorrc/event-board/internal/core/mocks"
	"github.com/lorrc/event-board/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestEventService_GetEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		mockRepo := mocks.NewMockEventRepository()
		svc := services.NewEventService(mockRepo)

		event := &domain.Event{ID: uuid.New(), Title: "Meetup"}
		mockRepo.On("GetByID", ctx, event.ID).Return(event, nil)

		got, err := svc.GetEvent(ctx, event.ID)

		require.NoError(t, err)
		assert.Equal(t, event, got)
	})

	t.Run("not found", func(t *testing.T) {
		mockRepo := mocks.NewMockEventRepository()
		svc := services.NewEventService(mockRepo)

		id := uuid.New()
		mockRepo.On("GetByID", ctx, id).Return(nil, apperrors.ErrEventNotFound)

		got, err := svc.GetEvent(ctx, id)

		assert.Nil(t, got)
		assert.ErrorIs(t, err, apperrors.ErrEventNotFound)
	})

	t.Run("nil id", func(t *testing.T) {
		mockRepo := mocks.NewMockEventRepository()
		svc := services.NewEventService(mockRepo)

		_, err := svc.GetEvent(ctx, uuid.Nil)

		assert.ErrorIs(t, err, apperrors.ErrEventIDRequired)
		mockRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})
}

func TestEventService_CheckPayment(t *testing.T) {
	ctx := context.Background()
	mockRepo := mocks.NewMockEventRepository()
	svc := services.NewEventService(mockRepo)

	paid := &domain.Event{ID: uuid.New(), IsPaid: true, Price: 25}
	free := &domain.Event{ID: uuid.New()}
	mockRepo.On("GetByID", ctx, paid.ID).Return(paid, nil)
	mockRepo.On("GetByID", ctx, free.ID).Return(free, nil)

	ok, err := svc.CheckPayment(ctx, paid.ID, " 25 ")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.CheckPayment(ctx, paid.ID, "24.99")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.CheckPayment(ctx, free.ID, "0")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEventService_ListEvents(t *testing.T) {
	ctx := context.Background()
	mockRepo := mocks.NewMockEventRepository()
	svc := services.NewEventService(mockRepo)

	want := []*domain.Event{{ID: uuid.New()}, {ID: uuid.New()}}
	mockRepo.On("List", ctx).Return(want, nil)

	got, err := svc.ListEvents(ctx)

	require.NoError(t, err)
	assert.Equal(t, want, got)
}
