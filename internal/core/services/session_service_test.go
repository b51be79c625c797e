package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lorrc/event-board/internal/auth"
	apperrors "github.com/lorrc/event-board/internal/core/errors"
	"github.com/lorrc/event-board/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionService_GetCurrentUser(t *testing.T) {
	ctx := context.Background()
	tokens := auth.NewTokenManager("session-secret", time.Hour)
	svc := services.NewSessionService(tokens)

	t.Run("valid token", func(t *testing.T) {
		userID := uuid.New()
		token, err := tokens.GenerateToken(userID, "grace@example.com")
		require.NoError(t, err)

		user, err := svc.GetCurrentUser(ctx, token)

		require.NoError(t, err)
		assert.Equal(t, userID, user.ID)
		assert.Equal(t, "grace@example.com", user.Email)
	})

	t.Run("missing token", func(t *testing.T) {
		user, err := svc.GetCurrentUser(ctx, "")

		assert.Nil(t, user)
		assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	})

	t.Run("garbage token", func(t *testing.T) {
		user, err := svc.GetCurrentUser(ctx, "not.a.jwt")

		assert.Nil(t, user)
		assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	})
}
