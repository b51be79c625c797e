package services

import (
	"context"
	"fmt"

	"github.com/lorrc/event-board/internal/auth"
	"github.com/lorrc/event-board/internal/core/domain"
	apperrors "github.com/lorrc/event-board/internal/core/errors"
	"github.com/lorrc/event-board/internal/core/ports"
)

// SessionService resolves the current user from provider-issued tokens.
type SessionService struct {
	tokens *auth.TokenManager
}

var _ ports.SessionService = (*SessionService)(nil)

// NewSessionService creates a new session service.
func NewSessionService(tokens *auth.TokenManager) ports.SessionService {
	return &SessionService{tokens: tokens}
}

// GetCurrentUser returns the user behind token, or ErrUnauthenticated.
func (s *SessionService) GetCurrentUser(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, apperrors.ErrUnauthenticated
	}

	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUnauthenticated, err)
	}

	return &domain.User{
		ID:    claims.UserID,
		Email: claims.Email,
		Role:  claims.Role,
	}, nil
}
