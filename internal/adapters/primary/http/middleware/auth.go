package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/lorrc/event-board/internal/core/domain"
	apperrors "github.com/lorrc/event-board/internal/core/errors"
	"github.com/lorrc/event-board/internal/core/ports"
	"github.com/lorrc/event-board/internal/infrastructure/logging"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// CurrentUserKey is the key used to store the signed-in user in the request context.
const CurrentUserKey contextKey = "currentUser"

// CurrentUser resolves the bearer token, if any, into a user stored in the
// request context. Requests without a valid token pass through anonymously.
func CurrentUser(sessions ports.SessionService, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := sessions.GetCurrentUser(r.Context(), token)
			if err != nil {
				logging.LoggerFromContext(r.Context(), logger).Debug("ignoring invalid bearer token", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), CurrentUserKey, user)
			ctx = logging.WithUserID(ctx, user.ID.String())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser rejects requests without a signed-in user. Clients treat the
// SIGN_IN_REQUIRED code as a redirect to the sign-in page.
func RequireUser(handleError ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := UserFromContext(r.Context()); !ok {
				reject(w, r, handleError, apperrors.NewSignInRequiredError())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserFromContext returns the signed-in user, if any.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(CurrentUserKey).(*domain.User)
	return user, ok && user != nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
