package middleware

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/lorrc/event-board/internal/core/errors"
)

// ErrorWriter renders err as an HTTP error response. The router passes the
// centralized ErrorHandler here so middleware rejections share its format.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

func reject(w http.ResponseWriter, r *http.Request, handle ErrorWriter, appErr *apperrors.AppError) {
	if handle != nil {
		handle(w, r, appErr)
		return
	}
	writeAppError(w, appErr)
}

// writeAppError is used where no ErrorWriter is configured.
func writeAppError(w http.ResponseWriter, appErr *apperrors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": appErr.Message,
		"code":  appErr.Code,
	})
}
