package validation

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/lorrc/event-board/internal/core/errors"
)

func TestValidator(t *testing.T) {
	v := NewValidator()
	v.Required("content", "   ").
		MaxLength("title", "abcdef", 3).
		Amount("amount", "12.345").
		Amount("price", " 25.50 ").
		Custom("flag", true, "never")

	require.True(t, v.HasErrors())
	errs := v.Errors().Errors
	assert.Contains(t, errs, "content")
	assert.Contains(t, errs, "title")
	assert.Contains(t, errs, "amount")
	assert.NotContains(t, errs, "price")
	assert.NotContains(t, errs, "flag")
}

func TestDecodeAndValidate(t *testing.T) {
	type payload struct {
		Content string `json:"content"`
	}

	t.Run("valid", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"content":" hi "}`))
		got, err := DecodeAndValidate[payload](httptest.NewRecorder(), r)
		require.NoError(t, err)
		assert.Equal(t, " hi ", got.Content)
	})

	t.Run("malformed", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"content":`))
		_, err := DecodeAndValidate[payload](httptest.NewRecorder(), r)

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, http.StatusBadRequest, appErr.StatusCode)
	})

	t.Run("too large", func(t *testing.T) {
		big := `{"content":"` + strings.Repeat("a", maxBodyBytes) + `"}`
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(big))
		_, err := DecodeAndValidate[payload](httptest.NewRecorder(), r)

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "Request body too large", appErr.Message)
	})
}
