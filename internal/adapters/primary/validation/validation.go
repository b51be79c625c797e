package validation

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	apperrors "github.com/lorrc/event-board/internal/core/errors"
)

// maxBodyBytes bounds request bodies; comments are the largest payload.
const maxBodyBytes = 64 << 10

// amountRegex accepts plain decimal amounts such as "25" or "25.50".
var amountRegex = regexp.MustCompile(`^[0-9]+(\.[0-9]{1,2})?$`)

// Validator validates request data
type Validator struct {
	errors *apperrors.ValidationErrors
}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{
		errors: apperrors.NewValidationErrors(),
	}
}

// HasErrors returns true if there are validation errors
func (v *Validator) HasErrors() bool {
	return v.errors.HasErrors()
}

// Errors returns the validation errors
func (v *Validator) Errors() *apperrors.ValidationErrors {
	return v.errors
}

// Required validates that a string is not blank
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.errors.Add(field, "This field is required")
	}
	return v
}

// MaxLength validates maximum string length in bytes
func (v *Validator) MaxLength(field, value string, max int) *Validator {
	if len(value) > max {
		v.errors.Add(field, "Must be at most "+strconv.Itoa(max)+" characters")
	}
	return v
}

// Amount validates a decimal money amount
func (v *Validator) Amount(field, value string) *Validator {
	return v.Matches(field, strings.TrimSpace(value), amountRegex, "Must be a decimal amount")
}

// Matches validates value matches a regex pattern
func (v *Validator) Matches(field, value string, pattern *regexp.Regexp, message string) *Validator {
	if value != "" && !pattern.MatchString(value) {
		v.errors.Add(field, message)
	}
	return v
}

// Custom adds a custom validation
func (v *Validator) Custom(field string, valid bool, message string) *Validator {
	if !valid {
		v.errors.Add(field, message)
	}
	return v
}

// DecodeAndValidate decodes a JSON request body of bounded size
func DecodeAndValidate[T any](w http.ResponseWriter, r *http.Request) (*T, error) {
	var req T

	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return nil, apperrors.NewBadRequestError(err, "Request body too large")
		case errors.Is(err, io.EOF):
			return nil, apperrors.NewBadRequestError(err, "Request body is required")
		default:
			return nil, apperrors.NewBadRequestError(err, "Invalid request body")
		}
	}

	return &req, nil
}
