package transport

import (
	"net/http"
	"regexp"
	"strings"

	"storefront-be/internal/metrics"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// validator accumulates field errors so a response can name every problem at
// once instead of failing on the first.
type validator struct {
	errs []FieldError
}

func (v *validator) require(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.errs = append(v.errs, FieldError{Field: field, Message: field + " is required"})
	}
}

func (v *validator) check(ok bool, field, message string) {
	if !ok {
		v.errs = append(v.errs, FieldError{Field: field, Message: message})
	}
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func (v *validator) email(field, value string) {
	if !emailPattern.MatchString(value) {
		v.errs = append(v.errs, FieldError{Field: field, Message: "invalid email address"})
	}
}

func (v *validator) ok() bool {
	return len(v.errs) == 0
}

func respondValidation(w http.ResponseWriter, errs []FieldError) {
	metrics.HTTP.Errors.Inc()
	writeJSON(w, http.StatusBadRequest, envelope{
		"message": "Validation failed",
		"errors":  errs,
	})
}
