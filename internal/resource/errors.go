package resource

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ErrNotFound is returned when no record exists at the requested key.
var ErrNotFound = errors.New("record not found")

// ErrMethodNotAllowed is returned when an operation is excluded by the
// resource's methods list.
var ErrMethodNotAllowed = errors.New("method not allowed")

// ValidationError carries field-level details about a rejected payload.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ForbiddenFieldError rejects an update that touches a field outside the
// update allow-list. The whole request is aborted.
type ForbiddenFieldError struct {
	Field string
}

func (e *ForbiddenFieldError) Error() string {
	return fmt.Sprintf("field %q is not allowed to update", e.Field)
}

// HTTPStatus maps an operation error onto its response status code.
func HTTPStatus(err error) int {
	var ve *ValidationError
	var fe *ForbiddenFieldError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &ve), errors.As(err, &fe):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
