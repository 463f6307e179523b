package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound is returned when an entity is absent, or deliberately
// hidden from the caller for ownership reasons.
var ErrNotFound = errors.New("not found")

// ValidationError carries field-scoped messages for bad input.
// Non-field messages use the "detail" key.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
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
	return strings.Join(parts, "; ")
}

// QuotaExceededError denies a resource creation because the owner's
// limit is already reached.
type QuotaExceededError struct {
	Limit int64
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("resource quota exceeded; current limit is %d", e.Limit)
}
