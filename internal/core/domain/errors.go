package domain

import (
	"errors"
	"strings"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrTenderNotFound     = errors.New("tender not found")
	ErrSessionNotFound    = errors.New("session not found")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrTenderNumberTaken  = errors.New("tender number already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrForbidden          = errors.New("admin access required")
	ErrSelfDelete         = errors.New("cannot delete your own account")
)

// FieldError describes one offending field of a request payload.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when a payload fails schema validation. It
// carries one entry per offending field.
type ValidationError struct {
	Fields []FieldError
}

func NewValidationError(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return "validation error: " + strings.Join(msgs, "; ")
}
