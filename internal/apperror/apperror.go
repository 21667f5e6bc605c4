// Package apperror defines the error taxonomy shared by the identity
// service and the HTTP layer. Controllers translate these into responses
// exactly once; nothing else inspects error strings.
package apperror

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an application error.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindAuthentication
	KindForbidden
	KindNotFound
)

// FieldError is a single validation violation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error carries a kind, a client-safe message, and for validation
// failures the full list of field violations.
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
}

func (e *Error) Error() string {
	if e.Kind == KindValidation && len(e.Fields) > 0 {
		msgs := make([]string, len(e.Fields))
		for i, f := range e.Fields {
			msgs[i] = fmt.Sprintf("%s: %s", f.Field, f.Message)
		}
		return "validation failed: " + strings.Join(msgs, "; ")
	}
	return e.Message
}

// Validation builds a validation error from one or more field violations.
func Validation(fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Message: "validation failed", Fields: fields}
}

// Conflict reports a uniqueness or state violation.
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// Authentication reports a failed or missing credential. The message is
// deliberately uninformative about which credential was wrong.
func Authentication(message string) *Error {
	return &Error{Kind: KindAuthentication, Message: message}
}

// Forbidden reports an authenticated but unentitled request.
func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// NotFound reports a missing, or intentionally undisclosed, entity.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Internal wraps an unexpected failure. The message is for logs; the
// HTTP layer replaces it with a generic one.
func Internal(message string) *Error {
	return &Error{Kind: KindInternal, Message: message}
}

// KindOf returns the kind of err, or KindInternal for untyped errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
