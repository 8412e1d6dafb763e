package core

import (
	"fmt"

	"github.com/pkg/errors"
)

// FieldError is used to indicate an error with a specific field of a payload.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"message"`
}

// ValidationError reports malformed, missing or semantically invalid input.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) > 0 {
			return fmt.Sprintf("%s: %s", err.Fields[0].Field, err.Fields[0].Error)
		}
		return ""
	}
	return err.Err.Error()
}

// ConflictError reports a violated uniqueness constraint on Field.
type ConflictError struct {
	Field string
	Err   error
}

func NewConflictError(field string, err error) error {
	return &ConflictError{Field: field, Err: err}
}

func (err ConflictError) Error() string {
	if err.Err == nil {
		return "duplicate " + err.Field
	}
	return err.Err.Error()
}

// AuthenticationError is deliberately generic: it never tells which credential was wrong.
type AuthenticationError struct{}

func NewAuthenticationError() error {
	return &AuthenticationError{}
}

func (AuthenticationError) Error() string {
	return "invalid credentials"
}

// PersistenceError reports an unavailable store or a rejected write.
type PersistenceError struct {
	Err error
}

func NewPersistenceError(err error, msg string) error {
	return &PersistenceError{Err: errors.Wrap(err, msg)}
}

func (err PersistenceError) Error() string {
	return err.Err.Error()
}

func (err PersistenceError) Unwrap() error {
	return err.Err
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
