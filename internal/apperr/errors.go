// Package apperr defines the error kinds returned by the task manager core.
// None of them is fatal to the process; callers switch on them with errors.As.
package apperr

import (
	"errors"
	"fmt"
)

// ValidationError is rejected user input. No state was changed.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Invalid builds a ValidationError for field.
func Invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// AuthError is a failed credential or session check. The message never says
// which part of the credentials was wrong.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

var (
	ErrInvalidCredentials = &AuthError{Message: "Invalid username or password"}
	ErrSessionInactive    = &AuthError{Message: "Session is no longer active"}
	ErrSessionExpired     = &AuthError{Message: "Session expired"}
	ErrInvalidSession     = &AuthError{Message: "Invalid session token"}
)

// ErrNoActiveUser signals that nobody is logged in.
var ErrNoActiveUser = errors.New("no active user")

// NotFoundError is a lookup that matched nothing visible to the caller.
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.Key)
}

// NotFound builds a NotFoundError; key is formatted with %v.
func NotFound(entity string, key any) *NotFoundError {
	return &NotFoundError{Entity: entity, Key: fmt.Sprint(key)}
}

// StorageError wraps a failure of the persistence layer.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Storage wraps err as a StorageError unless it already carries one of the
// kinds defined here.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsTyped(err) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// IsTyped reports whether err is, or wraps, one of this package's kinds.
func IsTyped(err error) bool {
	var (
		validationErr *ValidationError
		authErr       *AuthError
		notFoundErr   *NotFoundError
		storageErr    *StorageError
	)
	return errors.As(err, &validationErr) ||
		errors.As(err, &authErr) ||
		errors.As(err, &notFoundErr) ||
		errors.As(err, &storageErr) ||
		errors.Is(err, ErrNoActiveUser)
}

// IsNotFound reports whether err is, or wraps, a NotFoundError.
func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr)
}

// IsAuth reports whether err is, or wraps, an AuthError.
func IsAuth(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}
