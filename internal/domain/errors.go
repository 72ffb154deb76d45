package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("user is not active")
	ErrContactTaken       = errors.New("contact already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")

	ErrCannotTargetSelf     = errors.New("cannot target yourself")
	ErrRequestNotFound      = errors.New("connection request not found")
	ErrRequestNotPending    = errors.New("connection request is not pending")
	ErrRequestAlreadyExists = errors.New("a pending connection request already exists between these users")
	ErrAlreadyConnected     = errors.New("users are already connected")
	ErrConnectionClosed     = errors.New("connection between these users was closed")
	ErrNotConnected         = errors.New("users are not connected")
)

// ValidationError reports a malformed input value. It is raised before any
// store access.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func NewValidationError(field, value, reason string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}

// StoreError wraps a storage failure with the operation that hit it.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func NewStoreError(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}
