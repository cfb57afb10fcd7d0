package service

import (
	"errors"
	"fmt"
)

var (
	// ErrCapacityExhausted is returned when every run slot is taken.
	ErrCapacityExhausted = errors.New("profile generation capacity exhausted, try again later")
	// ErrPersistenceFailed wraps storage failures after a successful run.
	ErrPersistenceFailed = errors.New("failed to save profile")

	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrNoFieldsToUpdate   = errors.New("no fields to update")
)

// ValidationError reports rejected client input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
