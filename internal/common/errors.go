// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Storage errors.
	ErrNotFound          = errors.New("not found")
	ErrDatabaseCorrupted = errors.New("database corrupted")

	// Dataset errors.
	ErrExtractMissing   = errors.New("purchase extract not found")
	ErrNoSuppliers      = errors.New("no suppliers selected")
	ErrUnknownExtension = errors.New("unsupported extract format")

	// Classifier errors.
	ErrModelNotTrained = errors.New("model or scaler artifact missing, train first")
	ErrCohortTooSmall  = errors.New("supplier cohort too small to train")
	ErrModelCorrupted  = errors.New("model artifact failed to deserialize")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the operator.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}
