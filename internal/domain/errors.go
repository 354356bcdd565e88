// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidAmount is returned when a ledger amount is zero or has the wrong sign
	// for its entry kind.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidResponse is returned when an onboarding response is outside {-1, 0, 1}.
	ErrInvalidResponse = errors.New("invalid onboarding response")

	// ErrInvalidRecurrence is returned when a challenge recurrence is not daily, weekly or monthly.
	ErrInvalidRecurrence = errors.New("invalid recurrence")

	// ErrInvalidClaimState is returned when a redemption claim has an unknown state
	// or attempts an illegal transition.
	ErrInvalidClaimState = errors.New("invalid claim state")
)

// ValidationError names the field that failed validation. It unwraps to the
// sentinel it was created with.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a ValidationError. err is usually ErrValidation or ErrInvalidID.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: message, Err: err}
}
