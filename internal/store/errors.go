package store

import (
	"errors"
	"fmt"
)

// Sentinel categories. Every entity-specific error below wraps one of them,
// so callers can test the category with errors.Is.
var (
	ErrNotFound          = errors.New("entity not found")
	ErrDuplicate         = errors.New("entity already exists")
	ErrInvalidEntity     = errors.New("invalid entity")
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrUpdateFailed means a conditional update matched no row.
	ErrUpdateFailed = errors.New("update failed")
)

var (
	ErrHabitNotFound     = fmt.Errorf("%w: active habit", ErrNotFound)
	ErrClaimNotFound     = fmt.Errorf("%w: redemption claim", ErrNotFound) // also for another user's claim
	ErrAnswerSetNotFound = fmt.Errorf("%w: onboarding answers", ErrNotFound)
	ErrChallengeNotFound = fmt.Errorf("%w: challenge", ErrNotFound)
	ErrRewardNotFound    = fmt.Errorf("%w: reward", ErrNotFound)

	ErrHabitExists = fmt.Errorf("%w: active habit", ErrDuplicate)

	ErrStaleHabit        = fmt.Errorf("%w: habit version is stale", ErrUpdateFailed)
	ErrInsufficientFunds = fmt.Errorf("%w: insufficient funds", ErrUpdateFailed)
	ErrClaimNotPending   = fmt.Errorf("%w: claim is not pending", ErrUpdateFailed)
)

// IsNotFoundError reports whether err wraps ErrNotFound.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError reports whether err wraps ErrDuplicate.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// StoreError records which entity and operation failed around the
// underlying error.
type StoreError struct {
	Entity    string // "habit", "ledger_entry", ...
	Operation string // "create", "update", ...
	Message   string
	Err       error
}

func (e *StoreError) Error() string {
	msg := fmt.Sprintf("%s %s: %s", e.Entity, e.Operation, e.Message)
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError wraps err with entity and operation context.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{Entity: entity, Operation: operation, Message: message, Err: err}
}
