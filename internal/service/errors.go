package service

import (
	"errors"
	"fmt"
)

// Common service errors - sentinel errors used across service implementations.
// The API layer maps them to HTTP status codes.
var (
	// ErrNotFound is the base of every "not found" condition.
	ErrNotFound = errors.New("not found")

	// ErrChallengeNotFound indicates the catalog has no such challenge.
	ErrChallengeNotFound = fmt.Errorf("%w: challenge", ErrNotFound)

	// ErrRewardNotFound indicates the catalog has no such reward.
	ErrRewardNotFound = fmt.Errorf("%w: reward", ErrNotFound)

	// ErrClaimNotFound indicates the claim does not exist or belongs to another user.
	ErrClaimNotFound = fmt.Errorf("%w: claim", ErrNotFound)

	// ErrHabitNotActive indicates the user has not started the challenge.
	ErrHabitNotActive = fmt.Errorf("%w: challenge is not active", ErrNotFound)

	// ErrInvalidAmount indicates a non-positive ledger amount.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInvalidAnswers indicates an unknown question id or an out-of-range response.
	ErrInvalidAnswers = errors.New("invalid onboarding answers")

	// ErrInsufficientBalance indicates a debit larger than the current balance.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrAlreadyClaimed indicates the claim was already claimed.
	ErrAlreadyClaimed = errors.New("reward already claimed")

	// ErrBusy indicates the user's lock could not be acquired in time.
	// The operation did not run and may be retried.
	ErrBusy = errors.New("user state is busy")

	// ErrConflict indicates a concurrent change won a race for the same entity.
	ErrConflict = errors.New("conflicting concurrent update")

	// ErrLedgerCorrupted indicates the cached balance no longer equals the sum
	// of the ledger. It is never expected and is always alerted on.
	ErrLedgerCorrupted = errors.New("ledger invariant violated")
)

// ServiceError wraps unexpected failures with the operation that hit them.
type ServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// InvariantViolation describes a cached balance that disagrees with the ledger.
type InvariantViolation struct {
	CachedBalance int64  `json:"cached_balance"`
	LedgerSum     int64  `json:"ledger_sum"`
	Operation     string `json:"operation"`
}

// Error implements the error interface for InvariantViolation.
func (v *InvariantViolation) Error() string {
	return fmt.Sprintf("%s: cached balance %d != ledger sum %d during %s",
		ErrLedgerCorrupted, v.CachedBalance, v.LedgerSum, v.Operation)
}

// Is reports that every violation matches ErrLedgerCorrupted.
func (v *InvariantViolation) Is(target error) bool {
	return target == ErrLedgerCorrupted
}

// isSentinel reports whether err already carries one of the service sentinels,
// in which case it is returned to the caller unwrapped.
func isSentinel(err error) bool {
	for _, s := range []error{
		ErrNotFound, ErrInvalidAmount, ErrInvalidAnswers, ErrInsufficientBalance,
		ErrAlreadyClaimed, ErrBusy, ErrConflict, ErrLedgerCorrupted,
	} {
		if errors.Is(err, s) {
			return true
		}
	}
	return false
}
