package store_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/phrazzld/ecorewards-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestEntityErrorsWrapBaseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		base error
	}{
		{"habit not found", store.ErrHabitNotFound, store.ErrNotFound},
		{"claim not found", store.ErrClaimNotFound, store.ErrNotFound},
		{"answer set not found", store.ErrAnswerSetNotFound, store.ErrNotFound},
		{"challenge not found", store.ErrChallengeNotFound, store.ErrNotFound},
		{"reward not found", store.ErrRewardNotFound, store.ErrNotFound},
		{"habit exists", store.ErrHabitExists, store.ErrDuplicate},
		{"stale habit", store.ErrStaleHabit, store.ErrUpdateFailed},
		{"insufficient funds", store.ErrInsufficientFunds, store.ErrUpdateFailed},
		{"claim not pending", store.ErrClaimNotPending, store.ErrUpdateFailed},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.ErrorIs(t, tc.err, tc.base)
			assert.ErrorIs(t, fmt.Errorf("context: %w", tc.err), tc.err)
		})
	}
}

func TestIsNotFoundAndDuplicate(t *testing.T) {
	t.Parallel()

	assert.True(t, store.IsNotFoundError(store.ErrClaimNotFound))
	assert.True(t, store.IsNotFoundError(fmt.Errorf("get: %w", store.ErrHabitNotFound)))
	assert.False(t, store.IsNotFoundError(store.ErrHabitExists))
	assert.False(t, store.IsNotFoundError(nil))

	assert.True(t, store.IsDuplicateError(store.ErrHabitExists))
	assert.False(t, store.IsDuplicateError(store.ErrStaleHabit))
}

func TestStoreError(t *testing.T) {
	t.Parallel()

	cause := errors.New("disk full")
	err := store.NewStoreError("ledger_entry", "append", "insert failed", cause)
	assert.Equal(t, "ledger_entry append: insert failed: disk full", err.Error())
	assert.ErrorIs(t, err, cause)

	var se *store.StoreError
	assert.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &se))
	assert.Equal(t, "ledger_entry", se.Entity)

	bare := store.NewStoreError("wallet", "debit", "no rows", nil)
	assert.Equal(t, "wallet debit: no rows", bare.Error())
	assert.Nil(t, bare.Unwrap())
}
