package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

// WalletStore defines the interface for the cached wallet balance projection.
type WalletStore interface {
	// Balance returns the cached balance. A user without an account has balance 0.
	Balance(ctx context.Context, userID uuid.UUID) (int64, error)

	// Credit adds amount to the balance, creating the account on first use,
	// and returns the new balance.
	Credit(ctx context.Context, userID uuid.UUID, amount int64) (int64, error)

	// Debit subtracts amount in a single conditional statement that only
	// matches when the balance covers it, and returns the new balance.
	// Returns ErrInsufficientFunds when the balance is too low or no account exists.
	Debit(ctx context.Context, userID uuid.UUID, amount int64) (int64, error)

	// WithTx returns a WalletStore bound to the given transaction.
	WithTx(tx *sql.Tx) WalletStore
}
