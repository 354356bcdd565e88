package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/ecorewards-api/internal/domain"
)

// LedgerStore defines the interface for the append-only ledger.
// There are deliberately no update or delete operations.
type LedgerStore interface {
	// Append writes a new entry. Entries must be valid per domain.LedgerEntry.Validate.
	//
	// Append MUST run in the same transaction as the matching WalletStore
	// balance change so that the cached balance never drifts from the entries:
	//   err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
	//       if err := ledger.WithTx(tx).Append(ctx, entry); err != nil {
	//           return err
	//       }
	//       _, err := wallets.WithTx(tx).Credit(ctx, entry.UserID, entry.Amount)
	//       return err
	//   })
	Append(ctx context.Context, entry *domain.LedgerEntry) error

	// ListByUser returns the user's entries, newest first. A limit <= 0 returns all.
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.LedgerEntry, error)

	// Totals aggregates the user's entries. A user with no entries has zero totals.
	Totals(ctx context.Context, userID uuid.UUID) (domain.LedgerTotals, error)

	// WithTx returns a LedgerStore bound to the given transaction.
	WithTx(tx *sql.Tx) LedgerStore
}
