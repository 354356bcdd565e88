package sqlite

import (
	"log/slog"

	"github.com/phrazzld/ecorewards-api/internal/store"
)

// NewStores returns every SQLite store bound to db.
func NewStores(db store.DBTX, logger *slog.Logger) store.Stores {
	return store.Stores{
		Habits:     NewHabitStore(db, logger),
		Ledger:     NewLedgerStore(db, logger),
		Wallets:    NewWalletStore(db, logger),
		Claims:     NewClaimStore(db, logger),
		Onboarding: NewOnboardingStore(db, logger),
		Badges:     NewBadgeStore(db, logger),
	}
}
