package postgres

import (
	"log/slog"

	"github.com/phrazzld/ecorewards-api/internal/store"
)

// NewStores returns every PostgreSQL store bound to db.
func NewStores(db store.DBTX, logger *slog.Logger) store.Stores {
	return store.Stores{
		Habits:     NewPostgresHabitStore(db, logger),
		Ledger:     NewPostgresLedgerStore(db, logger),
		Wallets:    NewPostgresWalletStore(db, logger),
		Claims:     NewPostgresClaimStore(db, logger),
		Onboarding: NewPostgresOnboardingStore(db, logger),
		Badges:     NewPostgresBadgeStore(db, logger),
	}
}
