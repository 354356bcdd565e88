package store

import "database/sql"

// Stores bundles every store of one backend so that services can rebind
// them to a single transaction in one call.
type Stores struct {
	Habits     HabitStore
	Ledger     LedgerStore
	Wallets    WalletStore
	Claims     ClaimStore
	Onboarding OnboardingStore
	Badges     BadgeStore
}

// WithTx returns a copy of s with every store bound to tx.
func (s Stores) WithTx(tx *sql.Tx) Stores {
	return Stores{
		Habits:     s.Habits.WithTx(tx),
		Ledger:     s.Ledger.WithTx(tx),
		Wallets:    s.Wallets.WithTx(tx),
		Claims:     s.Claims.WithTx(tx),
		Onboarding: s.Onboarding.WithTx(tx),
		Badges:     s.Badges.WithTx(tx),
	}
}
