// Package store defines the persistence contracts of the rewards engine.
//
// Every store is bound either to a *sql.DB or, through WithTx, to a *sql.Tx so
// that multi-store operations (credit a wallet and append its ledger entry,
// debit a wallet and create a claim) commit or roll back together. Concrete
// implementations live in internal/platform/postgres and internal/platform/sqlite;
// both satisfy the shared contract tests in internal/store/storetest.
package store
