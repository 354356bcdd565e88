// Package postgres implements the internal/store interfaces on PostgreSQL
// through the pgx database/sql driver. Every store accepts a store.DBTX so it
// can run against a pool or, through WithTx, inside a caller's transaction.
package postgres
