// Package sqlite implements the internal/store interfaces on SQLite.
//
// It is used for single-node deployments and as the in-memory backend of the
// service tests. Timestamps are stored as fixed-width UTC text so that they
// sort lexically.
package sqlite
