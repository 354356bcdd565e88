// Package testutils provides helpers shared by the package tests: throwaway
// databases for each store backend, a capturing slog handler and JWT fixtures.
package testutils
