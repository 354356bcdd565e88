// Package service orchestrates the rewards engine: the habit tracker, the
// wallet ledger, onboarding and recommendations, and the profile read model.
//
// Every mutation of a user's state runs under that user's lock and inside a
// single database transaction. Domain events are emitted only after the
// transaction commits. Expected failures are returned as the sentinel errors
// in errors.go; callers check them with errors.Is.
package service
