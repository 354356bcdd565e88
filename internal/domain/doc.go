// Package domain holds the entities of the rewards engine: catalog
// challenges and rewards, onboarding answers, active habits, ledger entries,
// redemption claims and badges. Types validate themselves; persistence and
// HTTP concerns live elsewhere.
package domain
