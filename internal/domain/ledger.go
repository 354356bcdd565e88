package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EntryKind distinguishes point movements in the ledger.
type EntryKind string

// Ledger entry kinds
const (
	EntryKindEarn   EntryKind = "earn"
	EntryKindRedeem EntryKind = "redeem"
)

// Validation errors for LedgerEntry
var (
	ErrEmptyEntryID     = errors.New("ledger entry ID cannot be empty")
	ErrEmptyEntryUserID = errors.New("ledger entry user ID cannot be empty")
	ErrInvalidEntryKind = errors.New("invalid ledger entry kind")
)

// LedgerEntry is an immutable, signed point movement. Entries are append-only
// and the only source of truth for a wallet balance.
type LedgerEntry struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Kind        EntryKind  `json:"kind"`
	Amount      int64      `json:"amount"`
	Description string     `json:"description"`
	ChallengeID string     `json:"challenge_id,omitempty"`
	ClaimID     *uuid.UUID `json:"claim_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewEarnEntry creates an earn entry. points must be positive.
func NewEarnEntry(userID uuid.UUID, points int64, description, challengeID string, now time.Time) (*LedgerEntry, error) {
	e := &LedgerEntry{
		ID:          uuid.New(),
		UserID:      userID,
		Kind:        EntryKindEarn,
		Amount:      points,
		Description: description,
		ChallengeID: challengeID,
		CreatedAt:   now.UTC(),
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// NewRedeemEntry creates a redeem entry for cost points. The stored amount is -cost.
func NewRedeemEntry(userID uuid.UUID, cost int64, description string, claimID uuid.UUID, now time.Time) (*LedgerEntry, error) {
	e := &LedgerEntry{
		ID:          uuid.New(),
		UserID:      userID,
		Kind:        EntryKindRedeem,
		Amount:      -cost,
		Description: description,
		ClaimID:     &claimID,
		CreatedAt:   now.UTC(),
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Validate enforces the sign convention: earn is positive, redeem is negative.
func (e *LedgerEntry) Validate() error {
	if e.ID == uuid.Nil {
		return ErrEmptyEntryID
	}
	if e.UserID == uuid.Nil {
		return ErrEmptyEntryUserID
	}
	switch e.Kind {
	case EntryKindEarn:
		if e.Amount <= 0 {
			return fmt.Errorf("%w: earn amount must be positive, got %d", ErrInvalidAmount, e.Amount)
		}
	case EntryKindRedeem:
		if e.Amount >= 0 {
			return fmt.Errorf("%w: redeem amount must be negative, got %d", ErrInvalidAmount, e.Amount)
		}
	default:
		return ErrInvalidEntryKind
	}
	return nil
}

// LedgerTotals aggregates a user's ledger.
type LedgerTotals struct {
	Sum            int64 `json:"sum"`
	EarnCount      int64 `json:"earn_count"`
	PointsEarned   int64 `json:"points_earned"`
	PointsRedeemed int64 `json:"points_redeemed"`
}
