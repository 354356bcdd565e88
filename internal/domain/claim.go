package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ClaimState is the lifecycle state of a RedemptionClaim.
type ClaimState string

// Claim states. Claimed is terminal.
const (
	ClaimStatePending ClaimState = "pending_claim"
	ClaimStateClaimed ClaimState = "claimed"
)

// Validation errors for RedemptionClaim
var (
	ErrEmptyClaimID       = errors.New("claim ID cannot be empty")
	ErrEmptyClaimUserID   = errors.New("claim user ID cannot be empty")
	ErrEmptyClaimRewardID = errors.New("claim reward ID cannot be empty")
	ErrInvalidClaimCost   = errors.New("claim cost must be positive")
)

// RedemptionClaim is the claimable result of a redemption. It is created in the
// same transaction as its redeem ledger entry.
type RedemptionClaim struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	RewardID  string     `json:"reward_id"`
	Cost      int64      `json:"cost"`
	State     ClaimState `json:"state"`
	CreatedAt time.Time  `json:"created_at"`
	ClaimedAt *time.Time `json:"claimed_at,omitempty"`
}

// NewRedemptionClaim creates a claim in the pending state.
func NewRedemptionClaim(userID uuid.UUID, rewardID string, cost int64, now time.Time) (*RedemptionClaim, error) {
	c := &RedemptionClaim{
		ID:        uuid.New(),
		UserID:    userID,
		RewardID:  rewardID,
		Cost:      cost,
		State:     ClaimStatePending,
		CreatedAt: now.UTC(),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks if the claim has valid data.
func (c *RedemptionClaim) Validate() error {
	if c.ID == uuid.Nil {
		return ErrEmptyClaimID
	}
	if c.UserID == uuid.Nil {
		return ErrEmptyClaimUserID
	}
	if c.RewardID == "" {
		return ErrEmptyClaimRewardID
	}
	if c.Cost <= 0 {
		return ErrInvalidClaimCost
	}
	switch c.State {
	case ClaimStatePending, ClaimStateClaimed:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidClaimState, c.State)
	}
	return nil
}

// MarkClaimed returns a copy of the claim in the claimed state.
// It fails with ErrInvalidClaimState if the claim is not pending.
func (c *RedemptionClaim) MarkClaimed(now time.Time) (*RedemptionClaim, error) {
	if c.State != ClaimStatePending {
		return nil, fmt.Errorf("%w: cannot claim from %q", ErrInvalidClaimState, c.State)
	}
	out := *c
	at := now.UTC()
	out.State = ClaimStateClaimed
	out.ClaimedAt = &at
	return &out, nil
}
