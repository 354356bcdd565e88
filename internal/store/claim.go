package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/ecorewards-api/internal/domain"
)

// ClaimStore defines the interface for redemption claim persistence.
type ClaimStore interface {
	// Create inserts a new claim in the pending state.
	Create(ctx context.Context, claim *domain.RedemptionClaim) error

	// Get returns the claim if it exists and belongs to userID.
	// Returns ErrClaimNotFound otherwise.
	Get(ctx context.Context, userID, claimID uuid.UUID) (*domain.RedemptionClaim, error)

	// MarkClaimed moves a pending claim to claimed. The statement is conditioned
	// on the pending state so that it succeeds at most once.
	// Returns ErrClaimNotPending if no pending claim matched.
	MarkClaimed(ctx context.Context, userID, claimID uuid.UUID, at time.Time) error

	// ListByUser returns the user's claims, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.RedemptionClaim, error)

	// WithTx returns a ClaimStore bound to the given transaction.
	WithTx(tx *sql.Tx) ClaimStore
}
