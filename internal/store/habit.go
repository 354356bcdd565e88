package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/ecorewards-api/internal/domain"
)

// HabitStore defines the interface for active habit persistence.
type HabitStore interface {
	// Create inserts a new active habit.
	// Returns ErrHabitExists if the user already has a habit for the challenge.
	Create(ctx context.Context, habit *domain.ActiveHabit) error

	// Get retrieves the active habit for a user and challenge.
	// Returns ErrHabitNotFound if it does not exist.
	Get(ctx context.Context, userID uuid.UUID, challengeID string) (*domain.ActiveHabit, error)

	// ListByUser returns the user's active habits ordered by start time.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.ActiveHabit, error)

	// Update persists streak fields on the condition that the stored version
	// equals expectedVersion. On success habit.Version is set to the new version.
	// Returns ErrStaleHabit if the condition fails and ErrHabitNotFound if
	// the habit no longer exists.
	Update(ctx context.Context, habit *domain.ActiveHabit, expectedVersion int64) error

	// Delete removes the active habit. Ledger entries earned from it are kept.
	// Returns ErrHabitNotFound if it does not exist.
	Delete(ctx context.Context, userID uuid.UUID, challengeID string) error

	// WithTx returns a HabitStore bound to the given transaction.
	WithTx(tx *sql.Tx) HabitStore
}
