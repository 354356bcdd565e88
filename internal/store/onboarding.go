package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/ecorewards-api/internal/domain"
)

// OnboardingStore defines the interface for onboarding answer sets.
// Each submission is stored as a new set; previous sets are never modified.
type OnboardingStore interface {
	// Save stores a new answer set with all of its answers.
	// It writes to more than one table and should run inside a transaction.
	Save(ctx context.Context, set *domain.AnswerSet) error

	// Latest returns the most recently submitted set for the user.
	// Returns ErrAnswerSetNotFound if the user never submitted answers.
	Latest(ctx context.Context, userID uuid.UUID) (*domain.AnswerSet, error)

	// WithTx returns an OnboardingStore bound to the given transaction.
	WithTx(tx *sql.Tx) OnboardingStore
}
