package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/ecorewards-api/internal/domain"
)

// BadgeStore defines the interface for streak milestone badges.
type BadgeStore interface {
	// Award stores the badge unless the user already holds one for the same
	// challenge and milestone. Returns true when a new badge was stored.
	Award(ctx context.Context, badge *domain.Badge) (bool, error)

	// ListByUser returns the user's badges, oldest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Badge, error)

	// WithTx returns a BadgeStore bound to the given transaction.
	WithTx(tx *sql.Tx) BadgeStore
}
