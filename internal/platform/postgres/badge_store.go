package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/ecorewards-api/internal/domain"
	"github.com/phrazzld/ecorewards-api/internal/platform/logger"
	"github.com/phrazzld/ecorewards-api/internal/store"
)

// PostgresBadgeStore implements store.BadgeStore using PostgreSQL.
type PostgresBadgeStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresBadgeStore creates a new PostgresBadgeStore.
func NewPostgresBadgeStore(db store.DBTX, logger *slog.Logger) *PostgresBadgeStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresBadgeStore{
		db:     db,
		logger: logger.With(slog.String("component", "badge_store")),
	}
}

var _ store.BadgeStore = (*PostgresBadgeStore)(nil)

// Award implements store.BadgeStore.Award.
func (s *PostgresBadgeStore) Award(ctx context.Context, badge *domain.Badge) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO badges (id, user_id, challenge_id, milestone, title, icon, earned_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, challenge_id, milestone) DO NOTHING`,
		badge.ID, badge.UserID, badge.ChallengeID, badge.Milestone, badge.Title, badge.Icon, badge.EarnedAt,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to award badge",
			slog.String("error", err.Error()),
			slog.String("challenge_id", badge.ChallengeID),
			slog.Int("milestone", badge.Milestone))
		return false, store.NewStoreError("badge", "award", "insert failed", MapError(err))
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, store.NewStoreError("badge", "award", "rows affected", err)
	}
	return n == 1, nil
}

// ListByUser implements store.BadgeStore.ListByUser.
func (s *PostgresBadgeStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Badge, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, challenge_id, milestone, title, icon, earned_at
		FROM badges
		WHERE user_id = $1
		ORDER BY seq`,
		userID,
	)
	if err != nil {
		return nil, store.NewStoreError("badge", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	badges := []*domain.Badge{}
	for rows.Next() {
		var b domain.Badge
		if err := rows.Scan(&b.ID, &b.UserID, &b.ChallengeID, &b.Milestone, &b.Title, &b.Icon, &b.EarnedAt); err != nil {
			return nil, store.NewStoreError("badge", "list", "scan failed", err)
		}
		b.EarnedAt = b.EarnedAt.UTC()
		badges = append(badges, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("badge", "list", "iteration failed", err)
	}
	return badges, nil
}

// WithTx implements store.BadgeStore.WithTx.
func (s *PostgresBadgeStore) WithTx(tx *sql.Tx) store.BadgeStore {
	return &PostgresBadgeStore{db: tx, logger: s.logger}
}
