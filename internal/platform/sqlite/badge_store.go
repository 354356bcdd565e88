package sqlite

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/ecorewards-api/internal/domain"
	"github.com/phrazzld/ecorewards-api/internal/store"
)

// BadgeStore implements store.BadgeStore on SQLite.
type BadgeStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewBadgeStore creates a new BadgeStore.
func NewBadgeStore(db store.DBTX, logger *slog.Logger) *BadgeStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BadgeStore{db: db, logger: logger.With(slog.String("component", "badge_store"))}
}

var _ store.BadgeStore = (*BadgeStore)(nil)

// Award implements store.BadgeStore.Award.
func (s *BadgeStore) Award(ctx context.Context, badge *domain.Badge) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO badges (id, user_id, challenge_id, milestone, title, icon, earned_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, challenge_id, milestone) DO NOTHING`,
		badge.ID.String(), badge.UserID.String(), badge.ChallengeID, badge.Milestone,
		badge.Title, badge.Icon, formatTime(badge.EarnedAt),
	)
	if err != nil {
		return false, store.NewStoreError("badge", "award", "insert failed", MapError(err))
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, store.NewStoreError("badge", "award", "rows affected", err)
	}
	return n == 1, nil
}

// ListByUser implements store.BadgeStore.ListByUser.
func (s *BadgeStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Badge, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, challenge_id, milestone, title, icon, earned_at
		FROM badges
		WHERE user_id = ?
		ORDER BY seq`,
		userID.String(),
	)
	if err != nil {
		return nil, store.NewStoreError("badge", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	badges := []*domain.Badge{}
	for rows.Next() {
		var b domain.Badge
		var earned string
		if err := rows.Scan(&b.ID, &b.UserID, &b.ChallengeID, &b.Milestone, &b.Title, &b.Icon, &earned); err != nil {
			return nil, store.NewStoreError("badge", "list", "scan failed", err)
		}
		if b.EarnedAt, err = parseTime(earned); err != nil {
			return nil, store.NewStoreError("badge", "list", "scan failed", err)
		}
		badges = append(badges, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("badge", "list", "iteration failed", err)
	}
	return badges, nil
}

// WithTx implements store.BadgeStore.WithTx.
func (s *BadgeStore) WithTx(tx *sql.Tx) store.BadgeStore {
	return &BadgeStore{db: tx, logger: s.logger}
}
