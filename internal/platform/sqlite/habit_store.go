package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/ecorewards-api/internal/domain"
	"github.com/phrazzld/ecorewards-api/internal/platform/logger"
	"github.com/phrazzld/ecorewards-api/internal/store"
)

// HabitStore implements store.HabitStore on SQLite.
type HabitStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewHabitStore creates a new HabitStore. If logger is nil, the default logger is used.
func NewHabitStore(db store.DBTX, logger *slog.Logger) *HabitStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HabitStore{db: db, logger: logger.With(slog.String("component", "habit_store"))}
}

var _ store.HabitStore = (*HabitStore)(nil)

const habitColumns = `user_id, challenge_id, current_streak, longest_streak, completion_count,
	last_completed_at, started_at, version`

// Create implements store.HabitStore.Create.
func (s *HabitStore) Create(ctx context.Context, habit *domain.ActiveHabit) error {
	if err := habit.Validate(); err != nil {
		return store.NewStoreError("habit", "create", "invalid habit", errors.Join(store.ErrInvalidEntity, err))
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO active_habits (`+habitColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, challenge_id) DO NOTHING`,
		habit.UserID.String(), habit.ChallengeID, habit.CurrentStreak, habit.LongestStreak,
		habit.CompletionCount, formatNullTime(habit.LastCompletedAt), formatTime(habit.StartedAt), habit.Version,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create habit",
			slog.String("error", err.Error()),
			slog.String("challenge_id", habit.ChallengeID))
		return store.NewStoreError("habit", "create", "insert failed", MapError(err))
	}
	return checkRowsAffected(result, store.ErrHabitExists)
}

// Get implements store.HabitStore.Get.
func (s *HabitStore) Get(ctx context.Context, userID uuid.UUID, challengeID string) (*domain.ActiveHabit, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+habitColumns+` FROM active_habits WHERE user_id = ? AND challenge_id = ?`,
		userID.String(), challengeID,
	)
	habit, err := scanHabit(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrHabitNotFound
		}
		return nil, store.NewStoreError("habit", "get", "query failed", MapError(err))
	}
	return habit, nil
}

// ListByUser implements store.HabitStore.ListByUser.
func (s *HabitStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.ActiveHabit, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+habitColumns+` FROM active_habits WHERE user_id = ? ORDER BY started_at, challenge_id`,
		userID.String(),
	)
	if err != nil {
		return nil, store.NewStoreError("habit", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	habits := []*domain.ActiveHabit{}
	for rows.Next() {
		habit, err := scanHabit(rows)
		if err != nil {
			return nil, store.NewStoreError("habit", "list", "scan failed", err)
		}
		habits = append(habits, habit)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("habit", "list", "iteration failed", err)
	}
	return habits, nil
}

// Update implements store.HabitStore.Update.
func (s *HabitStore) Update(ctx context.Context, habit *domain.ActiveHabit, expectedVersion int64) error {
	if err := habit.Validate(); err != nil {
		return store.NewStoreError("habit", "update", "invalid habit", errors.Join(store.ErrInvalidEntity, err))
	}

	var version int64
	err := s.db.QueryRowContext(ctx, `
		UPDATE active_habits
		SET current_streak = ?, longest_streak = ?, completion_count = ?,
			last_completed_at = ?, version = version + 1
		WHERE user_id = ? AND challenge_id = ? AND version = ?
		RETURNING version`,
		habit.CurrentStreak, habit.LongestStreak, habit.CompletionCount,
		formatNullTime(habit.LastCompletedAt),
		habit.UserID.String(), habit.ChallengeID, expectedVersion,
	).Scan(&version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if _, getErr := s.Get(ctx, habit.UserID, habit.ChallengeID); getErr != nil {
				return getErr
			}
			logger.FromContextOrDefault(ctx, s.logger).Warn("stale habit version",
				slog.String("challenge_id", habit.ChallengeID),
				slog.Int64("expected_version", expectedVersion))
			return store.ErrStaleHabit
		}
		return store.NewStoreError("habit", "update", "update failed", MapError(err))
	}

	habit.Version = version
	return nil
}

// Delete implements store.HabitStore.Delete.
func (s *HabitStore) Delete(ctx context.Context, userID uuid.UUID, challengeID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM active_habits WHERE user_id = ? AND challenge_id = ?`,
		userID.String(), challengeID,
	)
	if err != nil {
		return store.NewStoreError("habit", "delete", "delete failed", MapError(err))
	}
	return checkRowsAffected(result, store.ErrHabitNotFound)
}

// WithTx implements store.HabitStore.WithTx.
func (s *HabitStore) WithTx(tx *sql.Tx) store.HabitStore {
	return &HabitStore{db: tx, logger: s.logger}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHabit(row rowScanner) (*domain.ActiveHabit, error) {
	var h domain.ActiveHabit
	var last sql.NullString
	var started string
	if err := row.Scan(
		&h.UserID, &h.ChallengeID, &h.CurrentStreak, &h.LongestStreak, &h.CompletionCount,
		&last, &started, &h.Version,
	); err != nil {
		return nil, err
	}
	var err error
	if h.StartedAt, err = parseTime(started); err != nil {
		return nil, err
	}
	if h.LastCompletedAt, err = parseNullTime(last); err != nil {
		return nil, err
	}
	return &h, nil
}
