package postgres

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

// PostgresHabitStore implements store.HabitStore using PostgreSQL.
type PostgresHabitStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresHabitStore creates a new PostgresHabitStore.
// If logger is nil, the default logger is used.
func NewPostgresHabitStore(db store.DBTX, logger *slog.Logger) *PostgresHabitStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresHabitStore{
		db:     db,
		logger: logger.With(slog.String("component", "habit_store")),
	}
}

var _ store.HabitStore = (*PostgresHabitStore)(nil)

const habitColumns = `user_id, challenge_id, current_streak, longest_streak, completion_count,
	last_completed_at, started_at, version`

// Create implements store.HabitStore.Create.
func (s *PostgresHabitStore) Create(ctx context.Context, habit *domain.ActiveHabit) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := habit.Validate(); err != nil {
		return store.NewStoreError("habit", "create", "invalid habit", errors.Join(store.ErrInvalidEntity, err))
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO active_habits (`+habitColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, challenge_id) DO NOTHING`,
		habit.UserID, habit.ChallengeID, habit.CurrentStreak, habit.LongestStreak,
		habit.CompletionCount, habit.LastCompletedAt, habit.StartedAt, habit.Version,
	)
	if err != nil {
		log.Error("failed to create habit",
			slog.String("error", err.Error()),
			slog.String("challenge_id", habit.ChallengeID))
		return store.NewStoreError("habit", "create", "insert failed", MapError(err))
	}
	if err := CheckRowsAffected(result, store.ErrHabitExists); err != nil {
		return err
	}

	log.Debug("habit created",
		slog.String("user_id", habit.UserID.String()),
		slog.String("challenge_id", habit.ChallengeID))
	return nil
}

// Get implements store.HabitStore.Get.
func (s *PostgresHabitStore) Get(ctx context.Context, userID uuid.UUID, challengeID string) (*domain.ActiveHabit, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+habitColumns+`
		FROM active_habits
		WHERE user_id = $1 AND challenge_id = $2`,
		userID, challengeID,
	)
	habit, err := scanHabit(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrHabitNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get habit",
			slog.String("error", err.Error()),
			slog.String("challenge_id", challengeID))
		return nil, store.NewStoreError("habit", "get", "query failed", MapError(err))
	}
	return habit, nil
}

// ListByUser implements store.HabitStore.ListByUser.
func (s *PostgresHabitStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.ActiveHabit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+habitColumns+`
		FROM active_habits
		WHERE user_id = $1
		ORDER BY started_at, challenge_id`,
		userID,
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
func (s *PostgresHabitStore) Update(ctx context.Context, habit *domain.ActiveHabit, expectedVersion int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := habit.Validate(); err != nil {
		return store.NewStoreError("habit", "update", "invalid habit", errors.Join(store.ErrInvalidEntity, err))
	}

	var version int64
	err := s.db.QueryRowContext(ctx, `
		UPDATE active_habits
		SET current_streak = $3, longest_streak = $4, completion_count = $5,
			last_completed_at = $6, version = version + 1
		WHERE user_id = $1 AND challenge_id = $2 AND version = $7
		RETURNING version`,
		habit.UserID, habit.ChallengeID, habit.CurrentStreak, habit.LongestStreak,
		habit.CompletionCount, habit.LastCompletedAt, expectedVersion,
	).Scan(&version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if _, getErr := s.Get(ctx, habit.UserID, habit.ChallengeID); getErr != nil {
				return getErr
			}
			log.Warn("stale habit version",
				slog.String("challenge_id", habit.ChallengeID),
				slog.Int64("expected_version", expectedVersion))
			return store.ErrStaleHabit
		}
		log.Error("failed to update habit",
			slog.String("error", err.Error()),
			slog.String("challenge_id", habit.ChallengeID))
		return store.NewStoreError("habit", "update", "update failed", MapError(err))
	}

	habit.Version = version
	return nil
}

// Delete implements store.HabitStore.Delete.
func (s *PostgresHabitStore) Delete(ctx context.Context, userID uuid.UUID, challengeID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM active_habits WHERE user_id = $1 AND challenge_id = $2`,
		userID, challengeID,
	)
	if err != nil {
		return store.NewStoreError("habit", "delete", "delete failed", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrHabitNotFound)
}

// WithTx implements store.HabitStore.WithTx.
func (s *PostgresHabitStore) WithTx(tx *sql.Tx) store.HabitStore {
	return &PostgresHabitStore{db: tx, logger: s.logger}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHabit(row rowScanner) (*domain.ActiveHabit, error) {
	var h domain.ActiveHabit
	var last sql.NullTime
	if err := row.Scan(
		&h.UserID, &h.ChallengeID, &h.CurrentStreak, &h.LongestStreak, &h.CompletionCount,
		&last, &h.StartedAt, &h.Version,
	); err != nil {
		return nil, err
	}
	h.StartedAt = h.StartedAt.UTC()
	if last.Valid {
		t := last.Time.UTC()
		h.LastCompletedAt = &t
	}
	return &h, nil
}
