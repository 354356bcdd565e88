package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/ecorewards-api/internal/domain"
	"github.com/phrazzld/ecorewards-api/internal/domain/streak"
	"github.com/phrazzld/ecorewards-api/internal/events"
	"github.com/phrazzld/ecorewards-api/internal/platform/logger"
	"github.com/phrazzld/ecorewards-api/internal/store"
)

// CompletionResult is the outcome of completing a challenge.
type CompletionResult struct {
	Habit         *domain.ActiveHabit `json:"habit"`
	NewStreak     int                 `json:"new_streak"`
	PointsAwarded int64               `json:"points_awarded"`
	Balance       int64               `json:"balance"`
	// StreakReset is true when the grace window had expired.
	StreakReset bool `json:"streak_reset"`
	// Badge is set when the completion reached a new milestone.
	Badge *domain.Badge `json:"badge,omitempty"`
}

// HabitService tracks a user's active challenges and their streaks.
type HabitService interface {
	// Start adopts a challenge. Starting an already active challenge returns
	// the existing habit unchanged.
	// Returns ErrChallengeNotFound for an unknown challenge.
	Start(ctx context.Context, userID uuid.UUID, challengeID string) (*domain.ActiveHabit, error)

	// Stop removes the active habit. Earned ledger entries are kept.
	// Returns ErrHabitNotActive if the challenge was not started.
	Stop(ctx context.Context, userID uuid.UUID, challengeID string) error

	// Complete advances the streak and credits the challenge's point reward in
	// one transaction. Period deduplication is left to the caller; see
	// streak.Status.CompletedThisPeriod.
	// Returns ErrChallengeNotFound, ErrHabitNotActive or ErrConflict.
	Complete(ctx context.Context, userID uuid.UUID, challengeID string) (*CompletionResult, error)

	// StreakStatus derives the streak read model at the current time.
	// Returns ErrChallengeNotFound or ErrHabitNotActive.
	StreakStatus(ctx context.Context, userID uuid.UUID, challengeID string) (*streak.Status, error)

	// ListActive returns the user's active habits ordered by start time.
	ListActive(ctx context.Context, userID uuid.UUID) ([]*domain.ActiveHabit, error)
}

type habitServiceImpl struct {
	*core
	streaks streak.Service
}

var _ HabitService = (*habitServiceImpl)(nil)

// NewHabitService creates a new HabitService. A nil streaks uses the default
// grace window and milestones.
func NewHabitService(deps Deps, streaks streak.Service) (HabitService, error) {
	c, err := newCore(deps, "habit_service")
	if err != nil {
		return nil, err
	}
	if streaks == nil {
		streaks = streak.NewDefaultService()
	}
	return &habitServiceImpl{core: c, streaks: streaks}, nil
}

func (s *habitServiceImpl) challenge(id string) (domain.Challenge, error) {
	ch, err := s.catalog.Challenge(id)
	if err != nil {
		if store.IsNotFoundError(err) {
			return domain.Challenge{}, ErrChallengeNotFound
		}
		return domain.Challenge{}, err
	}
	return ch, nil
}

func (s *habitServiceImpl) Start(ctx context.Context, userID uuid.UUID, challengeID string) (*domain.ActiveHabit, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	if _, err := s.challenge(challengeID); err != nil {
		return nil, err
	}

	var (
		habit   *domain.ActiveHabit
		created bool
	)
	err := s.mutate(ctx, userID, "start", func(ctx context.Context, txs store.Stores) error {
		existing, err := txs.Habits.Get(ctx, userID, challengeID)
		if err == nil {
			habit = existing
			return nil
		}
		if !store.IsNotFoundError(err) {
			return fmt.Errorf("get habit: %w", err)
		}

		fresh, err := domain.NewActiveHabit(userID, challengeID, s.now())
		if err != nil {
			return fmt.Errorf("build habit: %w", err)
		}
		if err := txs.Habits.Create(ctx, fresh); err != nil {
			if store.IsDuplicateError(err) {
				return ErrConflict
			}
			return fmt.Errorf("create habit: %w", err)
		}
		habit, created = fresh, true
		return nil
	})
	if errors.Is(err, ErrConflict) {
		// Another writer created it first; the surviving row is the answer.
		habit, err = s.stores.Habits.Get(ctx, userID, challengeID)
		if err != nil {
			return nil, NewServiceError("start", "failed to read habit after conflict", err)
		}
		return habit, nil
	}
	if err != nil {
		log.Warn("start challenge failed",
			slog.String("user_id", userID.String()),
			slog.String("challenge_id", challengeID),
			slog.String("error", err.Error()))
		return nil, err
	}

	if created {
		log.Info("challenge started",
			slog.String("user_id", userID.String()),
			slog.String("challenge_id", challengeID))
		s.emit(ctx, events.HabitStarted, userID, map[string]any{"challenge_id": challengeID})
	}
	return habit, nil
}

func (s *habitServiceImpl) Stop(ctx context.Context, userID uuid.UUID, challengeID string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.mutate(ctx, userID, "stop", func(ctx context.Context, txs store.Stores) error {
		if err := txs.Habits.Delete(ctx, userID, challengeID); err != nil {
			if store.IsNotFoundError(err) {
				return ErrHabitNotActive
			}
			return fmt.Errorf("delete habit: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Info("challenge stopped",
		slog.String("user_id", userID.String()),
		slog.String("challenge_id", challengeID))
	s.emit(ctx, events.HabitStopped, userID, map[string]any{"challenge_id": challengeID})
	return nil
}

func (s *habitServiceImpl) Complete(ctx context.Context, userID uuid.UUID, challengeID string) (*CompletionResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	challenge, err := s.challenge(challengeID)
	if err != nil {
		return nil, err
	}

	var result CompletionResult
	err = s.mutate(ctx, userID, "complete", func(ctx context.Context, txs store.Stores) error {
		habit, err := txs.Habits.Get(ctx, userID, challengeID)
		if err != nil {
			if store.IsNotFoundError(err) {
				return ErrHabitNotActive
			}
			return fmt.Errorf("get habit: %w", err)
		}

		now := s.now()
		completion, err := s.streaks.Complete(habit, now)
		if err != nil {
			return fmt.Errorf("compute streak: %w", err)
		}
		next := completion.Habit
		if err := txs.Habits.Update(ctx, next, habit.Version); err != nil {
			switch {
			case errors.Is(err, store.ErrStaleHabit):
				return ErrConflict
			case store.IsNotFoundError(err):
				return ErrHabitNotActive
			}
			return fmt.Errorf("update habit: %w", err)
		}

		entry, err := domain.NewEarnEntry(userID, challenge.PointReward, challenge.Title, challenge.ID, now)
		if err != nil {
			return fmt.Errorf("build earn entry: %w", err)
		}
		balance, err := s.credit(ctx, txs, entry)
		if err != nil {
			return err
		}

		result = CompletionResult{
			Habit:         next,
			NewStreak:     next.CurrentStreak,
			PointsAwarded: challenge.PointReward,
			Balance:       balance,
			StreakReset:   completion.Reset,
		}

		if completion.Milestone > 0 {
			badge := domain.NewBadge(userID, challenge, completion.Milestone, now)
			awarded, err := txs.Badges.Award(ctx, badge)
			if err != nil {
				return fmt.Errorf("award badge: %w", err)
			}
			if awarded {
				result.Badge = badge
			}
		}
		return nil
	})
	if err != nil {
		log.Warn("complete challenge failed",
			slog.String("user_id", userID.String()),
			slog.String("challenge_id", challengeID),
			slog.String("error", err.Error()))
		return nil, err
	}

	log.Info("challenge completed",
		slog.String("user_id", userID.String()),
		slog.String("challenge_id", challengeID),
		slog.Int("streak", result.NewStreak),
		slog.Int64("points", result.PointsAwarded))
	s.emit(ctx, events.HabitCompleted, userID, map[string]any{
		"challenge_id":   challengeID,
		"streak":         result.NewStreak,
		"streak_reset":   result.StreakReset,
		"points_awarded": result.PointsAwarded,
	})
	if result.Badge != nil {
		s.emit(ctx, events.BadgeAwarded, userID, result.Badge)
	}
	return &result, nil
}

func (s *habitServiceImpl) StreakStatus(ctx context.Context, userID uuid.UUID, challengeID string) (*streak.Status, error) {
	challenge, err := s.challenge(challengeID)
	if err != nil {
		return nil, err
	}
	habit, err := s.stores.Habits.Get(ctx, userID, challengeID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrHabitNotActive
		}
		return nil, NewServiceError("streak_status", "failed to get habit", err)
	}
	status, err := s.streaks.Status(habit, challenge.Recurrence, s.now())
	if err != nil {
		return nil, NewServiceError("streak_status", "failed to derive status", err)
	}
	return status, nil
}

func (s *habitServiceImpl) ListActive(ctx context.Context, userID uuid.UUID) ([]*domain.ActiveHabit, error) {
	habits, err := s.stores.Habits.ListByUser(ctx, userID)
	if err != nil {
		return nil, NewServiceError("list_active", "failed to list habits", err)
	}
	return habits, nil
}
