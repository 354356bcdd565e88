package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/ecorewards-api/internal/domain"
	"github.com/phrazzld/ecorewards-api/internal/store"
)

// ProfileHabit is an active habit with its catalog title.
type ProfileHabit struct {
	*domain.ActiveHabit
	Title string `json:"title"`
}

// ProfileStats summarizes a user's progress.
type ProfileStats struct {
	// TotalStreak is the sum of current streaks over active habits.
	TotalStreak int `json:"total_streak"`
	// LongestStreak is the best longest streak among active habits.
	LongestStreak            int             `json:"longest_streak"`
	TotalChallengesCompleted int64           `json:"total_challenges_completed"`
	TotalPointsEarned        int64           `json:"total_points_earned"`
	TotalPointsRedeemed      int64           `json:"total_points_redeemed"`
	Badges                   []*domain.Badge `json:"badges"`
}

// Profile is the read model composed from the habit tracker and the wallet.
type Profile struct {
	UserID             uuid.UUID             `json:"user_id"`
	ActiveHabits       []ProfileHabit        `json:"active_habits"`
	Balance            int64                 `json:"balance"`
	RecentTransactions []*domain.LedgerEntry `json:"recent_transactions"`
	Stats              ProfileStats          `json:"stats"`
}

// ProfileService composes the profile read model. It holds no state of its own.
type ProfileService interface {
	// Profile recomputes the user's profile. With ledger verification enabled
	// a balance that disagrees with the ledger returns ErrLedgerCorrupted.
	Profile(ctx context.Context, userID uuid.UUID) (*Profile, error)
}

type profileServiceImpl struct {
	*core
	recent int
}

var _ ProfileService = (*profileServiceImpl)(nil)

// NewProfileService creates a new ProfileService that includes up to
// recentTransactions ledger entries in each profile.
func NewProfileService(deps Deps, recentTransactions int) (ProfileService, error) {
	c, err := newCore(deps, "profile_service")
	if err != nil {
		return nil, err
	}
	if recentTransactions <= 0 {
		recentTransactions = 10
	}
	return &profileServiceImpl{core: c, recent: recentTransactions}, nil
}

func (s *profileServiceImpl) Profile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	p := &Profile{UserID: userID}

	err := s.verifiedRead(ctx, userID, "profile", func(ctx context.Context, txs store.Stores) error {
		habits, err := txs.Habits.ListByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("list habits: %w", err)
		}
		balance, err := txs.Wallets.Balance(ctx, userID)
		if err != nil {
			return fmt.Errorf("read balance: %w", err)
		}
		if err := s.verify(ctx, txs, userID, balance, "profile"); err != nil {
			return err
		}
		recent, err := txs.Ledger.ListByUser(ctx, userID, s.recent)
		if err != nil {
			return fmt.Errorf("list ledger: %w", err)
		}
		totals, err := txs.Ledger.Totals(ctx, userID)
		if err != nil {
			return fmt.Errorf("sum ledger: %w", err)
		}
		badges, err := txs.Badges.ListByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("list badges: %w", err)
		}

		p.Balance = balance
		p.RecentTransactions = recent
		p.ActiveHabits = make([]ProfileHabit, 0, len(habits))
		for _, h := range habits {
			ph := ProfileHabit{ActiveHabit: h, Title: h.ChallengeID}
			if ch, err := s.catalog.Challenge(h.ChallengeID); err == nil {
				ph.Title = ch.Title
			}
			p.ActiveHabits = append(p.ActiveHabits, ph)

			p.Stats.TotalStreak += h.CurrentStreak
			if h.LongestStreak > p.Stats.LongestStreak {
				p.Stats.LongestStreak = h.LongestStreak
			}
		}
		p.Stats.TotalChallengesCompleted = totals.EarnCount
		p.Stats.TotalPointsEarned = totals.PointsEarned
		p.Stats.TotalPointsRedeemed = totals.PointsRedeemed
		p.Stats.Badges = badges
		return nil
	})
	if err != nil {
		s.reportViolation(ctx, userID, err)
		return nil, err
	}

	if p.RecentTransactions == nil {
		p.RecentTransactions = []*domain.LedgerEntry{}
	}
	if p.Stats.Badges == nil {
		p.Stats.Badges = []*domain.Badge{}
	}
	return p, nil
}
