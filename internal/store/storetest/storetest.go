// Package storetest holds the behavioral contract shared by every
// implementation of the internal/store interfaces. Each backend runs the same
// suite from its own tests by passing a Factory.
package storetest

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/ecorewards-api/internal/domain"
	"github.com/phrazzld/ecorewards-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns a migrated database and the stores bound to it.
// The database may be shared between calls; the suite isolates itself by
// using a fresh user ID per test.
type Factory func(t *testing.T) (*sql.DB, store.Stores)

// Run executes the full store contract against the stores returned by newStores.
func Run(t *testing.T, newStores Factory) {
	t.Run("Habits", func(t *testing.T) { testHabits(t, newStores) })
	t.Run("Wallets", func(t *testing.T) { testWallets(t, newStores) })
	t.Run("Ledger", func(t *testing.T) { testLedger(t, newStores) })
	t.Run("Claims", func(t *testing.T) { testClaims(t, newStores) })
	t.Run("Onboarding", func(t *testing.T) { testOnboarding(t, newStores) })
	t.Run("Badges", func(t *testing.T) { testBadges(t, newStores) })
	t.Run("Transactions", func(t *testing.T) { testTransactions(t, newStores) })
}

// now is truncated to the coarsest precision of the supported backends.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func testHabits(t *testing.T, newStores Factory) {
	ctx := context.Background()
	_, s := newStores(t)
	userID := uuid.New()
	started := now()

	habit, err := domain.NewActiveHabit(userID, "cycle-to-work", started)
	require.NoError(t, err)
	require.NoError(t, s.Habits.Create(ctx, habit))

	t.Run("duplicate create is rejected", func(t *testing.T) {
		dup, err := domain.NewActiveHabit(userID, "cycle-to-work", started.Add(time.Hour))
		require.NoError(t, err)
		err = s.Habits.Create(ctx, dup)
		assert.ErrorIs(t, err, store.ErrHabitExists)
		assert.True(t, store.IsDuplicateError(err))
	})

	t.Run("get round-trips every field", func(t *testing.T) {
		got, err := s.Habits.Get(ctx, userID, "cycle-to-work")
		require.NoError(t, err)
		assert.Equal(t, userID, got.UserID)
		assert.Equal(t, 0, got.CurrentStreak)
		assert.Nil(t, got.LastCompletedAt)
		assert.WithinDuration(t, started, got.StartedAt, time.Microsecond)
		assert.Equal(t, int64(1), got.Version)
	})

	t.Run("get unknown habit", func(t *testing.T) {
		_, err := s.Habits.Get(ctx, userID, "walk-to-shop")
		assert.ErrorIs(t, err, store.ErrHabitNotFound)
		_, err = s.Habits.Get(ctx, uuid.New(), "cycle-to-work")
		assert.ErrorIs(t, err, store.ErrHabitNotFound)
	})

	t.Run("versioned update", func(t *testing.T) {
		got, err := s.Habits.Get(ctx, userID, "cycle-to-work")
		require.NoError(t, err)

		completed := started.Add(24 * time.Hour)
		got.CurrentStreak, got.LongestStreak, got.CompletionCount = 1, 1, 1
		got.LastCompletedAt = &completed
		require.NoError(t, s.Habits.Update(ctx, got, 1))
		assert.Equal(t, int64(2), got.Version)

		reloaded, err := s.Habits.Get(ctx, userID, "cycle-to-work")
		require.NoError(t, err)
		assert.Equal(t, 1, reloaded.CurrentStreak)
		require.NotNil(t, reloaded.LastCompletedAt)
		assert.WithinDuration(t, completed, *reloaded.LastCompletedAt, time.Microsecond)

		stale := reloaded.Clone()
		stale.CurrentStreak, stale.LongestStreak = 2, 2
		assert.ErrorIs(t, s.Habits.Update(ctx, stale, 1), store.ErrStaleHabit)
	})

	t.Run("update unknown habit", func(t *testing.T) {
		ghost, err := domain.NewActiveHabit(uuid.New(), "cycle-to-work", started)
		require.NoError(t, err)
		assert.ErrorIs(t, s.Habits.Update(ctx, ghost, 1), store.ErrHabitNotFound)
	})

	t.Run("invalid habit is rejected before writing", func(t *testing.T) {
		bad := &domain.ActiveHabit{UserID: userID, ChallengeID: "", StartedAt: started}
		assert.ErrorIs(t, s.Habits.Create(ctx, bad), store.ErrInvalidEntity)
	})

	t.Run("list and delete", func(t *testing.T) {
		second, err := domain.NewActiveHabit(userID, "walk-to-shop", started.Add(time.Minute))
		require.NoError(t, err)
		require.NoError(t, s.Habits.Create(ctx, second))

		habits, err := s.Habits.ListByUser(ctx, userID)
		require.NoError(t, err)
		require.Len(t, habits, 2)
		assert.Equal(t, "cycle-to-work", habits[0].ChallengeID)
		assert.Equal(t, "walk-to-shop", habits[1].ChallengeID)

		require.NoError(t, s.Habits.Delete(ctx, userID, "walk-to-shop"))
		assert.ErrorIs(t, s.Habits.Delete(ctx, userID, "walk-to-shop"), store.ErrHabitNotFound)

		habits, err = s.Habits.ListByUser(ctx, userID)
		require.NoError(t, err)
		assert.Len(t, habits, 1)

		empty, err := s.Habits.ListByUser(ctx, uuid.New())
		require.NoError(t, err)
		assert.NotNil(t, empty)
		assert.Empty(t, empty)
	})
}

func testWallets(t *testing.T, newStores Factory) {
	ctx := context.Background()
	_, s := newStores(t)
	userID := uuid.New()

	balance, err := s.Wallets.Balance(ctx, userID)
	require.NoError(t, err)
	assert.Zero(t, balance)

	_, err = s.Wallets.Debit(ctx, userID, 1)
	assert.ErrorIs(t, err, store.ErrInsufficientFunds, "debit without an account")

	balance, err = s.Wallets.Credit(ctx, userID, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(50), balance)

	balance, err = s.Wallets.Credit(ctx, userID, 25)
	require.NoError(t, err)
	assert.Equal(t, int64(75), balance)

	_, err = s.Wallets.Debit(ctx, userID, 76)
	assert.ErrorIs(t, err, store.ErrInsufficientFunds)

	balance, err = s.Wallets.Balance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(75), balance, "rejected debit leaves the balance unchanged")

	balance, err = s.Wallets.Debit(ctx, userID, 75)
	require.NoError(t, err)
	assert.Zero(t, balance)
}

func testLedger(t *testing.T, newStores Factory) {
	ctx := context.Background()
	_, s := newStores(t)
	userID := uuid.New()
	at := now()

	earn1, err := domain.NewEarnEntry(userID, 50, "Cycle to work", "cycle-to-work", at)
	require.NoError(t, err)
	earn2, err := domain.NewEarnEntry(userID, 30, "Walk to shop", "walk-to-shop", at)
	require.NoError(t, err)
	require.NoError(t, s.Ledger.Append(ctx, earn1))
	require.NoError(t, s.Ledger.Append(ctx, earn2))

	claim, err := domain.NewRedemptionClaim(userID, "discount-10", 20, at)
	require.NoError(t, err)
	require.NoError(t, s.Claims.Create(ctx, claim))
	redeem, err := domain.NewRedeemEntry(userID, 20, "10% discount", claim.ID, at)
	require.NoError(t, err)
	require.NoError(t, s.Ledger.Append(ctx, redeem))

	t.Run("list is newest first", func(t *testing.T) {
		entries, err := s.Ledger.ListByUser(ctx, userID, 0)
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, redeem.ID, entries[0].ID)
		assert.Equal(t, earn2.ID, entries[1].ID)
		assert.Equal(t, earn1.ID, entries[2].ID)

		assert.Equal(t, int64(-20), entries[0].Amount)
		require.NotNil(t, entries[0].ClaimID)
		assert.Equal(t, claim.ID, *entries[0].ClaimID)
		assert.Empty(t, entries[0].ChallengeID)
		assert.Equal(t, "cycle-to-work", entries[2].ChallengeID)
		assert.Nil(t, entries[2].ClaimID)
		assert.WithinDuration(t, at, entries[2].CreatedAt, time.Microsecond)
	})

	t.Run("list honours limit", func(t *testing.T) {
		entries, err := s.Ledger.ListByUser(ctx, userID, 2)
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})

	t.Run("totals", func(t *testing.T) {
		totals, err := s.Ledger.Totals(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, domain.LedgerTotals{Sum: 60, EarnCount: 2, PointsEarned: 80, PointsRedeemed: 20}, totals)

		empty, err := s.Ledger.Totals(ctx, uuid.New())
		require.NoError(t, err)
		assert.Equal(t, domain.LedgerTotals{}, empty)
	})

	t.Run("invalid entries are rejected", func(t *testing.T) {
		bad := *earn1
		bad.ID = uuid.New()
		bad.Amount = -5
		assert.ErrorIs(t, s.Ledger.Append(ctx, &bad), store.ErrInvalidEntity)

		dup := *earn1
		assert.ErrorIs(t, s.Ledger.Append(ctx, &dup), store.ErrDuplicate)
	})
}

func testClaims(t *testing.T, newStores Factory) {
	ctx := context.Background()
	_, s := newStores(t)
	userID := uuid.New()
	at := now()

	claim, err := domain.NewRedemptionClaim(userID, "plant-a-tree", 500, at)
	require.NoError(t, err)
	require.NoError(t, s.Claims.Create(ctx, claim))

	got, err := s.Claims.Get(ctx, userID, claim.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimStatePending, got.State)
	assert.Equal(t, int64(500), got.Cost)
	assert.Nil(t, got.ClaimedAt)

	_, err = s.Claims.Get(ctx, uuid.New(), claim.ID)
	assert.ErrorIs(t, err, store.ErrClaimNotFound, "claims are scoped to their owner")

	assert.ErrorIs(t, s.Claims.MarkClaimed(ctx, uuid.New(), claim.ID, at), store.ErrClaimNotFound)
	assert.ErrorIs(t, s.Claims.MarkClaimed(ctx, userID, uuid.New(), at), store.ErrClaimNotFound)

	claimedAt := at.Add(time.Minute)
	require.NoError(t, s.Claims.MarkClaimed(ctx, userID, claim.ID, claimedAt))
	assert.ErrorIs(t, s.Claims.MarkClaimed(ctx, userID, claim.ID, claimedAt), store.ErrClaimNotPending)

	got, err = s.Claims.Get(ctx, userID, claim.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimStateClaimed, got.State)
	require.NotNil(t, got.ClaimedAt)
	assert.WithinDuration(t, claimedAt, *got.ClaimedAt, time.Microsecond)

	second, err := domain.NewRedemptionClaim(userID, "discount-10", 200, at)
	require.NoError(t, err)
	require.NoError(t, s.Claims.Create(ctx, second))

	claims, err := s.Claims.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, claims, 2)
	assert.Equal(t, second.ID, claims[0].ID)
}

func testOnboarding(t *testing.T, newStores Factory) {
	ctx := context.Background()
	_, s := newStores(t)
	userID := uuid.New()

	_, err := s.Onboarding.Latest(ctx, userID)
	assert.ErrorIs(t, err, store.ErrAnswerSetNotFound)

	first, err := domain.NewAnswerSet(userID, map[string]domain.Response{
		"1": domain.ResponseAffirmative,
		"2": domain.ResponseNegative,
	}, now())
	require.NoError(t, err)
	require.NoError(t, s.Onboarding.Save(ctx, first))

	second, err := domain.NewAnswerSet(userID, map[string]domain.Response{
		"3": domain.ResponseAffirmative,
		"4": domain.ResponseSkipped,
	}, now())
	require.NoError(t, err)
	require.NoError(t, s.Onboarding.Save(ctx, second))

	latest, err := s.Onboarding.Latest(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)
	assert.Equal(t, second.Answers, latest.Answers)

	empty, err := domain.NewAnswerSet(userID, nil, now())
	require.NoError(t, err)
	require.NoError(t, s.Onboarding.Save(ctx, empty))
	latest, err = s.Onboarding.Latest(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, empty.ID, latest.ID)
	assert.Empty(t, latest.Answers)
}

func testBadges(t *testing.T, newStores Factory) {
	ctx := context.Background()
	_, s := newStores(t)
	userID := uuid.New()
	challenge := domain.Challenge{ID: "cycle-to-work", Title: "Cycle to Work", BadgeTheme: "bicycle_silhouette"}

	awarded, err := s.Badges.Award(ctx, domain.NewBadge(userID, challenge, 1, now()))
	require.NoError(t, err)
	assert.True(t, awarded)

	awarded, err = s.Badges.Award(ctx, domain.NewBadge(userID, challenge, 1, now()))
	require.NoError(t, err)
	assert.False(t, awarded, "a milestone is awarded once")

	awarded, err = s.Badges.Award(ctx, domain.NewBadge(userID, challenge, 5, now()))
	require.NoError(t, err)
	assert.True(t, awarded)

	badges, err := s.Badges.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, badges, 2)
	assert.Equal(t, 1, badges[0].Milestone)
	assert.Equal(t, "Cycle to Work - 5 Streak", badges[1].Title)
	assert.Equal(t, "🚲", badges[1].Icon)
}

func testTransactions(t *testing.T, newStores Factory) {
	ctx := context.Background()
	db, s := newStores(t)
	userID := uuid.New()
	rollback := errors.New("abort")

	err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
		txs := s.WithTx(tx)
		entry, err := domain.NewEarnEntry(userID, 50, "Cycle to work", "cycle-to-work", now())
		if err != nil {
			return err
		}
		if err := txs.Ledger.Append(ctx, entry); err != nil {
			return err
		}
		if _, err := txs.Wallets.Credit(ctx, userID, 50); err != nil {
			return err
		}
		return rollback
	})
	require.ErrorIs(t, err, rollback)

	balance, err := s.Wallets.Balance(ctx, userID)
	require.NoError(t, err)
	assert.Zero(t, balance)
	entries, err := s.Ledger.ListByUser(ctx, userID, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)

	err = store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
		txs := s.WithTx(tx)
		entry, err := domain.NewEarnEntry(userID, 50, "Cycle to work", "cycle-to-work", now())
		if err != nil {
			return err
		}
		if err := txs.Ledger.Append(ctx, entry); err != nil {
			return err
		}
		_, err = txs.Wallets.Credit(ctx, userID, 50)
		return err
	})
	require.NoError(t, err)

	balance, err = s.Wallets.Balance(ctx, userID)
	require.NoError(t, err)
	totals, err := s.Ledger.Totals(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(50), balance)
	assert.Equal(t, balance, totals.Sum)
}
