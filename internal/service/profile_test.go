package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileForNewUser(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()

	p, err := env.profile.Profile(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, userID, p.UserID)
	assert.Empty(t, p.ActiveHabits)
	assert.Zero(t, p.Balance)
	assert.NotNil(t, p.RecentTransactions)
	assert.NotNil(t, p.Stats.Badges)
	assert.Zero(t, p.Stats.TotalStreak)
}

func TestProfileAggregatesHabitsAndWallet(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	for _, id := range []string{"cycle", "bus", "walk"} {
		_, err := env.habits.Start(ctx, userID, id)
		require.NoError(t, err)
	}
	for i := 0; i < 3; i++ {
		_, err := env.habits.Complete(ctx, userID, "cycle")
		require.NoError(t, err)
		env.clock.Advance(day)
	}
	_, err := env.habits.Complete(ctx, userID, "bus")
	require.NoError(t, err)
	_, err = env.wallet.Redeem(ctx, userID, "tree")
	require.NoError(t, err)

	p, err := env.profile.Profile(ctx, userID)
	require.NoError(t, err)

	require.Len(t, p.ActiveHabits, 3)
	titles := map[string]string{}
	for _, h := range p.ActiveHabits {
		titles[h.ChallengeID] = h.Title
	}
	assert.Equal(t, map[string]string{
		"bus":   "Take the bus",
		"cycle": "Cycle to work",
		"walk":  "Walk to the shop",
	}, titles)
	assert.Equal(t, int64(3*50+20-50), p.Balance)

	assert.Equal(t, 4, p.Stats.TotalStreak)
	assert.Equal(t, 3, p.Stats.LongestStreak)
	assert.Equal(t, int64(4), p.Stats.TotalChallengesCompleted)
	assert.Equal(t, int64(170), p.Stats.TotalPointsEarned)
	assert.Equal(t, int64(50), p.Stats.TotalPointsRedeemed)
	assert.Len(t, p.Stats.Badges, 2, "milestone 1 for cycle and for bus")

	// Recent transactions are capped and newest first.
	require.Len(t, p.RecentTransactions, 5)
	assert.Equal(t, int64(-50), p.RecentTransactions[0].Amount)
}
