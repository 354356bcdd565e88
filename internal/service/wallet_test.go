package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/ecorewards-api/internal/domain"
	"github.com/phrazzld/ecorewards-api/internal/events"
	"github.com/phrazzld/ecorewards-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndToEndRedemption(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := env.habits.Start(ctx, userID, "cycle")
	require.NoError(t, err)

	done, err := env.habits.Complete(ctx, userID, "cycle")
	require.NoError(t, err)
	assert.Equal(t, 1, done.NewStreak)
	assert.Equal(t, int64(50), done.PointsAwarded)
	assert.Equal(t, int64(50), done.Balance)

	claim, err := env.wallet.Redeem(ctx, userID, "tree")
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimStatePending, claim.State)
	assert.Equal(t, int64(50), claim.Cost)

	balance, err := env.wallet.Balance(ctx, userID)
	require.NoError(t, err)
	assert.Zero(t, balance)

	_, err = env.wallet.Redeem(ctx, userID, "tree")
	assert.ErrorIs(t, err, service.ErrInsufficientBalance)

	claimed, err := env.wallet.Claim(ctx, userID, claim.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimStateClaimed, claimed.State)
	require.NotNil(t, claimed.ClaimedAt)

	_, err = env.wallet.Claim(ctx, userID, claim.ID)
	assert.ErrorIs(t, err, service.ErrAlreadyClaimed)

	entries, err := env.wallet.Transactions(ctx, userID, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.EntryKindRedeem, entries[0].Kind)
	assert.Equal(t, int64(-50), entries[0].Amount)
	require.NotNil(t, entries[0].ClaimID)
	assert.Equal(t, claim.ID, *entries[0].ClaimID)
	assert.Equal(t, "cycle", entries[1].ChallengeID)

	claims, err := env.wallet.Claims(ctx, userID)
	require.NoError(t, err)
	require.Len(t, claims, 1)
	assert.Equal(t, domain.ClaimStateClaimed, claims[0].State)

	env.assertBalanceInvariant(t, userID)
	assert.Equal(t, []events.Type{
		events.HabitStarted,
		events.HabitCompleted,
		events.BadgeAwarded,
		events.RewardRedeemed,
		events.RewardClaimed,
	}, env.events.Types())
}

func TestCreditAndDebitRejectNonPositiveAmounts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	for _, amount := range []int64{0, -10} {
		_, err := env.wallet.Credit(ctx, userID, amount, "bonus")
		assert.ErrorIs(t, err, service.ErrInvalidAmount)
		_, err = env.wallet.Debit(ctx, userID, "tree", amount, "tree")
		assert.ErrorIs(t, err, service.ErrInvalidAmount)
	}

	entries, err := env.wallet.Transactions(ctx, userID, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDebitNeverOverdraws(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	res, err := env.wallet.Credit(ctx, userID, 120, "welcome bonus")
	require.NoError(t, err)
	assert.Equal(t, int64(120), res.Balance)

	_, err = env.wallet.Debit(ctx, userID, "discount", 200, "10% Discount")
	assert.ErrorIs(t, err, service.ErrInsufficientBalance)

	balance, err := env.wallet.Balance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(120), balance, "a rejected debit leaves the balance unchanged")

	claims, err := env.wallet.Claims(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, claims, "a rejected debit creates no claim")
	env.assertBalanceInvariant(t, userID)
}

func TestConcurrentRedemptionsCannotJointlyOverdraw(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := env.wallet.Credit(ctx, userID, 100, "welcome bonus")
	require.NoError(t, err)

	const attempts = 6
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.wallet.Redeem(ctx, userID, "tree")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, service.ErrInsufficientBalance):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 2, succeeded)
	assert.Equal(t, attempts-2, rejected)

	balance, err := env.wallet.Balance(ctx, userID)
	require.NoError(t, err)
	assert.Zero(t, balance)
	env.assertBalanceInvariant(t, userID)
}

func TestClaimOwnership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner, other := uuid.New(), uuid.New()

	_, err := env.wallet.Credit(ctx, owner, 50, "bonus")
	require.NoError(t, err)
	claim, err := env.wallet.Redeem(ctx, owner, "tree")
	require.NoError(t, err)

	_, err = env.wallet.Claim(ctx, other, claim.ID)
	assert.ErrorIs(t, err, service.ErrClaimNotFound)

	_, err = env.wallet.Claim(ctx, owner, uuid.New())
	assert.ErrorIs(t, err, service.ErrClaimNotFound)

	_, err = env.wallet.Claim(ctx, owner, claim.ID)
	assert.NoError(t, err)
}

func TestRedeemUnknownReward(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.wallet.Redeem(context.Background(), uuid.New(), "yacht")
	assert.ErrorIs(t, err, service.ErrRewardNotFound)
	assert.Len(t, env.wallet.RedemptionOptions(), 2)
}

func TestTransactionsNewestFirstWithLimit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	for i := int64(1); i <= 4; i++ {
		_, err := env.wallet.Credit(ctx, userID, i*10, "bonus")
		require.NoError(t, err)
	}

	entries, err := env.wallet.Transactions(ctx, userID, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(40), entries[0].Amount)
	assert.Equal(t, int64(30), entries[1].Amount)
}

func TestLedgerCorruptionIsDetectedAndAlerted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := env.wallet.Credit(ctx, userID, 50, "bonus")
	require.NoError(t, err)

	// Simulate a write that bypassed the ledger.
	_, err = env.db.ExecContext(ctx, "UPDATE wallets SET balance = balance + 25 WHERE user_id = ?", userID.String())
	require.NoError(t, err)
	env.events.Reset()

	_, err = env.wallet.Balance(ctx, userID)
	require.ErrorIs(t, err, service.ErrLedgerCorrupted)
	var violation *service.InvariantViolation
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, int64(75), violation.CachedBalance)
	assert.Equal(t, int64(50), violation.LedgerSum)

	_, err = env.wallet.Credit(ctx, userID, 10, "bonus")
	require.ErrorIs(t, err, service.ErrLedgerCorrupted)

	entries, err := env.wallet.Transactions(ctx, userID, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "the failed credit was rolled back")

	_, err = env.profile.Profile(ctx, userID)
	assert.ErrorIs(t, err, service.ErrLedgerCorrupted)

	assert.Equal(t, []events.Type{
		events.LedgerInvariantViolated,
		events.LedgerInvariantViolated,
		events.LedgerInvariantViolated,
	}, env.events.Types())

	alerts := env.logs.Find("ledger invariant violated")
	require.Len(t, alerts, 3)
	assert.Equal(t, "ERROR", alerts[0]["level"])
	assert.Equal(t, true, alerts[0]["alert"])
}
