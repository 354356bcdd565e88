package mocks

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/ecorewards-api/internal/service"
	"github.com/phrazzld/ecorewards-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnconfiguredMethodsReturnErrNotConfigured(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	_, err := (&MockHabitService{}).Complete(ctx, userID, "cycle")
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = (&MockWalletService{}).Balance(ctx, userID)
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = (&MockRecommendationService{}).Recommend(ctx, userID)
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = (&MockProfileService{}).Profile(ctx, userID)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestFunctionFieldsTakePrecedence(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	wallet := &MockWalletService{
		BalanceFn: func(_ context.Context, got uuid.UUID) (int64, error) {
			assert.Equal(t, userID, got)
			return 70, nil
		},
	}
	balance, err := wallet.Balance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(70), balance)

	jwt := &MockJWTService{
		Claims: &auth.Claims{UserID: userID},
		ValidateTokenFn: func(context.Context, string) (*auth.Claims, error) {
			return nil, auth.ErrExpiredToken
		},
	}
	_, err = jwt.ValidateToken(ctx, "token")
	assert.ErrorIs(t, err, auth.ErrExpiredToken)

	jwt.ValidateTokenFn = nil
	claims, err := jwt.ValidateToken(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)

	habits := &MockHabitService{
		StopFn: func(context.Context, uuid.UUID, string) error { return service.ErrHabitNotActive },
	}
	assert.ErrorIs(t, habits.Stop(ctx, userID, "cycle"), service.ErrHabitNotActive)
}
