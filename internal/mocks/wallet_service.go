package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/ecorewards-api/internal/domain"
	"github.com/phrazzld/ecorewards-api/internal/service"
)

// MockWalletService implements service.WalletService.
type MockWalletService struct {
	CreditFn       func(ctx context.Context, userID uuid.UUID, amount int64, description string) (*service.CreditResult, error)
	DebitFn        func(ctx context.Context, userID uuid.UUID, rewardID string, amount int64, description string) (*domain.RedemptionClaim, error)
	RedeemFn       func(ctx context.Context, userID uuid.UUID, rewardID string) (*domain.RedemptionClaim, error)
	ClaimFn        func(ctx context.Context, userID, claimID uuid.UUID) (*domain.RedemptionClaim, error)
	BalanceFn      func(ctx context.Context, userID uuid.UUID) (int64, error)
	TransactionsFn func(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.LedgerEntry, error)
	ClaimsFn       func(ctx context.Context, userID uuid.UUID) ([]*domain.RedemptionClaim, error)

	// Rewards is returned by RedemptionOptions.
	Rewards []domain.Reward
}

var _ service.WalletService = (*MockWalletService)(nil)

// Credit implements service.WalletService.
func (m *MockWalletService) Credit(
	ctx context.Context,
	userID uuid.UUID,
	amount int64,
	description string,
) (*service.CreditResult, error) {
	if m.CreditFn == nil {
		return nil, ErrNotConfigured
	}
	return m.CreditFn(ctx, userID, amount, description)
}

// Debit implements service.WalletService.
func (m *MockWalletService) Debit(
	ctx context.Context,
	userID uuid.UUID,
	rewardID string,
	amount int64,
	description string,
) (*domain.RedemptionClaim, error) {
	if m.DebitFn == nil {
		return nil, ErrNotConfigured
	}
	return m.DebitFn(ctx, userID, rewardID, amount, description)
}

// Redeem implements service.WalletService.
func (m *MockWalletService) Redeem(ctx context.Context, userID uuid.UUID, rewardID string) (*domain.RedemptionClaim, error) {
	if m.RedeemFn == nil {
		return nil, ErrNotConfigured
	}
	return m.RedeemFn(ctx, userID, rewardID)
}

// Claim implements service.WalletService.
func (m *MockWalletService) Claim(ctx context.Context, userID, claimID uuid.UUID) (*domain.RedemptionClaim, error) {
	if m.ClaimFn == nil {
		return nil, ErrNotConfigured
	}
	return m.ClaimFn(ctx, userID, claimID)
}

// Balance implements service.WalletService.
func (m *MockWalletService) Balance(ctx context.Context, userID uuid.UUID) (int64, error) {
	if m.BalanceFn == nil {
		return 0, ErrNotConfigured
	}
	return m.BalanceFn(ctx, userID)
}

// Transactions implements service.WalletService.
func (m *MockWalletService) Transactions(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.LedgerEntry, error) {
	if m.TransactionsFn == nil {
		return nil, ErrNotConfigured
	}
	return m.TransactionsFn(ctx, userID, limit)
}

// Claims implements service.WalletService.
func (m *MockWalletService) Claims(ctx context.Context, userID uuid.UUID) ([]*domain.RedemptionClaim, error) {
	if m.ClaimsFn == nil {
		return nil, ErrNotConfigured
	}
	return m.ClaimsFn(ctx, userID)
}

// RedemptionOptions implements service.WalletService.
func (m *MockWalletService) RedemptionOptions() []domain.Reward {
	return m.Rewards
}
