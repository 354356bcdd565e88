package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/ecorewards-api/internal/domain"
	"github.com/phrazzld/ecorewards-api/internal/events"
	"github.com/phrazzld/ecorewards-api/internal/platform/logger"
	"github.com/phrazzld/ecorewards-api/internal/store"
)

// CreditResult is the outcome of a credit.
type CreditResult struct {
	Entry   *domain.LedgerEntry `json:"entry"`
	Balance int64               `json:"balance"`
}

// WalletService owns a user's point balance, ledger history and redemption claims.
type WalletService interface {
	// Credit appends an earn entry of amount and raises the balance.
	// Returns ErrInvalidAmount when amount is not positive.
	Credit(ctx context.Context, userID uuid.UUID, amount int64, description string) (*CreditResult, error)

	// Debit lowers the balance by amount, appends a redeem entry and creates a
	// pending claim for rewardID, all in one transaction.
	// Returns ErrInvalidAmount or ErrInsufficientBalance; the balance is left
	// unchanged on failure.
	Debit(ctx context.Context, userID uuid.UUID, rewardID string, amount int64, description string) (*domain.RedemptionClaim, error)

	// Redeem debits the catalog cost of rewardID.
	// Returns ErrRewardNotFound for an unknown reward.
	Redeem(ctx context.Context, userID uuid.UUID, rewardID string) (*domain.RedemptionClaim, error)

	// Claim moves a pending claim to claimed.
	// Returns ErrClaimNotFound when the claim does not exist or is not the
	// user's, and ErrAlreadyClaimed on every attempt after the first success.
	Claim(ctx context.Context, userID, claimID uuid.UUID) (*domain.RedemptionClaim, error)

	// Balance returns the cached balance. With ledger verification enabled a
	// balance that disagrees with the ledger returns ErrLedgerCorrupted.
	Balance(ctx context.Context, userID uuid.UUID) (int64, error)

	// Transactions returns the user's ledger entries, newest first.
	// A limit <= 0 returns all entries.
	Transactions(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.LedgerEntry, error)

	// Claims returns the user's redemption claims, newest first.
	Claims(ctx context.Context, userID uuid.UUID) ([]*domain.RedemptionClaim, error)

	// RedemptionOptions lists every catalog reward regardless of balance.
	RedemptionOptions() []domain.Reward
}

type walletServiceImpl struct {
	*core
}

var _ WalletService = (*walletServiceImpl)(nil)

// NewWalletService creates a new WalletService.
func NewWalletService(deps Deps) (WalletService, error) {
	c, err := newCore(deps, "wallet_service")
	if err != nil {
		return nil, err
	}
	return &walletServiceImpl{core: c}, nil
}

func (s *walletServiceImpl) Credit(
	ctx context.Context,
	userID uuid.UUID,
	amount int64,
	description string,
) (*CreditResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	entry, err := domain.NewEarnEntry(userID, amount, description, "", s.now())
	if err != nil {
		return nil, NewServiceError("credit", "invalid ledger entry", err)
	}

	var result CreditResult
	err = s.mutate(ctx, userID, "credit", func(ctx context.Context, txs store.Stores) error {
		balance, err := s.credit(ctx, txs, entry)
		if err != nil {
			return err
		}
		result = CreditResult{Entry: entry, Balance: balance}
		return nil
	})
	if err != nil {
		log.Warn("credit failed",
			slog.String("user_id", userID.String()),
			slog.Int64("amount", amount),
			slog.String("error", err.Error()))
		return nil, err
	}

	log.Info("wallet credited",
		slog.String("user_id", userID.String()),
		slog.Int64("amount", amount),
		slog.Int64("balance", result.Balance))
	return &result, nil
}

func (s *walletServiceImpl) Debit(
	ctx context.Context,
	userID uuid.UUID,
	rewardID string,
	amount int64,
	description string,
) (*domain.RedemptionClaim, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	var (
		claim   *domain.RedemptionClaim
		balance int64
	)
	err := s.mutate(ctx, userID, "debit", func(ctx context.Context, txs store.Stores) error {
		var err error
		claim, balance, err = s.debit(ctx, txs, userID, rewardID, amount, description)
		return err
	})
	if err != nil {
		log.Warn("debit failed",
			slog.String("user_id", userID.String()),
			slog.String("reward_id", rewardID),
			slog.Int64("amount", amount),
			slog.String("error", err.Error()))
		return nil, err
	}

	log.Info("wallet debited",
		slog.String("user_id", userID.String()),
		slog.String("claim_id", claim.ID.String()),
		slog.Int64("amount", amount),
		slog.Int64("balance", balance))
	s.emit(ctx, events.RewardRedeemed, userID, map[string]any{
		"claim_id":  claim.ID,
		"reward_id": rewardID,
		"cost":      amount,
		"balance":   balance,
	})
	return claim, nil
}

func (s *walletServiceImpl) Redeem(ctx context.Context, userID uuid.UUID, rewardID string) (*domain.RedemptionClaim, error) {
	reward, err := s.catalog.Reward(rewardID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrRewardNotFound
		}
		return nil, NewServiceError("redeem", "failed to look up reward", err)
	}
	return s.Debit(ctx, userID, reward.ID, reward.Cost, reward.Title)
}

func (s *walletServiceImpl) Claim(ctx context.Context, userID, claimID uuid.UUID) (*domain.RedemptionClaim, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var claimed *domain.RedemptionClaim
	err := s.mutate(ctx, userID, "claim", func(ctx context.Context, txs store.Stores) error {
		claim, err := txs.Claims.Get(ctx, userID, claimID)
		if err != nil {
			if store.IsNotFoundError(err) {
				return ErrClaimNotFound
			}
			return fmt.Errorf("get claim: %w", err)
		}

		next, err := claim.MarkClaimed(s.now())
		if err != nil {
			return ErrAlreadyClaimed
		}
		if err := txs.Claims.MarkClaimed(ctx, userID, claimID, *next.ClaimedAt); err != nil {
			switch {
			case errors.Is(err, store.ErrClaimNotPending):
				return ErrAlreadyClaimed
			case store.IsNotFoundError(err):
				return ErrClaimNotFound
			}
			return fmt.Errorf("mark claimed: %w", err)
		}
		claimed = next
		return nil
	})
	if err != nil {
		log.Warn("claim failed",
			slog.String("user_id", userID.String()),
			slog.String("claim_id", claimID.String()),
			slog.String("error", err.Error()))
		return nil, err
	}

	log.Info("reward claimed",
		slog.String("user_id", userID.String()),
		slog.String("claim_id", claimID.String()))
	s.emit(ctx, events.RewardClaimed, userID, map[string]any{
		"claim_id":  claimed.ID,
		"reward_id": claimed.RewardID,
	})
	return claimed, nil
}

func (s *walletServiceImpl) Balance(ctx context.Context, userID uuid.UUID) (int64, error) {
	var balance int64
	err := s.verifiedRead(ctx, userID, "balance", func(ctx context.Context, txs store.Stores) error {
		var err error
		balance, err = txs.Wallets.Balance(ctx, userID)
		if err != nil {
			return fmt.Errorf("read balance: %w", err)
		}
		return s.verify(ctx, txs, userID, balance, "balance")
	})
	if err != nil {
		s.reportViolation(ctx, userID, err)
		return 0, err
	}
	return balance, nil
}

func (s *walletServiceImpl) Transactions(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.LedgerEntry, error) {
	entries, err := s.stores.Ledger.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, NewServiceError("transactions", "failed to list ledger entries", err)
	}
	return entries, nil
}

func (s *walletServiceImpl) Claims(ctx context.Context, userID uuid.UUID) ([]*domain.RedemptionClaim, error) {
	claims, err := s.stores.Claims.ListByUser(ctx, userID)
	if err != nil {
		return nil, NewServiceError("claims", "failed to list claims", err)
	}
	return claims, nil
}

func (s *walletServiceImpl) RedemptionOptions() []domain.Reward {
	return s.catalog.Rewards()
}
