package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/ecorewards-api/internal/domain"
	"github.com/phrazzld/ecorewards-api/internal/store"
)

// credit appends an earn entry and raises the cached balance by its amount.
// It returns the new balance.
func (c *core) credit(ctx context.Context, txs store.Stores, entry *domain.LedgerEntry) (int64, error) {
	if err := txs.Ledger.Append(ctx, entry); err != nil {
		return 0, fmt.Errorf("append earn entry: %w", err)
	}
	balance, err := txs.Wallets.Credit(ctx, entry.UserID, entry.Amount)
	if err != nil {
		return 0, fmt.Errorf("credit wallet: %w", err)
	}
	if err := c.verify(ctx, txs, entry.UserID, balance, "credit"); err != nil {
		return 0, err
	}
	return balance, nil
}

// debit lowers the cached balance by cost, creates the pending claim and
// appends the matching redeem entry. The balance check and the decrement are
// one conditional statement, so concurrent debits cannot both pass a stale check.
func (c *core) debit(
	ctx context.Context,
	txs store.Stores,
	userID uuid.UUID,
	rewardID string,
	cost int64,
	description string,
) (*domain.RedemptionClaim, int64, error) {
	balance, err := txs.Wallets.Debit(ctx, userID, cost)
	if err != nil {
		if errors.Is(err, store.ErrInsufficientFunds) {
			return nil, 0, ErrInsufficientBalance
		}
		return nil, 0, fmt.Errorf("debit wallet: %w", err)
	}

	now := c.now()
	claim, err := domain.NewRedemptionClaim(userID, rewardID, cost, now)
	if err != nil {
		return nil, 0, fmt.Errorf("build claim: %w", err)
	}
	// The redeem entry references the claim, so the claim is written first.
	if err := txs.Claims.Create(ctx, claim); err != nil {
		return nil, 0, fmt.Errorf("create claim: %w", err)
	}

	entry, err := domain.NewRedeemEntry(userID, cost, description, claim.ID, now)
	if err != nil {
		return nil, 0, fmt.Errorf("build redeem entry: %w", err)
	}
	if err := txs.Ledger.Append(ctx, entry); err != nil {
		return nil, 0, fmt.Errorf("append redeem entry: %w", err)
	}

	if err := c.verify(ctx, txs, userID, balance, "debit"); err != nil {
		return nil, 0, err
	}
	return claim, balance, nil
}

// verify compares the cached balance with the ledger sum when ledger
// verification is enabled.
func (c *core) verify(ctx context.Context, txs store.Stores, userID uuid.UUID, balance int64, operation string) error {
	if !c.verifyLedger {
		return nil
	}
	totals, err := txs.Ledger.Totals(ctx, userID)
	if err != nil {
		return fmt.Errorf("sum ledger: %w", err)
	}
	if totals.Sum != balance {
		return &InvariantViolation{CachedBalance: balance, LedgerSum: totals.Sum, Operation: operation}
	}
	return nil
}
