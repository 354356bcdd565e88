package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/ecorewards-api/internal/platform/logger"
	"github.com/phrazzld/ecorewards-api/internal/store"
)

// WalletStore implements store.WalletStore on SQLite.
type WalletStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewWalletStore creates a new WalletStore.
func NewWalletStore(db store.DBTX, logger *slog.Logger) *WalletStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WalletStore{db: db, logger: logger.With(slog.String("component", "wallet_store"))}
}

var _ store.WalletStore = (*WalletStore)(nil)

// Balance implements store.WalletStore.Balance.
func (s *WalletStore) Balance(ctx context.Context, userID uuid.UUID) (int64, error) {
	var balance int64
	err := s.db.QueryRowContext(ctx, `SELECT balance FROM wallets WHERE user_id = ?`, userID.String()).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, store.NewStoreError("wallet", "balance", "query failed", MapError(err))
	}
	return balance, nil
}

// Credit implements store.WalletStore.Credit.
func (s *WalletStore) Credit(ctx context.Context, userID uuid.UUID, amount int64) (int64, error) {
	var balance int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO wallets (user_id, balance, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE
		SET balance = balance + excluded.balance, updated_at = excluded.updated_at
		RETURNING balance`,
		userID.String(), amount, formatTime(time.Now()),
	).Scan(&balance)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to credit wallet",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return 0, store.NewStoreError("wallet", "credit", "upsert failed", MapError(err))
	}
	return balance, nil
}

// Debit implements store.WalletStore.Debit.
// The balance check and decrement are one statement.
func (s *WalletStore) Debit(ctx context.Context, userID uuid.UUID, amount int64) (int64, error) {
	var balance int64
	err := s.db.QueryRowContext(ctx, `
		UPDATE wallets
		SET balance = balance - ?, updated_at = ?
		WHERE user_id = ? AND balance >= ?
		RETURNING balance`,
		amount, formatTime(time.Now()), userID.String(), amount,
	).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, store.ErrInsufficientFunds
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to debit wallet",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return 0, store.NewStoreError("wallet", "debit", "update failed", MapError(err))
	}
	return balance, nil
}

// WithTx implements store.WalletStore.WithTx.
func (s *WalletStore) WithTx(tx *sql.Tx) store.WalletStore {
	return &WalletStore{db: tx, logger: s.logger}
}
