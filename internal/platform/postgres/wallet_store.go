package postgres

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

// PostgresWalletStore implements store.WalletStore using PostgreSQL.
type PostgresWalletStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresWalletStore creates a new PostgresWalletStore.
func NewPostgresWalletStore(db store.DBTX, logger *slog.Logger) *PostgresWalletStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresWalletStore{
		db:     db,
		logger: logger.With(slog.String("component", "wallet_store")),
	}
}

var _ store.WalletStore = (*PostgresWalletStore)(nil)

// Balance implements store.WalletStore.Balance.
func (s *PostgresWalletStore) Balance(ctx context.Context, userID uuid.UUID) (int64, error) {
	var balance int64
	err := s.db.QueryRowContext(ctx,
		`SELECT balance FROM wallets WHERE user_id = $1`, userID,
	).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, store.NewStoreError("wallet", "balance", "query failed", MapError(err))
	}
	return balance, nil
}

// Credit implements store.WalletStore.Credit.
func (s *PostgresWalletStore) Credit(ctx context.Context, userID uuid.UUID, amount int64) (int64, error) {
	var balance int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO wallets (user_id, balance, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET balance = wallets.balance + EXCLUDED.balance, updated_at = EXCLUDED.updated_at
		RETURNING balance`,
		userID, amount, time.Now().UTC(),
	).Scan(&balance)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to credit wallet",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.Int64("amount", amount))
		return 0, store.NewStoreError("wallet", "credit", "upsert failed", MapError(err))
	}
	return balance, nil
}

// Debit implements store.WalletStore.Debit.
// The balance check and decrement are one statement.
func (s *PostgresWalletStore) Debit(ctx context.Context, userID uuid.UUID, amount int64) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var balance int64
	err := s.db.QueryRowContext(ctx, `
		UPDATE wallets
		SET balance = balance - $2, updated_at = $3
		WHERE user_id = $1 AND balance >= $2
		RETURNING balance`,
		userID, amount, time.Now().UTC(),
	).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("debit rejected",
				slog.String("user_id", userID.String()),
				slog.Int64("amount", amount))
			return 0, store.ErrInsufficientFunds
		}
		log.Error("failed to debit wallet",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.Int64("amount", amount))
		return 0, store.NewStoreError("wallet", "debit", "update failed", MapError(err))
	}
	return balance, nil
}

// WithTx implements store.WalletStore.WithTx.
func (s *PostgresWalletStore) WithTx(tx *sql.Tx) store.WalletStore {
	return &PostgresWalletStore{db: tx, logger: s.logger}
}
