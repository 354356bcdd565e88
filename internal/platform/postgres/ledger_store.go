package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/ecorewards-api/internal/domain"
	"github.com/phrazzld/ecorewards-api/internal/platform/logger"
	"github.com/phrazzld/ecorewards-api/internal/store"
)

// PostgresLedgerStore implements store.LedgerStore using PostgreSQL.
// The ledger_entries table rejects UPDATE and DELETE through a trigger.
type PostgresLedgerStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresLedgerStore creates a new PostgresLedgerStore.
func NewPostgresLedgerStore(db store.DBTX, logger *slog.Logger) *PostgresLedgerStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresLedgerStore{
		db:     db,
		logger: logger.With(slog.String("component", "ledger_store")),
	}
}

var _ store.LedgerStore = (*PostgresLedgerStore)(nil)

// Append implements store.LedgerStore.Append.
func (s *PostgresLedgerStore) Append(ctx context.Context, entry *domain.LedgerEntry) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := entry.Validate(); err != nil {
		return store.NewStoreError("ledger_entry", "append", "invalid entry", errors.Join(store.ErrInvalidEntity, err))
	}

	var challengeID sql.NullString
	if entry.ChallengeID != "" {
		challengeID = sql.NullString{String: entry.ChallengeID, Valid: true}
	}
	var claimID any
	if entry.ClaimID != nil {
		claimID = *entry.ClaimID
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ledger_entries (id, user_id, kind, amount, description, challenge_id, claim_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.ID, entry.UserID, string(entry.Kind), entry.Amount, entry.Description,
		challengeID, claimID, entry.CreatedAt,
	)
	if err != nil {
		log.Error("failed to append ledger entry",
			slog.String("error", err.Error()),
			slog.String("entry_id", entry.ID.String()),
			slog.String("kind", string(entry.Kind)))
		return store.NewStoreError("ledger_entry", "append", "insert failed", MapError(err))
	}

	log.Debug("ledger entry appended",
		slog.String("entry_id", entry.ID.String()),
		slog.String("kind", string(entry.Kind)),
		slog.Int64("amount", entry.Amount))
	return nil
}

// ListByUser implements store.LedgerStore.ListByUser.
func (s *PostgresLedgerStore) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.LedgerEntry, error) {
	query := `
		SELECT id, user_id, kind, amount, description, challenge_id, claim_id, created_at
		FROM ledger_entries
		WHERE user_id = $1
		ORDER BY seq DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, store.NewStoreError("ledger_entry", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	entries := []*domain.LedgerEntry{}
	for rows.Next() {
		var e domain.LedgerEntry
		var kind string
		var challengeID sql.NullString
		var claimID uuid.NullUUID
		if err := rows.Scan(&e.ID, &e.UserID, &kind, &e.Amount, &e.Description,
			&challengeID, &claimID, &e.CreatedAt); err != nil {
			return nil, store.NewStoreError("ledger_entry", "list", "scan failed", err)
		}
		e.Kind = domain.EntryKind(kind)
		e.ChallengeID = challengeID.String
		if claimID.Valid {
			id := claimID.UUID
			e.ClaimID = &id
		}
		e.CreatedAt = e.CreatedAt.UTC()
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("ledger_entry", "list", "iteration failed", err)
	}
	return entries, nil
}

// Totals implements store.LedgerStore.Totals.
func (s *PostgresLedgerStore) Totals(ctx context.Context, userID uuid.UUID) (domain.LedgerTotals, error) {
	var t domain.LedgerTotals
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(amount), 0)::BIGINT,
			COUNT(*) FILTER (WHERE kind = 'earn'),
			COALESCE(SUM(amount) FILTER (WHERE kind = 'earn'), 0)::BIGINT,
			COALESCE(-SUM(amount) FILTER (WHERE kind = 'redeem'), 0)::BIGINT
		FROM ledger_entries
		WHERE user_id = $1`,
		userID,
	).Scan(&t.Sum, &t.EarnCount, &t.PointsEarned, &t.PointsRedeemed)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to total ledger",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return domain.LedgerTotals{}, store.NewStoreError("ledger_entry", "totals", "query failed", MapError(err))
	}
	return t, nil
}

// WithTx implements store.LedgerStore.WithTx.
func (s *PostgresLedgerStore) WithTx(tx *sql.Tx) store.LedgerStore {
	return &PostgresLedgerStore{db: tx, logger: s.logger}
}
