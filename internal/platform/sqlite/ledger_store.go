package sqlite

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

// LedgerStore implements store.LedgerStore on SQLite.
// Triggers on ledger_entries abort any UPDATE or DELETE.
type LedgerStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewLedgerStore creates a new LedgerStore.
func NewLedgerStore(db store.DBTX, logger *slog.Logger) *LedgerStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LedgerStore{db: db, logger: logger.With(slog.String("component", "ledger_store"))}
}

var _ store.LedgerStore = (*LedgerStore)(nil)

// Append implements store.LedgerStore.Append.
func (s *LedgerStore) Append(ctx context.Context, entry *domain.LedgerEntry) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := entry.Validate(); err != nil {
		return store.NewStoreError("ledger_entry", "append", "invalid entry", errors.Join(store.ErrInvalidEntity, err))
	}

	var challengeID, claimID sql.NullString
	if entry.ChallengeID != "" {
		challengeID = sql.NullString{String: entry.ChallengeID, Valid: true}
	}
	if entry.ClaimID != nil {
		claimID = sql.NullString{String: entry.ClaimID.String(), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ledger_entries (id, user_id, kind, amount, description, challenge_id, claim_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID.String(), entry.UserID.String(), string(entry.Kind), entry.Amount, entry.Description,
		challengeID, claimID, formatTime(entry.CreatedAt),
	)
	if err != nil {
		log.Error("failed to append ledger entry",
			slog.String("error", err.Error()),
			slog.String("entry_id", entry.ID.String()))
		return store.NewStoreError("ledger_entry", "append", "insert failed", MapError(err))
	}

	log.Debug("ledger entry appended",
		slog.String("entry_id", entry.ID.String()),
		slog.String("kind", string(entry.Kind)),
		slog.Int64("amount", entry.Amount))
	return nil
}

// ListByUser implements store.LedgerStore.ListByUser.
func (s *LedgerStore) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.LedgerEntry, error) {
	if limit <= 0 {
		limit = -1 // SQLite: negative LIMIT means no limit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, kind, amount, description, challenge_id, claim_id, created_at
		FROM ledger_entries
		WHERE user_id = ?
		ORDER BY seq DESC
		LIMIT ?`,
		userID.String(), limit,
	)
	if err != nil {
		return nil, store.NewStoreError("ledger_entry", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	entries := []*domain.LedgerEntry{}
	for rows.Next() {
		var e domain.LedgerEntry
		var kind, created string
		var challengeID sql.NullString
		var claimID uuid.NullUUID
		if err := rows.Scan(&e.ID, &e.UserID, &kind, &e.Amount, &e.Description,
			&challengeID, &claimID, &created); err != nil {
			return nil, store.NewStoreError("ledger_entry", "list", "scan failed", err)
		}
		if e.CreatedAt, err = parseTime(created); err != nil {
			return nil, store.NewStoreError("ledger_entry", "list", "scan failed", err)
		}
		e.Kind = domain.EntryKind(kind)
		e.ChallengeID = challengeID.String
		if claimID.Valid {
			id := claimID.UUID
			e.ClaimID = &id
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("ledger_entry", "list", "iteration failed", err)
	}
	return entries, nil
}

// Totals implements store.LedgerStore.Totals.
func (s *LedgerStore) Totals(ctx context.Context, userID uuid.UUID) (domain.LedgerTotals, error) {
	var t domain.LedgerTotals
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(amount), 0),
			COALESCE(SUM(CASE WHEN kind = 'earn' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN kind = 'earn' THEN amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN kind = 'redeem' THEN -amount ELSE 0 END), 0)
		FROM ledger_entries
		WHERE user_id = ?`,
		userID.String(),
	).Scan(&t.Sum, &t.EarnCount, &t.PointsEarned, &t.PointsRedeemed)
	if err != nil {
		return domain.LedgerTotals{}, store.NewStoreError("ledger_entry", "totals", "query failed", MapError(err))
	}
	return t, nil
}

// WithTx implements store.LedgerStore.WithTx.
func (s *LedgerStore) WithTx(tx *sql.Tx) store.LedgerStore {
	return &LedgerStore{db: tx, logger: s.logger}
}
