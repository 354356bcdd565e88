package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/ecorewards-api/internal/domain"
	"github.com/phrazzld/ecorewards-api/internal/platform/logger"
	"github.com/phrazzld/ecorewards-api/internal/store"
)

// PostgresClaimStore implements store.ClaimStore using PostgreSQL.
type PostgresClaimStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresClaimStore creates a new PostgresClaimStore.
func NewPostgresClaimStore(db store.DBTX, logger *slog.Logger) *PostgresClaimStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresClaimStore{
		db:     db,
		logger: logger.With(slog.String("component", "claim_store")),
	}
}

var _ store.ClaimStore = (*PostgresClaimStore)(nil)

const claimColumns = `id, user_id, reward_id, cost, state, created_at, claimed_at`

// Create implements store.ClaimStore.Create.
func (s *PostgresClaimStore) Create(ctx context.Context, claim *domain.RedemptionClaim) error {
	if err := claim.Validate(); err != nil {
		return store.NewStoreError("claim", "create", "invalid claim", errors.Join(store.ErrInvalidEntity, err))
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO redemption_claims (`+claimColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		claim.ID, claim.UserID, claim.RewardID, claim.Cost, string(claim.State),
		claim.CreatedAt, claim.ClaimedAt,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create claim",
			slog.String("error", err.Error()),
			slog.String("claim_id", claim.ID.String()))
		return store.NewStoreError("claim", "create", "insert failed", MapError(err))
	}
	return nil
}

// Get implements store.ClaimStore.Get.
func (s *PostgresClaimStore) Get(ctx context.Context, userID, claimID uuid.UUID) (*domain.RedemptionClaim, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+claimColumns+`
		FROM redemption_claims
		WHERE id = $1 AND user_id = $2`,
		claimID, userID,
	)
	claim, err := scanClaim(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrClaimNotFound
		}
		return nil, store.NewStoreError("claim", "get", "query failed", MapError(err))
	}
	return claim, nil
}

// MarkClaimed implements store.ClaimStore.MarkClaimed.
func (s *PostgresClaimStore) MarkClaimed(ctx context.Context, userID, claimID uuid.UUID, at time.Time) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE redemption_claims
		SET state = $3, claimed_at = $4
		WHERE id = $1 AND user_id = $2 AND state = $5`,
		claimID, userID, string(domain.ClaimStateClaimed), at.UTC(), string(domain.ClaimStatePending),
	)
	if err != nil {
		return store.NewStoreError("claim", "mark_claimed", "update failed", MapError(err))
	}
	if err := CheckRowsAffected(result, store.ErrClaimNotPending); err != nil {
		if errors.Is(err, store.ErrClaimNotPending) {
			// Distinguish a foreign or unknown claim from one already claimed.
			if _, getErr := s.Get(ctx, userID, claimID); getErr != nil {
				return getErr
			}
		}
		return err
	}
	return nil
}

// ListByUser implements store.ClaimStore.ListByUser.
func (s *PostgresClaimStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.RedemptionClaim, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+claimColumns+`
		FROM redemption_claims
		WHERE user_id = $1
		ORDER BY seq DESC`,
		userID,
	)
	if err != nil {
		return nil, store.NewStoreError("claim", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	claims := []*domain.RedemptionClaim{}
	for rows.Next() {
		claim, err := scanClaim(rows)
		if err != nil {
			return nil, store.NewStoreError("claim", "list", "scan failed", err)
		}
		claims = append(claims, claim)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("claim", "list", "iteration failed", err)
	}
	return claims, nil
}

// WithTx implements store.ClaimStore.WithTx.
func (s *PostgresClaimStore) WithTx(tx *sql.Tx) store.ClaimStore {
	return &PostgresClaimStore{db: tx, logger: s.logger}
}

func scanClaim(row rowScanner) (*domain.RedemptionClaim, error) {
	var c domain.RedemptionClaim
	var state string
	var claimedAt sql.NullTime
	if err := row.Scan(&c.ID, &c.UserID, &c.RewardID, &c.Cost, &state, &c.CreatedAt, &claimedAt); err != nil {
		return nil, err
	}
	c.State = domain.ClaimState(state)
	c.CreatedAt = c.CreatedAt.UTC()
	if claimedAt.Valid {
		t := claimedAt.Time.UTC()
		c.ClaimedAt = &t
	}
	return &c, nil
}
