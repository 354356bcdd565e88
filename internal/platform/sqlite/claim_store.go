package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/ecorewards-api/internal/domain"
	"github.com/phrazzld/ecorewards-api/internal/store"
)

// ClaimStore implements store.ClaimStore on SQLite.
type ClaimStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewClaimStore creates a new ClaimStore.
func NewClaimStore(db store.DBTX, logger *slog.Logger) *ClaimStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ClaimStore{db: db, logger: logger.With(slog.String("component", "claim_store"))}
}

var _ store.ClaimStore = (*ClaimStore)(nil)

const claimColumns = `id, user_id, reward_id, cost, state, created_at, claimed_at`

// Create implements store.ClaimStore.Create.
func (s *ClaimStore) Create(ctx context.Context, claim *domain.RedemptionClaim) error {
	if err := claim.Validate(); err != nil {
		return store.NewStoreError("claim", "create", "invalid claim", errors.Join(store.ErrInvalidEntity, err))
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO redemption_claims (`+claimColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		claim.ID.String(), claim.UserID.String(), claim.RewardID, claim.Cost, string(claim.State),
		formatTime(claim.CreatedAt), formatNullTime(claim.ClaimedAt),
	)
	if err != nil {
		return store.NewStoreError("claim", "create", "insert failed", MapError(err))
	}
	return nil
}

// Get implements store.ClaimStore.Get.
func (s *ClaimStore) Get(ctx context.Context, userID, claimID uuid.UUID) (*domain.RedemptionClaim, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+claimColumns+` FROM redemption_claims WHERE id = ? AND user_id = ?`,
		claimID.String(), userID.String(),
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
func (s *ClaimStore) MarkClaimed(ctx context.Context, userID, claimID uuid.UUID, at time.Time) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE redemption_claims
		SET state = ?, claimed_at = ?
		WHERE id = ? AND user_id = ? AND state = ?`,
		string(domain.ClaimStateClaimed), formatTime(at),
		claimID.String(), userID.String(), string(domain.ClaimStatePending),
	)
	if err != nil {
		return store.NewStoreError("claim", "mark_claimed", "update failed", MapError(err))
	}
	if err := checkRowsAffected(result, store.ErrClaimNotPending); err != nil {
		if errors.Is(err, store.ErrClaimNotPending) {
			if _, getErr := s.Get(ctx, userID, claimID); getErr != nil {
				return getErr
			}
		}
		return err
	}
	return nil
}

// ListByUser implements store.ClaimStore.ListByUser.
func (s *ClaimStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.RedemptionClaim, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+claimColumns+` FROM redemption_claims WHERE user_id = ? ORDER BY seq DESC`,
		userID.String(),
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
func (s *ClaimStore) WithTx(tx *sql.Tx) store.ClaimStore {
	return &ClaimStore{db: tx, logger: s.logger}
}

func scanClaim(row rowScanner) (*domain.RedemptionClaim, error) {
	var c domain.RedemptionClaim
	var state, created string
	var claimedAt sql.NullString
	if err := row.Scan(&c.ID, &c.UserID, &c.RewardID, &c.Cost, &state, &created, &claimedAt); err != nil {
		return nil, err
	}
	var err error
	if c.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if c.ClaimedAt, err = parseNullTime(claimedAt); err != nil {
		return nil, err
	}
	c.State = domain.ClaimState(state)
	return &c, nil
}
