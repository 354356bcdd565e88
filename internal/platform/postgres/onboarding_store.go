package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"github.com/phrazzld/ecorewards-api/internal/domain"
	"github.com/phrazzld/ecorewards-api/internal/platform/logger"
	"github.com/phrazzld/ecorewards-api/internal/store"
)

// PostgresOnboardingStore implements store.OnboardingStore using PostgreSQL.
type PostgresOnboardingStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresOnboardingStore creates a new PostgresOnboardingStore.
func NewPostgresOnboardingStore(db store.DBTX, logger *slog.Logger) *PostgresOnboardingStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresOnboardingStore{
		db:     db,
		logger: logger.With(slog.String("component", "onboarding_store")),
	}
}

var _ store.OnboardingStore = (*PostgresOnboardingStore)(nil)

// Save implements store.OnboardingStore.Save.
func (s *PostgresOnboardingStore) Save(ctx context.Context, set *domain.AnswerSet) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := set.Validate(); err != nil {
		return store.NewStoreError("answer_set", "save", "invalid answer set", errors.Join(store.ErrInvalidEntity, err))
	}

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO onboarding_submissions (id, user_id, submitted_at) VALUES ($1, $2, $3)`,
		set.ID, set.UserID, set.SubmittedAt,
	); err != nil {
		log.Error("failed to save onboarding submission",
			slog.String("error", err.Error()),
			slog.String("submission_id", set.ID.String()))
		return store.NewStoreError("answer_set", "save", "insert submission failed", MapError(err))
	}

	// Sorted for a deterministic insert order.
	questionIDs := make([]string, 0, len(set.Answers))
	for qid := range set.Answers {
		questionIDs = append(questionIDs, qid)
	}
	sort.Strings(questionIDs)

	for _, qid := range questionIDs {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO onboarding_answers (submission_id, question_id, response) VALUES ($1, $2, $3)`,
			set.ID, qid, int(set.Answers[qid]),
		); err != nil {
			return store.NewStoreError("answer_set", "save", "insert answer failed", MapError(err))
		}
	}

	log.Debug("onboarding answers saved",
		slog.String("submission_id", set.ID.String()),
		slog.Int("answers", len(questionIDs)))
	return nil
}

// Latest implements store.OnboardingStore.Latest.
func (s *PostgresOnboardingStore) Latest(ctx context.Context, userID uuid.UUID) (*domain.AnswerSet, error) {
	set := domain.AnswerSet{UserID: userID, Answers: map[string]domain.Response{}}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, submitted_at
		FROM onboarding_submissions
		WHERE user_id = $1
		ORDER BY seq DESC
		LIMIT 1`,
		userID,
	).Scan(&set.ID, &set.SubmittedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrAnswerSetNotFound
		}
		return nil, store.NewStoreError("answer_set", "latest", "query failed", MapError(err))
	}
	set.SubmittedAt = set.SubmittedAt.UTC()

	rows, err := s.db.QueryContext(ctx,
		`SELECT question_id, response FROM onboarding_answers WHERE submission_id = $1`,
		set.ID,
	)
	if err != nil {
		return nil, store.NewStoreError("answer_set", "latest", "answers query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var qid string
		var response int
		if err := rows.Scan(&qid, &response); err != nil {
			return nil, store.NewStoreError("answer_set", "latest", "scan failed", err)
		}
		set.Answers[qid] = domain.Response(response)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("answer_set", "latest", "iteration failed", err)
	}
	return &set, nil
}

// WithTx implements store.OnboardingStore.WithTx.
func (s *PostgresOnboardingStore) WithTx(tx *sql.Tx) store.OnboardingStore {
	return &PostgresOnboardingStore{db: tx, logger: s.logger}
}
