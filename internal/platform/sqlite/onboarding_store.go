package sqlite

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

// OnboardingStore implements store.OnboardingStore on SQLite.
type OnboardingStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewOnboardingStore creates a new OnboardingStore.
func NewOnboardingStore(db store.DBTX, logger *slog.Logger) *OnboardingStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OnboardingStore{db: db, logger: logger.With(slog.String("component", "onboarding_store"))}
}

var _ store.OnboardingStore = (*OnboardingStore)(nil)

// Save implements store.OnboardingStore.Save.
func (s *OnboardingStore) Save(ctx context.Context, set *domain.AnswerSet) error {
	if err := set.Validate(); err != nil {
		return store.NewStoreError("answer_set", "save", "invalid answer set", errors.Join(store.ErrInvalidEntity, err))
	}

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO onboarding_submissions (id, user_id, submitted_at) VALUES (?, ?, ?)`,
		set.ID.String(), set.UserID.String(), formatTime(set.SubmittedAt),
	); err != nil {
		return store.NewStoreError("answer_set", "save", "insert submission failed", MapError(err))
	}

	questionIDs := make([]string, 0, len(set.Answers))
	for qid := range set.Answers {
		questionIDs = append(questionIDs, qid)
	}
	sort.Strings(questionIDs)

	for _, qid := range questionIDs {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO onboarding_answers (submission_id, question_id, response) VALUES (?, ?, ?)`,
			set.ID.String(), qid, int(set.Answers[qid]),
		); err != nil {
			return store.NewStoreError("answer_set", "save", "insert answer failed", MapError(err))
		}
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("onboarding answers saved",
		slog.String("submission_id", set.ID.String()),
		slog.Int("answers", len(questionIDs)))
	return nil
}

// Latest implements store.OnboardingStore.Latest.
func (s *OnboardingStore) Latest(ctx context.Context, userID uuid.UUID) (*domain.AnswerSet, error) {
	set := domain.AnswerSet{UserID: userID, Answers: map[string]domain.Response{}}
	var submitted string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, submitted_at
		FROM onboarding_submissions
		WHERE user_id = ?
		ORDER BY seq DESC
		LIMIT 1`,
		userID.String(),
	).Scan(&set.ID, &submitted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrAnswerSetNotFound
		}
		return nil, store.NewStoreError("answer_set", "latest", "query failed", MapError(err))
	}
	if set.SubmittedAt, err = parseTime(submitted); err != nil {
		return nil, store.NewStoreError("answer_set", "latest", "scan failed", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT question_id, response FROM onboarding_answers WHERE submission_id = ?`,
		set.ID.String(),
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
func (s *OnboardingStore) WithTx(tx *sql.Tx) store.OnboardingStore {
	return &OnboardingStore{db: tx, logger: s.logger}
}
