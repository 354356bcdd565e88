package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/ecorewards-api/internal/domain"
	"github.com/phrazzld/ecorewards-api/internal/events"
	"github.com/phrazzld/ecorewards-api/internal/platform/logger"
	"github.com/phrazzld/ecorewards-api/internal/recommend"
	"github.com/phrazzld/ecorewards-api/internal/store"
)

// RecommendationService stores onboarding answers and ranks challenges against them.
type RecommendationService interface {
	// Questions lists the onboarding questions.
	Questions() []domain.Question

	// SubmitAnswers stores a new answer set for the user. Earlier sets are kept
	// but no longer used.
	// Returns ErrInvalidAnswers for unknown question ids or out-of-range values.
	SubmitAnswers(ctx context.Context, userID uuid.UUID, answers map[string]domain.Response) (*domain.AnswerSet, error)

	// Recommend ranks the challenges the user has not started against the
	// latest answer set.
	Recommend(ctx context.Context, userID uuid.UUID) ([]recommend.Recommendation, error)
}

type recommendationServiceImpl struct {
	*core
	scorer *recommend.Scorer
}

var _ RecommendationService = (*recommendationServiceImpl)(nil)

// NewRecommendationService creates a new RecommendationService.
func NewRecommendationService(deps Deps, params recommend.Params) (RecommendationService, error) {
	c, err := newCore(deps, "recommendation_service")
	if err != nil {
		return nil, err
	}
	return &recommendationServiceImpl{
		core:   c,
		scorer: recommend.NewScorer(params, c.catalog.Questions()),
	}, nil
}

func (s *recommendationServiceImpl) Questions() []domain.Question {
	return s.catalog.Questions()
}

func (s *recommendationServiceImpl) SubmitAnswers(
	ctx context.Context,
	userID uuid.UUID,
	answers map[string]domain.Response,
) (*domain.AnswerSet, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	for qid := range answers {
		if !s.catalog.HasQuestion(qid) {
			return nil, fmt.Errorf("%w: unknown question %q", ErrInvalidAnswers, qid)
		}
	}
	set, err := domain.NewAnswerSet(userID, answers, s.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAnswers, err)
	}

	err = s.mutate(ctx, userID, "submit_answers", func(ctx context.Context, txs store.Stores) error {
		return txs.Onboarding.Save(ctx, set)
	})
	if err != nil {
		return nil, err
	}

	log.Info("onboarding answers submitted",
		slog.String("user_id", userID.String()),
		slog.Int("answer_count", len(set.Answers)),
		slog.Int("affirmative_count", len(set.Affirmative())))
	s.emit(ctx, events.OnboardingSubmitted, userID, map[string]any{
		"answer_set_id": set.ID,
		"answer_count":  len(set.Answers),
	})
	return set, nil
}

func (s *recommendationServiceImpl) Recommend(ctx context.Context, userID uuid.UUID) ([]recommend.Recommendation, error) {
	var (
		answers *domain.AnswerSet
		habits  []*domain.ActiveHabit
	)
	err := s.read(ctx, "recommend", func(ctx context.Context, txs store.Stores) error {
		var err error
		answers, err = txs.Onboarding.Latest(ctx, userID)
		if err != nil {
			if !store.IsNotFoundError(err) {
				return fmt.Errorf("latest answers: %w", err)
			}
			answers = nil
		}
		habits, err = txs.Habits.ListByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("list habits: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	active := make(map[string]struct{}, len(habits))
	for _, h := range habits {
		active[h.ChallengeID] = struct{}{}
	}
	return s.scorer.Recommend(answers, active, s.catalog.Challenges()), nil
}
