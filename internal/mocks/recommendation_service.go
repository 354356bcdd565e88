package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/ecorewards-api/internal/domain"
	"github.com/phrazzld/ecorewards-api/internal/recommend"
	"github.com/phrazzld/ecorewards-api/internal/service"
)

// MockRecommendationService implements service.RecommendationService.
type MockRecommendationService struct {
	SubmitAnswersFn func(ctx context.Context, userID uuid.UUID, answers map[string]domain.Response) (*domain.AnswerSet, error)
	RecommendFn     func(ctx context.Context, userID uuid.UUID) ([]recommend.Recommendation, error)

	// QuestionList is returned by Questions.
	QuestionList []domain.Question
}

var _ service.RecommendationService = (*MockRecommendationService)(nil)

// Questions implements service.RecommendationService.
func (m *MockRecommendationService) Questions() []domain.Question {
	return m.QuestionList
}

// SubmitAnswers implements service.RecommendationService.
func (m *MockRecommendationService) SubmitAnswers(
	ctx context.Context,
	userID uuid.UUID,
	answers map[string]domain.Response,
) (*domain.AnswerSet, error) {
	if m.SubmitAnswersFn == nil {
		return nil, ErrNotConfigured
	}
	return m.SubmitAnswersFn(ctx, userID, answers)
}

// Recommend implements service.RecommendationService.
func (m *MockRecommendationService) Recommend(ctx context.Context, userID uuid.UUID) ([]recommend.Recommendation, error) {
	if m.RecommendFn == nil {
		return nil, ErrNotConfigured
	}
	return m.RecommendFn(ctx, userID)
}
