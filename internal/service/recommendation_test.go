package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/ecorewards-api/internal/domain"
	"github.com/phrazzld/ecorewards-api/internal/events"
	"github.com/phrazzld/ecorewards-api/internal/recommend"
	"github.com/phrazzld/ecorewards-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func challengeIDs(recs []recommend.Recommendation) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Challenge.ID
	}
	return out
}

func TestSubmitAnswersValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	tests := []struct {
		name    string
		answers map[string]domain.Response
	}{
		{"unknown question", map[string]domain.Response{"42": domain.ResponseAffirmative}},
		{"out of range response", map[string]domain.Response{"1": 3}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.recs.SubmitAnswers(ctx, userID, tc.answers)
			assert.ErrorIs(t, err, service.ErrInvalidAnswers)
		})
	}
	assert.Empty(t, env.events.Types())
}

func TestRecommendWithoutAnswersFallsBack(t *testing.T) {
	env := newTestEnv(t)
	recs, err := env.recs.Recommend(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, []string{"cycle", "bus", "cook"}, challengeIDs(recs))
	for _, r := range recs {
		assert.True(t, r.Fallback)
	}
}

func TestRecommendUsesLatestAnswersAndSkipsActive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := env.recs.SubmitAnswers(ctx, userID, map[string]domain.Response{
		"1": domain.ResponseAffirmative,
		"3": domain.ResponseAffirmative,
	})
	require.NoError(t, err)

	recs, err := env.recs.Recommend(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, []string{"cook", "cycle", "bus", "walk"}, challengeIDs(recs))
	assert.Equal(t, 2, recs[0].Score)
	require.Len(t, recs[0].Reasons, 2)
	assert.Equal(t, "Do you own a bicycle?", recs[0].Reasons[0].Prompt)

	_, err = env.habits.Start(ctx, userID, "cook")
	require.NoError(t, err)

	// Re-onboarding replaces the set used for recommendations.
	env.clock.Advance(time.Minute)
	_, err = env.recs.SubmitAnswers(ctx, userID, map[string]domain.Response{
		"1": domain.ResponseNegative,
		"2": domain.ResponseAffirmative,
	})
	require.NoError(t, err)

	recs, err = env.recs.Recommend(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, []string{"bus", "cycle", "walk"}, challengeIDs(recs))
	assert.NotContains(t, challengeIDs(recs), "cook")

	again, err := env.recs.Recommend(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, recs, again)

	assert.Contains(t, env.events.Types(), events.OnboardingSubmitted)
	assert.Len(t, env.recs.Questions(), 3)
}
