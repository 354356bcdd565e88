package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/ecorewards-api/internal/domain"
	"github.com/phrazzld/ecorewards-api/internal/domain/streak"
	"github.com/phrazzld/ecorewards-api/internal/recommend"
)

// featuredCount is how many leading recommendations are flagged as featured.
const featuredCount = 3

// OnboardingRequest is the payload of POST /api/onboarding.
// Values are -1 (negative), 0 (skipped) or 1 (affirmative).
type OnboardingRequest struct {
	Answers map[string]int `json:"answers" validate:"required,dive,keys,required,endkeys,min=-1,max=1"`
}

// OnboardingResponse acknowledges a stored answer set.
type OnboardingResponse struct {
	AnswerSetID uuid.UUID `json:"answer_set_id"`
	Answered    int       `json:"answered"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// RedeemRequest is the payload of POST /api/wallet/redeem.
type RedeemRequest struct {
	RewardID string `json:"reward_id" validate:"required,max=100"`
}

// ChallengeResponse is a catalog challenge.
type ChallengeResponse struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Category    string            `json:"category"`
	Recurrence  domain.Recurrence `json:"recurrence"`
	PointReward int64             `json:"point_reward"`
	BadgeIcon   string            `json:"badge_icon"`
}

// ChallengeDetailResponse adds the caller's progress to a challenge.
type ChallengeDetailResponse struct {
	ChallengeResponse
	IsActive      bool `json:"is_active"`
	CurrentStreak int  `json:"current_streak"`
}

// RecommendationResponse is one ranked challenge.
type RecommendationResponse struct {
	Challenge ChallengeResponse  `json:"challenge"`
	Score     int                `json:"score"`
	Reasons   []recommend.Reason `json:"reasons"`
	Featured  bool               `json:"featured"`
	Fallback  bool               `json:"fallback"`
}

// StreakResponse is the streak read model of one habit.
type StreakResponse struct {
	ChallengeID string `json:"challenge_id"`
	*streak.Status
}

// BalanceResponse is the body of GET /api/wallet.
type BalanceResponse struct {
	Balance int64 `json:"balance"`
}

// TransactionsResponse is the body of GET /api/wallet/transactions.
type TransactionsResponse struct {
	Transactions []*domain.LedgerEntry `json:"transactions"`
}

// RedemptionOptionsResponse is the body of GET /api/wallet/redemptions.
type RedemptionOptionsResponse struct {
	Rewards []domain.Reward `json:"rewards"`
}

// ClaimsResponse is the body of GET /api/wallet/claims.
type ClaimsResponse struct {
	Claims []*domain.RedemptionClaim `json:"claims"`
}

func challengeToResponse(ch domain.Challenge) ChallengeResponse {
	return ChallengeResponse{
		ID:          ch.ID,
		Title:       ch.Title,
		Description: ch.Description,
		Category:    ch.Category,
		Recurrence:  ch.Recurrence,
		PointReward: ch.PointReward,
		BadgeIcon:   domain.BadgeIcon(ch.BadgeTheme),
	}
}

func recommendationsToResponse(recs []recommend.Recommendation) []RecommendationResponse {
	out := make([]RecommendationResponse, len(recs))
	for i, rec := range recs {
		reasons := rec.Reasons
		if reasons == nil {
			reasons = []recommend.Reason{}
		}
		out[i] = RecommendationResponse{
			Challenge: challengeToResponse(rec.Challenge),
			Score:     rec.Score,
			Reasons:   reasons,
			Featured:  i < featuredCount,
			Fallback:  rec.Fallback,
		}
	}
	return out
}
