package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/ecorewards-api/internal/api/shared"
	"github.com/phrazzld/ecorewards-api/internal/domain"
	"github.com/phrazzld/ecorewards-api/internal/platform/logger"
	"github.com/phrazzld/ecorewards-api/internal/service"
)

// QuestionsResponse is the body of GET /api/questions.
type QuestionsResponse struct {
	Questions []domain.Question `json:"questions"`
}

// OnboardingHandler serves the onboarding questionnaire.
type OnboardingHandler struct {
	recommendations service.RecommendationService
	logger          *slog.Logger
}

// NewOnboardingHandler creates an OnboardingHandler.
func NewOnboardingHandler(recommendations service.RecommendationService, log *slog.Logger) *OnboardingHandler {
	if log == nil {
		log = slog.Default()
	}
	return &OnboardingHandler{
		recommendations: recommendations,
		logger:          log.With(slog.String("component", "onboarding_handler")),
	}
}

// ListQuestions handles GET /api/questions.
func (h *OnboardingHandler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, QuestionsResponse{Questions: h.recommendations.Questions()})
}

// SubmitAnswers handles POST /api/onboarding. Every call stores a new answer set.
func (h *OnboardingHandler) SubmitAnswers(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req OnboardingRequest
	if !decodeAndValidate(w, r, log, &req) {
		return
	}

	answers := make(map[string]domain.Response, len(req.Answers))
	for qid, v := range req.Answers {
		answers[qid] = domain.Response(v)
	}

	set, err := h.recommendations.SubmitAnswers(r.Context(), userID, answers)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to save onboarding answers")
		return
	}

	log.Debug("onboarding answers stored", slog.String("answer_set_id", set.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, OnboardingResponse{
		AnswerSetID: set.ID,
		Answered:    len(set.Answers),
		SubmittedAt: set.SubmittedAt,
	})
}
