package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/phrazzld/ecorewards-api/internal/api/shared"
	"github.com/phrazzld/ecorewards-api/internal/domain"
	"github.com/phrazzld/ecorewards-api/internal/platform/logger"
	"github.com/phrazzld/ecorewards-api/internal/service"
)

// ChallengeCatalog is the read-only view of challenge definitions the
// handlers need. *catalog.Catalog satisfies it.
type ChallengeCatalog interface {
	Challenges() []domain.Challenge
	Challenge(id string) (domain.Challenge, error)
}

// ChallengesResponse is the body of GET /api/challenges.
type ChallengesResponse struct {
	Challenges []ChallengeResponse `json:"challenges"`
}

// RecommendationsResponse is the body of GET /api/challenges/recommended.
type RecommendationsResponse struct {
	Recommendations []RecommendationResponse `json:"recommendations"`
}

// ChallengeHandler serves challenge browsing and the habit lifecycle.
type ChallengeHandler struct {
	catalog         ChallengeCatalog
	habits          service.HabitService
	recommendations service.RecommendationService
	logger          *slog.Logger
}

// NewChallengeHandler creates a ChallengeHandler.
func NewChallengeHandler(
	catalog ChallengeCatalog,
	habits service.HabitService,
	recommendations service.RecommendationService,
	log *slog.Logger,
) *ChallengeHandler {
	if log == nil {
		log = slog.Default()
	}
	return &ChallengeHandler{
		catalog:         catalog,
		habits:          habits,
		recommendations: recommendations,
		logger:          log.With(slog.String("component", "challenge_handler")),
	}
}

// List handles GET /api/challenges.
func (h *ChallengeHandler) List(w http.ResponseWriter, r *http.Request) {
	challenges := h.catalog.Challenges()
	out := make([]ChallengeResponse, len(challenges))
	for i, ch := range challenges {
		out[i] = challengeToResponse(ch)
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ChallengesResponse{Challenges: out})
}

// Recommended handles GET /api/challenges/recommended. The first three
// entries are flagged as featured.
func (h *ChallengeHandler) Recommended(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	recs, err := h.recommendations.Recommend(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to compute recommendations")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, RecommendationsResponse{
		Recommendations: recommendationsToResponse(recs),
	})
}

// Get handles GET /api/challenges/{id}.
func (h *ChallengeHandler) Get(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}
	challengeID, ok := pathChallengeID(w, r)
	if !ok {
		return
	}

	ch, err := h.catalog.Challenge(challengeID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	resp := ChallengeDetailResponse{ChallengeResponse: challengeToResponse(ch)}
	status, err := h.habits.StreakStatus(r.Context(), userID, challengeID)
	switch {
	case err == nil:
		resp.IsActive = true
		resp.CurrentStreak = status.CurrentStreak
	case errors.Is(err, service.ErrHabitNotActive):
		// not started
	default:
		HandleAPIError(w, r, err, "Failed to load challenge")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// Start handles POST /api/challenges/{id}/start. Starting an active
// challenge returns the existing habit.
func (h *ChallengeHandler) Start(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}
	challengeID, ok := pathChallengeID(w, r)
	if !ok {
		return
	}

	habit, err := h.habits.Start(r.Context(), userID, challengeID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to start challenge")
		return
	}

	log.Debug("challenge started", slog.String("challenge_id", challengeID))
	shared.RespondWithJSON(w, r, http.StatusOK, habit)
}

// Stop handles POST /api/challenges/{id}/stop.
func (h *ChallengeHandler) Stop(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}
	challengeID, ok := pathChallengeID(w, r)
	if !ok {
		return
	}

	if err := h.habits.Stop(r.Context(), userID, challengeID); err != nil {
		HandleAPIError(w, r, err, "Failed to stop challenge")
		return
	}

	log.Debug("challenge stopped", slog.String("challenge_id", challengeID))
	w.WriteHeader(http.StatusNoContent)
}

// Complete handles POST /api/challenges/{id}/complete.
func (h *ChallengeHandler) Complete(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}
	challengeID, ok := pathChallengeID(w, r)
	if !ok {
		return
	}

	result, err := h.habits.Complete(r.Context(), userID, challengeID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to complete challenge")
		return
	}

	log.Debug("challenge completed",
		slog.String("challenge_id", challengeID),
		slog.Int("streak", result.NewStreak),
		slog.Int64("points", result.PointsAwarded))
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// Streak handles GET /api/challenges/{id}/streak.
func (h *ChallengeHandler) Streak(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}
	challengeID, ok := pathChallengeID(w, r)
	if !ok {
		return
	}

	status, err := h.habits.StreakStatus(r.Context(), userID, challengeID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load streak")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, StreakResponse{ChallengeID: challengeID, Status: status})
}
