package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/ecorewards-api/internal/api/shared"
	"github.com/phrazzld/ecorewards-api/internal/platform/logger"
	"github.com/phrazzld/ecorewards-api/internal/service"
)

// ProfileHandler serves the profile read model.
type ProfileHandler struct {
	profiles service.ProfileService
	logger   *slog.Logger
}

// NewProfileHandler creates a ProfileHandler.
func NewProfileHandler(profiles service.ProfileService, log *slog.Logger) *ProfileHandler {
	if log == nil {
		log = slog.Default()
	}
	return &ProfileHandler{
		profiles: profiles,
		logger:   log.With(slog.String("component", "profile_handler")),
	}
}

// Get handles GET /api/profile.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	profile, err := h.profiles.Profile(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load profile")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, profile)
}
