package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/ecorewards-api/internal/api"
	apiMiddleware "github.com/phrazzld/ecorewards-api/internal/api/middleware"
)

// setupRouter builds the HTTP routes. Everything under /api requires a bearer token.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.Trace(app.logger))

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)
	onboardingHandler := api.NewOnboardingHandler(app.recommendationService, app.logger)
	challengeHandler := api.NewChallengeHandler(app.catalog, app.habitService, app.recommendationService, app.logger)
	walletHandler := api.NewWalletHandler(app.walletService, app.logger)
	profileHandler := api.NewProfileHandler(app.profileService, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Get("/questions", onboardingHandler.ListQuestions)
		r.Post("/onboarding", onboardingHandler.SubmitAnswers)

		r.Route("/challenges", func(r chi.Router) {
			r.Get("/", challengeHandler.List)
			r.Get("/recommended", challengeHandler.Recommended)
			r.Get("/{id}", challengeHandler.Get)
			r.Post("/{id}/start", challengeHandler.Start)
			r.Post("/{id}/stop", challengeHandler.Stop)
			r.Post("/{id}/complete", challengeHandler.Complete)
			r.Get("/{id}/streak", challengeHandler.Streak)
		})

		r.Get("/profile", profileHandler.Get)

		r.Route("/wallet", func(r chi.Router) {
			r.Get("/", walletHandler.Balance)
			r.Get("/transactions", walletHandler.Transactions)
			r.Get("/redemptions", walletHandler.Redemptions)
			r.Post("/redeem", walletHandler.Redeem)
			r.Get("/claims", walletHandler.Claims)
			r.Post("/claims/{id}/claim", walletHandler.Claim)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", slog.String("error", err.Error()))
		}
	})

	return r
}
