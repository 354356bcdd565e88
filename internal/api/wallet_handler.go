package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/ecorewards-api/internal/api/shared"
	"github.com/phrazzld/ecorewards-api/internal/domain"
	"github.com/phrazzld/ecorewards-api/internal/platform/logger"
	"github.com/phrazzld/ecorewards-api/internal/service"
)

// WalletHandler serves balances, ledger history and the redemption lifecycle.
type WalletHandler struct {
	wallet service.WalletService
	logger *slog.Logger
}

// NewWalletHandler creates a WalletHandler.
func NewWalletHandler(wallet service.WalletService, log *slog.Logger) *WalletHandler {
	if log == nil {
		log = slog.Default()
	}
	return &WalletHandler{
		wallet: wallet,
		logger: log.With(slog.String("component", "wallet_handler")),
	}
}

// Balance handles GET /api/wallet.
func (h *WalletHandler) Balance(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	balance, err := h.wallet.Balance(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load balance")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, BalanceResponse{Balance: balance})
}

// Transactions handles GET /api/wallet/transactions?limit=n, newest first.
func (h *WalletHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}
	limit, err := queryLimit(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	entries, err := h.wallet.Transactions(r.Context(), userID, limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load transactions")
		return
	}
	if entries == nil {
		entries = []*domain.LedgerEntry{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, TransactionsResponse{Transactions: entries})
}

// Redemptions handles GET /api/wallet/redemptions. Every reward is listed
// regardless of the caller's balance.
func (h *WalletHandler) Redemptions(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, RedemptionOptionsResponse{Rewards: h.wallet.RedemptionOptions()})
}

// Redeem handles POST /api/wallet/redeem.
func (h *WalletHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req RedeemRequest
	if !decodeAndValidate(w, r, log, &req) {
		return
	}

	claim, err := h.wallet.Redeem(r.Context(), userID, req.RewardID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to redeem reward")
		return
	}

	log.Debug("reward redeemed",
		slog.String("reward_id", req.RewardID),
		slog.String("claim_id", claim.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, claim)
}

// Claims handles GET /api/wallet/claims.
func (h *WalletHandler) Claims(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	claims, err := h.wallet.Claims(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load claims")
		return
	}
	if claims == nil {
		claims = []*domain.RedemptionClaim{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ClaimsResponse{Claims: claims})
}

// Claim handles POST /api/wallet/claims/{id}/claim.
func (h *WalletHandler) Claim(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}
	claimID, err := getPathUUID(r, "id")
	if err != nil {
		log.Warn("invalid claim id", slog.String("error", err.Error()))
		HandleAPIError(w, r, err, "")
		return
	}

	if _, err := h.wallet.Claim(r.Context(), userID, claimID); err != nil {
		HandleAPIError(w, r, err, "Failed to claim reward")
		return
	}

	log.Debug("reward claimed", slog.String("claim_id", claimID.String()))
	w.WriteHeader(http.StatusNoContent)
}
