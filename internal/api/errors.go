package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/ecorewards-api/internal/api/shared"
	"github.com/phrazzld/ecorewards-api/internal/domain"
	"github.com/phrazzld/ecorewards-api/internal/service"
	"github.com/phrazzld/ecorewards-api/internal/service/auth"
	"github.com/phrazzld/ecorewards-api/internal/store"
)

// retryAfterSeconds is the Retry-After hint sent with 503 Busy responses.
const retryAfterSeconds = 1

// MapErrorToStatusCode maps service, store and auth errors to HTTP status codes.
// Unknown errors map to 500.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return http.StatusUnauthorized

	case errors.Is(err, service.ErrLedgerCorrupted):
		return http.StatusInternalServerError

	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidAnswers),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID):
		return http.StatusBadRequest

	case errors.Is(err, service.ErrInsufficientBalance):
		return http.StatusUnprocessableEntity

	case errors.Is(err, service.ErrAlreadyClaimed),
		errors.Is(err, service.ErrConflict):
		return http.StatusConflict

	case errors.Is(err, service.ErrBusy):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err that never
// includes internal details.
func GetSafeErrorMessage(err error) string {
	switch {
	case err == nil:
		return "An unexpected error occurred"

	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid token"

	case errors.Is(err, service.ErrLedgerCorrupted):
		return "Wallet is temporarily unavailable"

	case errors.Is(err, service.ErrChallengeNotFound),
		errors.Is(err, store.ErrChallengeNotFound):
		return "Challenge not found"
	case errors.Is(err, service.ErrRewardNotFound),
		errors.Is(err, store.ErrRewardNotFound):
		return "Reward not found"
	case errors.Is(err, service.ErrClaimNotFound):
		return "Claim not found"
	case errors.Is(err, service.ErrHabitNotActive):
		return "Challenge is not active"
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	case errors.Is(err, service.ErrInvalidAmount):
		return "Amount must be positive"
	case errors.Is(err, service.ErrInvalidAnswers):
		return "Invalid onboarding answers"
	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID format"
	case errors.Is(err, domain.ErrValidation):
		return "Validation error"

	case errors.Is(err, service.ErrInsufficientBalance):
		return "Insufficient balance"
	case errors.Is(err, service.ErrAlreadyClaimed):
		return "Reward already claimed"
	case errors.Is(err, service.ErrConflict):
		return "Request conflicted with a concurrent update, please retry"
	case errors.Is(err, service.ErrBusy):
		return "Too many concurrent requests, please retry"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the error response for err. fallbackMessage replaces
// the generic message of unmapped 500 errors when non-empty.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallbackMessage string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallbackMessage != "" &&
		!errors.Is(err, service.ErrLedgerCorrupted) {
		message = fallbackMessage
	}

	var opts []shared.ResponseOption
	if status == http.StatusServiceUnavailable {
		opts = append(opts, shared.WithRetryAfter(retryAfterSeconds))
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}

// SanitizeValidationError turns a validator error into a message naming the
// first failing field, without echoing the submitted value.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Validation error"
	}
	fe := verrs[0]
	return fmt.Sprintf("Invalid %s: %s", fe.Field(), validationTagMessage(fe.Tag()))
}

func validationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min", "gt", "gte":
		return "too small"
	case "max", "lt", "lte":
		return "too large"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
