package shared

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/ecorewards-api/internal/platform/logger"
	"github.com/phrazzld/ecorewards-api/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetTraceID(ctx))

	traced := SetTraceID(ctx)
	id := GetTraceID(traced)
	assert.Len(t, id, 2*TraceIDLength)
	_, err := hex.DecodeString(id)
	assert.NoError(t, err)
	assert.NotEqual(t, id, GetTraceID(SetTraceID(ctx)))

	assert.Empty(t, GetTraceID(context.WithValue(ctx, TraceIDKey, 42)))
}

func TestFallbackTraceID(t *testing.T) {
	now := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)
	id := fallbackTraceID(now)
	assert.Len(t, id, 2*TraceIDLength)
	assert.NotEqual(t, id, fallbackTraceID(now.Add(time.Nanosecond)))
}

func TestUserIDFromContext(t *testing.T) {
	userID := uuid.New()

	got, ok := UserIDFromContext(WithUserID(context.Background(), userID))
	assert.True(t, ok)
	assert.Equal(t, userID, got)

	_, ok = UserIDFromContext(WithUserID(context.Background(), uuid.Nil))
	assert.False(t, ok)

	_, ok = UserIDFromContext(context.WithValue(context.Background(), UserIDContextKey, userID.String()))
	assert.False(t, ok)
}

type redeemBody struct {
	RewardID string `json:"reward_id" validate:"required"`
}

type selfValidating struct {
	N int `json:"n"`
}

func (s selfValidating) Validate() error {
	if s.N < 0 {
		return errors.New("n must not be negative")
	}
	return nil
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
		empty   bool
	}{
		{name: "valid", body: `{"reward_id": "tree"}`},
		{name: "malformed", body: `{"reward_id": }`, wantErr: true},
		{name: "unknown field", body: `{"reward_id": "tree", "amount": 5}`, wantErr: true},
		{name: "trailing data", body: `{"reward_id": "tree"} {}`, wantErr: true},
		{name: "empty", body: "", wantErr: true, empty: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			var got redeemBody
			err := DecodeJSON(req, &got)
			if !tc.wantErr {
				require.NoError(t, err)
				assert.Equal(t, "tree", got.RewardID)
				return
			}
			require.Error(t, err)
			if tc.empty {
				assert.ErrorIs(t, err, ErrEmptyBody)
			}
		})
	}
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(redeemBody{RewardID: "tree"}))
	assert.Error(t, ValidateRequest(redeemBody{}))
	assert.NoError(t, ValidateRequest(selfValidating{N: 1}))
	assert.Error(t, ValidateRequest(selfValidating{N: -1}))
}

func TestRespondWithJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/wallet", nil)
	w := httptest.NewRecorder()

	RespondWithJSON(w, req, http.StatusOK, map[string]int64{"balance": 70})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"balance": 70}`, w.Body.String())
}

func TestRespondWithErrorAndLog(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		opts      []ResponseOption
		wantLevel string
	}{
		{name: "server error", status: http.StatusInternalServerError, wantLevel: "ERROR"},
		{name: "client error", status: http.StatusNotFound, wantLevel: "DEBUG"},
		{name: "elevated client error", status: http.StatusUnauthorized,
			opts: []ResponseOption{WithElevatedLogLevel()}, wantLevel: "WARN"},
		{name: "rate limited", status: http.StatusTooManyRequests, wantLevel: "WARN"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			log, handler := testutils.NewTestLogger()
			ctx := logger.WithLogger(SetTraceID(context.Background()), log)
			req := httptest.NewRequest(http.MethodGet, "/api/profile", nil).WithContext(ctx)
			w := httptest.NewRecorder()

			cause := errors.New("query failed: postgres://app:hunter2@db:5432/ecorewards")
			RespondWithErrorAndLog(w, req, tc.status, "Something went wrong", cause, tc.opts...)

			assert.Equal(t, tc.status, w.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "Something went wrong", body.Error)
			assert.Equal(t, GetTraceID(ctx), body.TraceID)
			assert.NotContains(t, w.Body.String(), "hunter2")

			entries := handler.Find("API error response")
			require.Len(t, entries, 1)
			entry := entries[0]
			assert.Equal(t, tc.wantLevel, entry["level"])
			assert.NotContains(t, entry["error"], "hunter2")
		})
	}
}

func TestRespondWithRetryAfter(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/wallet/redeem", nil)
	w := httptest.NewRecorder()

	RespondWithError(w, req, http.StatusServiceUnavailable, "Busy", WithRetryAfter(1))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}
