package testutils

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/ecorewards-api/internal/config"
	"github.com/phrazzld/ecorewards-api/internal/service/auth"
	"github.com/stretchr/testify/require"
)

// TestJWTSecret is a signing secret that satisfies the minimum length.
const TestJWTSecret = "test-jwt-secret-that-is-32-chars-long"

// NewTestJWTService creates a JWT service signing with TestJWTSecret.
func NewTestJWTService(t *testing.T) auth.JWTService {
	t.Helper()
	svc, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:            TestJWTSecret,
		TokenLifetimeMinutes: 60,
	})
	require.NoError(t, err, "failed to create test JWT service")
	return svc
}

// AuthHeader returns an Authorization header value carrying a fresh token for userID.
func AuthHeader(t *testing.T, svc auth.JWTService, userID uuid.UUID) string {
	t.Helper()
	token, err := svc.GenerateToken(context.Background(), userID)
	require.NoError(t, err, "failed to generate token")
	return "Bearer " + token
}
