package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/ecorewards-api/internal/service"
)

// MockProfileService implements service.ProfileService.
type MockProfileService struct {
	ProfileFn func(ctx context.Context, userID uuid.UUID) (*service.Profile, error)
}

var _ service.ProfileService = (*MockProfileService)(nil)

// Profile implements service.ProfileService.
func (m *MockProfileService) Profile(ctx context.Context, userID uuid.UUID) (*service.Profile, error) {
	if m.ProfileFn == nil {
		return nil, ErrNotConfigured
	}
	return m.ProfileFn(ctx, userID)
}
