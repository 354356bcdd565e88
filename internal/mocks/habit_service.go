package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/ecorewards-api/internal/domain"
	"github.com/phrazzld/ecorewards-api/internal/domain/streak"
	"github.com/phrazzld/ecorewards-api/internal/service"
)

// MockHabitService implements service.HabitService.
type MockHabitService struct {
	StartFn        func(ctx context.Context, userID uuid.UUID, challengeID string) (*domain.ActiveHabit, error)
	StopFn         func(ctx context.Context, userID uuid.UUID, challengeID string) error
	CompleteFn     func(ctx context.Context, userID uuid.UUID, challengeID string) (*service.CompletionResult, error)
	StreakStatusFn func(ctx context.Context, userID uuid.UUID, challengeID string) (*streak.Status, error)
	ListActiveFn   func(ctx context.Context, userID uuid.UUID) ([]*domain.ActiveHabit, error)
}

var _ service.HabitService = (*MockHabitService)(nil)

// Start implements service.HabitService.
func (m *MockHabitService) Start(ctx context.Context, userID uuid.UUID, challengeID string) (*domain.ActiveHabit, error) {
	if m.StartFn == nil {
		return nil, ErrNotConfigured
	}
	return m.StartFn(ctx, userID, challengeID)
}

// Stop implements service.HabitService.
func (m *MockHabitService) Stop(ctx context.Context, userID uuid.UUID, challengeID string) error {
	if m.StopFn == nil {
		return ErrNotConfigured
	}
	return m.StopFn(ctx, userID, challengeID)
}

// Complete implements service.HabitService.
func (m *MockHabitService) Complete(
	ctx context.Context,
	userID uuid.UUID,
	challengeID string,
) (*service.CompletionResult, error) {
	if m.CompleteFn == nil {
		return nil, ErrNotConfigured
	}
	return m.CompleteFn(ctx, userID, challengeID)
}

// StreakStatus implements service.HabitService.
func (m *MockHabitService) StreakStatus(
	ctx context.Context,
	userID uuid.UUID,
	challengeID string,
) (*streak.Status, error) {
	if m.StreakStatusFn == nil {
		return nil, ErrNotConfigured
	}
	return m.StreakStatusFn(ctx, userID, challengeID)
}

// ListActive implements service.HabitService.
func (m *MockHabitService) ListActive(ctx context.Context, userID uuid.UUID) ([]*domain.ActiveHabit, error) {
	if m.ListActiveFn == nil {
		return nil, ErrNotConfigured
	}
	return m.ListActiveFn(ctx, userID)
}
