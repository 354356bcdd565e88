// Package streak implements the grace-window streak state machine for active habits.
// All operations are pure: they take the current habit and a clock reading and
// return new values without mutating their inputs.
package streak

import (
	"errors"
	"time"

	"github.com/phrazzld/ecorewards-api/internal/domain"
)

// Common errors
var (
	ErrNilHabit     = errors.New("habit cannot be nil")
	ErrInvalidParam = errors.New("grace window must be at least 1 day")
)

// Status is the read model returned by a streak status query.
type Status struct {
	CurrentStreak   int               `json:"current_streak"`
	LongestStreak   int               `json:"longest_streak"`
	CompletionCount int               `json:"completion_count"`
	LastCompletedAt *time.Time        `json:"last_completed_at,omitempty"`
	IsWithinGrace   bool              `json:"is_within_grace"`
	State           domain.HabitState `json:"state"`
	// DaysSinceCompletion is nil until the first completion.
	DaysSinceCompletion *int `json:"days_since_completion,omitempty"`
	// CompletedThisPeriod reports whether the last completion falls in the current
	// recurrence period. It is a hint for callers that dedupe per period.
	CompletedThisPeriod bool `json:"completed_this_period"`
}

// Completion is the result of applying a completion to a habit.
type Completion struct {
	Habit *domain.ActiveHabit
	// Milestone is the badge milestone reached by this completion, zero if none.
	Milestone int
	// Reset is true when the grace window had expired and the streak restarted.
	Reset bool
}

// Service defines the interface for streak state machine operations
type Service interface {
	// Complete computes the habit state after a completion at now.
	Complete(habit *domain.ActiveHabit, now time.Time) (*Completion, error)

	// Status derives the streak read model at now.
	Status(habit *domain.ActiveHabit, recurrence domain.Recurrence, now time.Time) (*Status, error)
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new streak service with default parameters
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new streak service with custom parameters
func NewServiceWithParams(params *Params) (Service, error) {
	if params == nil {
		params = NewDefaultParams()
	}
	if params.GraceWindowDays < 1 {
		return nil, ErrInvalidParam
	}
	return &defaultService{
		params: params,
	}, nil
}

// Complete implements the Service interface
func (s *defaultService) Complete(habit *domain.ActiveHabit, now time.Time) (*Completion, error) {
	if habit == nil {
		return nil, ErrNilHabit
	}

	next := habit.Clone()
	next.CurrentStreak = nextStreak(habit.CurrentStreak, habit.LastCompletedAt, now, s.params)
	completedAt := now.UTC()
	next.LastCompletedAt = &completedAt
	next.CompletionCount = habit.CompletionCount + 1
	if next.CurrentStreak > next.LongestStreak {
		next.LongestStreak = next.CurrentStreak
	}

	completion := &Completion{
		Habit: next,
		Reset: habit.LastCompletedAt != nil && next.CurrentStreak == 1,
	}
	if m, ok := milestoneFor(next.CurrentStreak, s.params); ok {
		completion.Milestone = m
	}
	return completion, nil
}

// Status implements the Service interface
func (s *defaultService) Status(
	habit *domain.ActiveHabit,
	recurrence domain.Recurrence,
	now time.Time,
) (*Status, error) {
	if habit == nil {
		return nil, ErrNilHabit
	}

	status := &Status{
		CurrentStreak:   habit.CurrentStreak,
		LongestStreak:   habit.LongestStreak,
		CompletionCount: habit.CompletionCount,
		State:           deriveState(habit, now, s.params),
		IsWithinGrace:   true,
	}

	if habit.LastCompletedAt != nil {
		last := *habit.LastCompletedAt
		days := elapsedDays(last, now)
		status.LastCompletedAt = &last
		status.DaysSinceCompletion = &days
		status.IsWithinGrace = days <= s.params.GraceWindowDays
		status.CompletedThisPeriod = recurrence.SamePeriod(last, now)
	}

	return status, nil
}
