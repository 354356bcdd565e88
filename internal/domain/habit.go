package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// HabitState is the derived streak state of an ActiveHabit.
type HabitState string

// Habit states. Lapsed is not terminal; the next completion restarts the streak.
const (
	HabitStateFresh  HabitState = "fresh"
	HabitStateActive HabitState = "active"
	HabitStateLapsed HabitState = "lapsed"
)

// Validation errors for ActiveHabit
var (
	ErrEmptyHabitUserID      = errors.New("habit user ID cannot be empty")
	ErrEmptyHabitChallengeID = errors.New("habit challenge ID cannot be empty")
	ErrNegativeStreak        = errors.New("streak cannot be negative")
	ErrLongestBelowCurrent   = errors.New("longest streak cannot be below current streak")
)

// ActiveHabit is a user's adoption of a challenge. There is at most one per
// (UserID, ChallengeID).
type ActiveHabit struct {
	UserID          uuid.UUID  `json:"user_id"`
	ChallengeID     string     `json:"challenge_id"`
	CurrentStreak   int        `json:"current_streak"`
	LongestStreak   int        `json:"longest_streak"`
	CompletionCount int        `json:"completion_count"`
	LastCompletedAt *time.Time `json:"last_completed_at,omitempty"`
	StartedAt       time.Time  `json:"started_at"`
	// Version increases on every persisted update and guards concurrent writers.
	Version int64 `json:"version"`
}

// NewActiveHabit creates a fresh habit with a zero streak.
func NewActiveHabit(userID uuid.UUID, challengeID string, now time.Time) (*ActiveHabit, error) {
	h := &ActiveHabit{
		UserID:      userID,
		ChallengeID: challengeID,
		StartedAt:   now.UTC(),
		Version:     1,
	}
	if err := h.Validate(); err != nil {
		return nil, err
	}
	return h, nil
}

// Validate checks if the ActiveHabit has valid data.
func (h *ActiveHabit) Validate() error {
	if h.UserID == uuid.Nil {
		return ErrEmptyHabitUserID
	}
	if h.ChallengeID == "" {
		return ErrEmptyHabitChallengeID
	}
	if h.CurrentStreak < 0 || h.LongestStreak < 0 || h.CompletionCount < 0 {
		return ErrNegativeStreak
	}
	if h.LongestStreak < h.CurrentStreak {
		return ErrLongestBelowCurrent
	}
	return nil
}

// Clone returns a deep copy of the habit.
func (h *ActiveHabit) Clone() *ActiveHabit {
	c := *h
	if h.LastCompletedAt != nil {
		t := *h.LastCompletedAt
		c.LastCompletedAt = &t
	}
	return &c
}
