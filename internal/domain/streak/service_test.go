package streak

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/ecorewards-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func habitWith(t *testing.T, streak int, last *time.Time, started time.Time) *domain.ActiveHabit {
	t.Helper()
	h, err := domain.NewActiveHabit(uuid.New(), "cycle-to-work", started)
	require.NoError(t, err)
	h.CurrentStreak = streak
	h.LongestStreak = streak
	h.LastCompletedAt = last
	return h
}

func TestNewDefaultParams(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()
	assert.Equal(t, 7, params.GraceWindowDays)
	assert.Equal(t, []int{1, 5, 10, 25, 50, 100}, params.Milestones)

	custom := NewParams(ParamsConfig{GraceWindowDays: 3})
	assert.Equal(t, 3, custom.GraceWindowDays)
	assert.Equal(t, params.Milestones, custom.Milestones)
}

func TestNewServiceWithParamsRejectsZeroWindow(t *testing.T) {
	t.Parallel()
	_, err := NewServiceWithParams(&Params{GraceWindowDays: 0})
	assert.ErrorIs(t, err, ErrInvalidParam)
}

func TestComplete(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()
	started := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	last := started.Add(48 * time.Hour)

	testCases := []struct {
		name          string
		streak        int
		last          *time.Time
		now           time.Time
		wantStreak    int
		wantReset     bool
		wantMilestone int
	}{
		{
			name:          "fresh habit starts at one",
			streak:        0,
			last:          nil,
			now:           started.Add(30 * 24 * time.Hour),
			wantStreak:    1,
			wantMilestone: 1,
		},
		{
			name:       "exactly seven days continues",
			streak:     5,
			last:       &last,
			now:        last.Add(7 * 24 * time.Hour),
			wantStreak: 6,
		},
		{
			name:       "seven days and 23 hours still continues",
			streak:     5,
			last:       &last,
			now:        last.Add(8*24*time.Hour - time.Hour),
			wantStreak: 6,
		},
		{
			name:          "eight days resets",
			streak:        5,
			last:          &last,
			now:           last.Add(8 * 24 * time.Hour),
			wantStreak:    1,
			wantReset:     true,
			wantMilestone: 1,
		},
		{
			name:          "same day completion increments",
			streak:        4,
			last:          &last,
			now:           last.Add(time.Hour),
			wantStreak:    5,
			wantMilestone: 5,
		},
		{
			name:       "clock skew counts as zero days",
			streak:     2,
			last:       &last,
			now:        last.Add(-time.Hour),
			wantStreak: 3,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			habit := habitWith(t, tc.streak, tc.last, started)
			before := habit.Clone()

			got, err := svc.Complete(habit, tc.now)
			require.NoError(t, err)

			assert.Equal(t, tc.wantStreak, got.Habit.CurrentStreak)
			assert.Equal(t, tc.wantReset, got.Reset)
			assert.Equal(t, tc.wantMilestone, got.Milestone)
			require.NotNil(t, got.Habit.LastCompletedAt)
			assert.True(t, got.Habit.LastCompletedAt.Equal(tc.now))
			assert.Equal(t, before.CompletionCount+1, got.Habit.CompletionCount)
			assert.GreaterOrEqual(t, got.Habit.LongestStreak, got.Habit.CurrentStreak)
			assert.Equal(t, before, habit, "input habit must not be mutated")
		})
	}
}

func TestCompleteKeepsLongestStreakAfterReset(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()
	last := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	habit := habitWith(t, 9, &last, last.AddDate(0, -1, 0))

	got, err := svc.Complete(habit, last.AddDate(0, 0, 10))
	require.NoError(t, err)
	assert.Equal(t, 1, got.Habit.CurrentStreak)
	assert.Equal(t, 9, got.Habit.LongestStreak)
}

func TestCompleteNilHabit(t *testing.T) {
	t.Parallel()
	_, err := NewDefaultService().Complete(nil, time.Now())
	assert.ErrorIs(t, err, ErrNilHabit)
}

func TestStatus(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()
	last := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	fresh := habitWith(t, 0, nil, last)
	status, err := svc.Status(fresh, domain.RecurrenceDaily, last.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, domain.HabitStateFresh, status.State)
	assert.True(t, status.IsWithinGrace)
	assert.Nil(t, status.DaysSinceCompletion)
	assert.False(t, status.CompletedThisPeriod)

	active := habitWith(t, 3, &last, last.AddDate(0, 0, -3))
	status, err = svc.Status(active, domain.RecurrenceWeekly, last.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.Equal(t, domain.HabitStateActive, status.State)
	assert.True(t, status.IsWithinGrace)
	require.NotNil(t, status.DaysSinceCompletion)
	assert.Equal(t, 7, *status.DaysSinceCompletion)
	assert.False(t, status.CompletedThisPeriod)

	status, err = svc.Status(active, domain.RecurrenceDaily, last.Add(2*time.Hour))
	require.NoError(t, err)
	assert.True(t, status.CompletedThisPeriod)

	status, err = svc.Status(active, domain.RecurrenceDaily, last.AddDate(0, 0, 8))
	require.NoError(t, err)
	assert.Equal(t, domain.HabitStateLapsed, status.State)
	assert.False(t, status.IsWithinGrace)
	assert.Equal(t, 3, status.CurrentStreak, "status reads never rewrite the streak")
}
