package streak

import (
	"time"

	"github.com/phrazzld/ecorewards-api/internal/domain"
)

// elapsedDays returns the number of whole days between from and to.
//
// Days are counted as floor((to - from) / 24h). A negative span, which can
// happen with clock skew between writers, counts as zero.
func elapsedDays(from, to time.Time) int {
	d := to.Sub(from)
	if d < 0 {
		return 0
	}
	return int(d / (24 * time.Hour))
}

// nextStreak computes the streak after a completion at now.
//
// Parameters:
//   - current: the streak before this completion
//   - lastCompletedAt: the previous completion, nil for a fresh habit
//   - now: the completion time
//   - params: grace window configuration
//
// Behavior:
//   - A fresh habit always moves to a streak of 1
//   - Within the grace window (elapsed <= GraceWindowDays) the streak increments
//   - Past the grace window the streak resets to 1; the completion is day one
//     of the new streak
func nextStreak(current int, lastCompletedAt *time.Time, now time.Time, params *Params) int {
	if lastCompletedAt == nil {
		return current + 1
	}
	if elapsedDays(*lastCompletedAt, now) > params.GraceWindowDays {
		return 1
	}
	return current + 1
}

// deriveState maps a habit onto the Fresh/Active/Lapsed state machine at now.
func deriveState(habit *domain.ActiveHabit, now time.Time, params *Params) domain.HabitState {
	if habit.LastCompletedAt == nil {
		return domain.HabitStateFresh
	}
	if elapsedDays(*habit.LastCompletedAt, now) > params.GraceWindowDays {
		return domain.HabitStateLapsed
	}
	return domain.HabitStateActive
}

// milestoneFor returns the milestone equal to streak, if any.
func milestoneFor(streak int, params *Params) (int, bool) {
	for _, m := range params.Milestones {
		if m == streak {
			return m, true
		}
	}
	return 0, false
}
