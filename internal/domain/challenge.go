package domain

import (
	"time"
)

// Recurrence is the cadence at which a challenge is meant to be repeated.
type Recurrence string

// Supported recurrence units
const (
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
)

// Valid reports whether r is a known recurrence unit.
func (r Recurrence) Valid() bool {
	switch r {
	case RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly:
		return true
	}
	return false
}

// SamePeriod reports whether a and b fall in the same recurrence period.
// Periods are calendar based in UTC: the same day, the same ISO week, or the same month.
func (r Recurrence) SamePeriod(a, b time.Time) bool {
	a, b = a.UTC(), b.UTC()
	switch r {
	case RecurrenceDaily:
		return a.Year() == b.Year() && a.YearDay() == b.YearDay()
	case RecurrenceWeekly:
		ay, aw := a.ISOWeek()
		by, bw := b.ISOWeek()
		return ay == by && aw == bw
	case RecurrenceMonthly:
		return a.Year() == b.Year() && a.Month() == b.Month()
	}
	return false
}

// Question is an onboarding question. Challenges reference question ids as
// recommendation tags.
type Question struct {
	ID     string `json:"id"`
	Prompt string `json:"prompt"`
	Topic  string `json:"topic"`
}

// Challenge is an immutable catalog definition of a recurring action.
type Challenge struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Recurrence  Recurrence `json:"recurrence"`
	PointReward int64      `json:"point_reward"`
	Tags        []string   `json:"tags"`
	BadgeTheme  string     `json:"badge_theme"`
}

// HasTag reports whether the challenge carries the given recommendation tag.
func (c Challenge) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
