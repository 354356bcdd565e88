package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// badgeThemeIcons maps a challenge's badge theme to the icon shown on its badges.
var badgeThemeIcons = map[string]string{
	"crafting_tools_icon":     "🛠️",
	"bicycle_silhouette":      "🚲",
	"footprints_pathway":      "👣",
	"leaf_plant_sprout":       "🌱",
	"bus_train_icon":          "🚌",
	"electric_plug_moon":      "🔌",
	"car_group_icon":          "🚗",
	"car_group_icon_children": "🚗",
	"bike_icon":               "🚲",
	"leaf_plate_carrot":       "🥕",
	"recycling_bins":          "♻️",
	"power_button_icon":       "⚡",
	"solar_panel_sun_icon":    "☀️",
	"clean_riverside_icon":    "🌊",
}

// DefaultBadgeIcon is used when a theme has no dedicated icon.
const DefaultBadgeIcon = "🏆"

// BadgeIcon returns the icon for a badge theme.
func BadgeIcon(theme string) string {
	if icon, ok := badgeThemeIcons[theme]; ok {
		return icon
	}
	return DefaultBadgeIcon
}

// Badge is awarded once per (user, challenge, milestone) when a completion
// lands a streak exactly on a milestone.
type Badge struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	ChallengeID string    `json:"challenge_id"`
	Milestone   int       `json:"milestone"`
	Title       string    `json:"title"`
	Icon        string    `json:"icon"`
	EarnedAt    time.Time `json:"earned_at"`
}

// NewBadge builds the badge for reaching milestone on challenge.
func NewBadge(userID uuid.UUID, challenge Challenge, milestone int, now time.Time) *Badge {
	return &Badge{
		ID:          uuid.New(),
		UserID:      userID,
		ChallengeID: challenge.ID,
		Milestone:   milestone,
		Title:       fmt.Sprintf("%s - %d Streak", challenge.Title, milestone),
		Icon:        BadgeIcon(challenge.BadgeTheme),
		EarnedAt:    now.UTC(),
	}
}
