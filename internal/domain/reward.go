package domain

// RewardCategory classifies what a redemption yields.
type RewardCategory string

// Known reward categories
const (
	RewardCategoryTree     RewardCategory = "tree"
	RewardCategoryDiscount RewardCategory = "discount"
	RewardCategoryOther    RewardCategory = "other"
)

// Reward is an immutable catalog definition of something points can be redeemed for.
type Reward struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Cost        int64          `json:"cost"`
	Category    RewardCategory `json:"category"`
}
