// Package recommend ranks catalog challenges against a user's onboarding answers.
//
// The scorer is a pure function of its inputs: identical answers, active set and
// catalog always produce the same ordered result.
package recommend

import (
	"sort"

	"github.com/phrazzld/ecorewards-api/internal/domain"
)

// Params configures the scorer.
type Params struct {
	// FallbackCount is the number of leading catalog entries returned when the
	// user has no affirmative answers.
	FallbackCount int
}

// NewDefaultParams returns the default scorer parameters.
func NewDefaultParams() Params {
	return Params{FallbackCount: 3}
}

// Reason names one affirmative answer that matched a challenge tag.
type Reason struct {
	QuestionID string `json:"question_id"`
	Prompt     string `json:"prompt,omitempty"`
}

// Recommendation is one ranked challenge with the answers that drove it.
type Recommendation struct {
	Challenge domain.Challenge `json:"challenge"`
	Score     int              `json:"score"`
	Reasons   []Reason         `json:"reasons"`
	// Fallback is true when the entry comes from the default set rather than a match.
	Fallback bool `json:"fallback"`
}

// Scorer ranks challenges.
type Scorer struct {
	params  Params
	prompts map[string]string
}

// NewScorer creates a Scorer. questions supplies prompts for reasons and may be empty.
func NewScorer(params Params, questions []domain.Question) *Scorer {
	if params.FallbackCount <= 0 {
		params.FallbackCount = NewDefaultParams().FallbackCount
	}
	prompts := make(map[string]string, len(questions))
	for _, q := range questions {
		prompts[q.ID] = q.Prompt
	}
	return &Scorer{params: params, prompts: prompts}
}

// Recommend returns the challenges not in active, ordered by descending score.
// Ties keep catalog order. When answers holds no affirmative response, the first
// FallbackCount eligible challenges are returned in catalog order.
func (s *Scorer) Recommend(
	answers *domain.AnswerSet,
	active map[string]struct{},
	challenges []domain.Challenge,
) []Recommendation {
	eligible := make([]domain.Challenge, 0, len(challenges))
	for _, c := range challenges {
		if _, ok := active[c.ID]; ok {
			continue
		}
		eligible = append(eligible, c)
	}

	affirmative := answers.Affirmative()
	if len(affirmative) == 0 {
		return s.fallback(eligible)
	}

	out := make([]Recommendation, 0, len(eligible))
	for _, c := range eligible {
		out = append(out, s.score(c, affirmative))
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

func (s *Scorer) score(c domain.Challenge, affirmative map[string]struct{}) Recommendation {
	rec := Recommendation{Challenge: c, Reasons: []Reason{}}
	seen := make(map[string]struct{}, len(c.Tags))
	for _, tag := range c.Tags {
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		if _, ok := affirmative[tag]; ok {
			rec.Score++
			rec.Reasons = append(rec.Reasons, Reason{QuestionID: tag, Prompt: s.prompts[tag]})
		}
	}
	return rec
}

func (s *Scorer) fallback(eligible []domain.Challenge) []Recommendation {
	n := s.params.FallbackCount
	if n > len(eligible) {
		n = len(eligible)
	}
	out := make([]Recommendation, 0, n)
	for _, c := range eligible[:n] {
		out = append(out, Recommendation{Challenge: c, Reasons: []Reason{}, Fallback: true})
	}
	return out
}
