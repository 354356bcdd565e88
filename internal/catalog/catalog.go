// Package catalog provides the read-only content store of onboarding questions,
// challenge definitions and reward definitions. A catalog is validated once on
// load and never mutated afterwards; accessors return copies.
package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/ecorewards-api/internal/domain"
	"github.com/phrazzld/ecorewards-api/internal/store"
)

//go:embed default_catalog.json
var defaultCatalog []byte

// ErrInvalidCatalog is returned when catalog content fails validation.
var ErrInvalidCatalog = errors.New("invalid catalog")

type questionDoc struct {
	ID     string `json:"id"     validate:"required"`
	Prompt string `json:"prompt" validate:"required"`
	Topic  string `json:"topic"`
}

type challengeDoc struct {
	ID          string   `json:"id"           validate:"required"`
	Title       string   `json:"title"        validate:"required"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Recurrence  string   `json:"recurrence"   validate:"required,oneof=daily weekly monthly"`
	PointReward int64    `json:"point_reward" validate:"gt=0"`
	Tags        []string `json:"tags"         validate:"dive,required"`
	BadgeTheme  string   `json:"badge_theme"`
}

type rewardDoc struct {
	ID          string `json:"id"          validate:"required"`
	Title       string `json:"title"       validate:"required"`
	Description string `json:"description"`
	Cost        int64  `json:"cost"        validate:"gt=0"`
	Category    string `json:"category"    validate:"required,oneof=tree discount other"`
}

type document struct {
	Questions  []questionDoc  `json:"questions"  validate:"required,min=1,dive"`
	Challenges []challengeDoc `json:"challenges" validate:"required,min=1,dive"`
	Rewards    []rewardDoc    `json:"rewards"    validate:"required,min=1,dive"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Catalog is an immutable, validated set of catalog definitions. Challenge and
// reward order is the declared order of the source document.
type Catalog struct {
	questions    []domain.Question
	challenges   []domain.Challenge
	rewards      []domain.Reward
	questionIdx  map[string]int
	challengeIdx map[string]int
	rewardIdx    map[string]int
}

// Load reads the catalog at path. An empty path loads the embedded default catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Parse(data)
}

// Default returns the embedded default catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*Catalog, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if err := validate.Struct(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	return build(doc)
}

func build(doc document) (*Catalog, error) {
	c := &Catalog{
		questionIdx:  make(map[string]int, len(doc.Questions)),
		challengeIdx: make(map[string]int, len(doc.Challenges)),
		rewardIdx:    make(map[string]int, len(doc.Rewards)),
	}

	for _, q := range doc.Questions {
		if _, dup := c.questionIdx[q.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate question id %q", ErrInvalidCatalog, q.ID)
		}
		c.questionIdx[q.ID] = len(c.questions)
		c.questions = append(c.questions, domain.Question{ID: q.ID, Prompt: q.Prompt, Topic: q.Topic})
	}

	for _, ch := range doc.Challenges {
		if _, dup := c.challengeIdx[ch.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate challenge id %q", ErrInvalidCatalog, ch.ID)
		}
		for _, tag := range ch.Tags {
			if _, ok := c.questionIdx[tag]; !ok {
				return nil, fmt.Errorf("%w: challenge %q references unknown question %q",
					ErrInvalidCatalog, ch.ID, tag)
			}
		}
		c.challengeIdx[ch.ID] = len(c.challenges)
		c.challenges = append(c.challenges, domain.Challenge{
			ID:          ch.ID,
			Title:       ch.Title,
			Description: ch.Description,
			Category:    ch.Category,
			Recurrence:  domain.Recurrence(ch.Recurrence),
			PointReward: ch.PointReward,
			Tags:        append([]string(nil), ch.Tags...),
			BadgeTheme:  ch.BadgeTheme,
		})
	}

	for _, r := range doc.Rewards {
		if _, dup := c.rewardIdx[r.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate reward id %q", ErrInvalidCatalog, r.ID)
		}
		c.rewardIdx[r.ID] = len(c.rewards)
		c.rewards = append(c.rewards, domain.Reward{
			ID:          r.ID,
			Title:       r.Title,
			Description: r.Description,
			Cost:        r.Cost,
			Category:    domain.RewardCategory(r.Category),
		})
	}

	return c, nil
}

// Questions returns the onboarding questions in declared order.
func (c *Catalog) Questions() []domain.Question {
	return append([]domain.Question(nil), c.questions...)
}

// HasQuestion reports whether id is a known question.
func (c *Catalog) HasQuestion(id string) bool {
	_, ok := c.questionIdx[id]
	return ok
}

// Challenges returns all challenge definitions in declared order.
func (c *Catalog) Challenges() []domain.Challenge {
	out := make([]domain.Challenge, len(c.challenges))
	for i, ch := range c.challenges {
		out[i] = cloneChallenge(ch)
	}
	return out
}

// Challenge returns the challenge with the given id or store.ErrChallengeNotFound.
func (c *Catalog) Challenge(id string) (domain.Challenge, error) {
	i, ok := c.challengeIdx[id]
	if !ok {
		return domain.Challenge{}, store.ErrChallengeNotFound
	}
	return cloneChallenge(c.challenges[i]), nil
}

// Rewards returns all reward definitions in declared order.
func (c *Catalog) Rewards() []domain.Reward {
	return append([]domain.Reward(nil), c.rewards...)
}

// Reward returns the reward with the given id or store.ErrRewardNotFound.
func (c *Catalog) Reward(id string) (domain.Reward, error) {
	i, ok := c.rewardIdx[id]
	if !ok {
		return domain.Reward{}, store.ErrRewardNotFound
	}
	return c.rewards[i], nil
}

func cloneChallenge(ch domain.Challenge) domain.Challenge {
	ch.Tags = append([]string(nil), ch.Tags...)
	return ch
}
