package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/phrazzld/ecorewards-api/internal/domain"
	"github.com/phrazzld/ecorewards-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalCatalog = `{
  "questions": [{"id": "1", "prompt": "Do you cycle?"}],
  "challenges": [
    {"id": "c1", "title": "Cycle", "recurrence": "daily", "point_reward": 50, "tags": ["1"]},
    {"id": "c2", "title": "Walk", "recurrence": "weekly", "point_reward": 10, "tags": []}
  ],
  "rewards": [{"id": "r1", "title": "Tree", "cost": 500, "category": "tree"}]
}`

func TestDefaultCatalog(t *testing.T) {
	t.Parallel()
	c, err := Default()
	require.NoError(t, err)

	assert.Len(t, c.Questions(), 10)
	assert.Len(t, c.Challenges(), 14)
	assert.Len(t, c.Rewards(), 4)

	ch, err := c.Challenge("cycle-to-work")
	require.NoError(t, err)
	assert.Equal(t, domain.RecurrenceDaily, ch.Recurrence)
	assert.Equal(t, int64(50), ch.PointReward)

	for _, challenge := range c.Challenges() {
		assert.True(t, challenge.Recurrence.Valid(), "challenge %s", challenge.ID)
		assert.NotEqual(t, domain.DefaultBadgeIcon, domain.BadgeIcon(challenge.BadgeTheme),
			"challenge %s should have a themed badge", challenge.ID)
	}
}

func TestParsePreservesDeclaredOrder(t *testing.T) {
	t.Parallel()
	c, err := Parse([]byte(minimalCatalog))
	require.NoError(t, err)

	challenges := c.Challenges()
	require.Len(t, challenges, 2)
	assert.Equal(t, "c1", challenges[0].ID)
	assert.Equal(t, "c2", challenges[1].ID)
	assert.True(t, c.HasQuestion("1"))
	assert.False(t, c.HasQuestion("2"))
}

func TestLookupsReturnNotFound(t *testing.T) {
	t.Parallel()
	c, err := Parse([]byte(minimalCatalog))
	require.NoError(t, err)

	_, err = c.Challenge("missing")
	assert.ErrorIs(t, err, store.ErrChallengeNotFound)
	assert.True(t, store.IsNotFoundError(err))

	_, err = c.Reward("missing")
	assert.ErrorIs(t, err, store.ErrRewardNotFound)
}

func TestAccessorsReturnCopies(t *testing.T) {
	t.Parallel()
	c, err := Parse([]byte(minimalCatalog))
	require.NoError(t, err)

	challenges := c.Challenges()
	challenges[0].Tags[0] = "mutated"
	challenges[0].Title = "mutated"

	again, err := c.Challenge("c1")
	require.NoError(t, err)
	assert.Equal(t, "Cycle", again.Title)
	assert.Equal(t, []string{"1"}, again.Tags)
}

func TestParseRejectsInvalidContent(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "malformed json",
			doc:  `{"questions": [`,
		},
		{
			name: "unknown field",
			doc:  `{"questions": [{"id": "1", "prompt": "p", "weight": 2}], "challenges": [], "rewards": []}`,
		},
		{
			name: "bad recurrence",
			doc: `{"questions": [{"id": "1", "prompt": "p"}],
				"challenges": [{"id": "c", "title": "t", "recurrence": "hourly", "point_reward": 1, "tags": []}],
				"rewards": [{"id": "r", "title": "t", "cost": 1, "category": "tree"}]}`,
		},
		{
			name: "zero reward",
			doc: `{"questions": [{"id": "1", "prompt": "p"}],
				"challenges": [{"id": "c", "title": "t", "recurrence": "daily", "point_reward": 0, "tags": []}],
				"rewards": [{"id": "r", "title": "t", "cost": 1, "category": "tree"}]}`,
		},
		{
			name: "unknown tag",
			doc: `{"questions": [{"id": "1", "prompt": "p"}],
				"challenges": [{"id": "c", "title": "t", "recurrence": "daily", "point_reward": 5, "tags": ["9"]}],
				"rewards": [{"id": "r", "title": "t", "cost": 1, "category": "tree"}]}`,
		},
		{
			name: "duplicate challenge",
			doc: `{"questions": [{"id": "1", "prompt": "p"}],
				"challenges": [
					{"id": "c", "title": "t", "recurrence": "daily", "point_reward": 5, "tags": []},
					{"id": "c", "title": "t", "recurrence": "daily", "point_reward": 5, "tags": []}],
				"rewards": [{"id": "r", "title": "t", "cost": 1, "category": "tree"}]}`,
		},
		{
			name: "bad reward category",
			doc: `{"questions": [{"id": "1", "prompt": "p"}],
				"challenges": [{"id": "c", "title": "t", "recurrence": "daily", "point_reward": 5, "tags": []}],
				"rewards": [{"id": "r", "title": "t", "cost": 1, "category": "cash"}]}`,
		},
		{
			name: "no rewards",
			doc: `{"questions": [{"id": "1", "prompt": "p"}],
				"challenges": [{"id": "c", "title": "t", "recurrence": "daily", "point_reward": 5, "tags": []}],
				"rewards": []}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.doc))
			assert.ErrorIs(t, err, ErrInvalidCatalog)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(minimalCatalog), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, c.Challenges(), 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	c, err = Load("")
	require.NoError(t, err)
	assert.Len(t, c.Challenges(), 14)
}
