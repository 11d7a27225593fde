package feed

import (
	"testing"
	"time"

	"github.com/pawgrove/pawgrove/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestRank_FollowBoostOutranksRecency(t *testing.T) {
	now := time.Now()
	older := publicPost("followed", "a1")
	older.CreatedAt = now.Add(-6 * time.Hour)
	newer := publicPost("stranger", "a2")
	newer.CreatedAt = now.Add(-1 * time.Hour)

	viewer := newViewer("v1")
	viewer.Following["a1"] = true

	ranked := Rank([]models.Post{newer, older}, &Engagement{}, viewer, now, DefaultRankConfig())

	assert.Equal(t, "followed", ranked[0].ID)
	assert.Equal(t, "stranger", ranked[1].ID)
}

func TestRank_EngagementBoost(t *testing.T) {
	now := time.Now()
	quiet := publicPost("quiet", "a1")
	quiet.CreatedAt = now.Add(-2 * time.Hour)
	popular := publicPost("popular", "a2")
	popular.CreatedAt = now.Add(-2 * time.Hour)

	eng := &Engagement{
		ReactionCounts: map[string]int{"popular": 40},
		CommentCounts:  map[string]int{"popular": 12},
	}

	ranked := Rank([]models.Post{quiet, popular}, eng, newViewer("v1"), now, DefaultRankConfig())

	assert.Equal(t, "popular", ranked[0].ID)
}

func TestRank_PlaceBoost(t *testing.T) {
	now := time.Now()
	placeID := "place1"

	local := publicPost("local", "a1")
	local.CreatedAt = now.Add(-1 * time.Hour)
	local.PlaceID = &placeID
	elsewhere := publicPost("elsewhere", "a2")
	elsewhere.CreatedAt = now.Add(-1 * time.Hour)

	viewer := newViewer("v1")
	viewer.HomePlaceID = placeID

	ranked := Rank([]models.Post{elsewhere, local}, &Engagement{}, viewer, now, DefaultRankConfig())

	assert.Equal(t, "local", ranked[0].ID)
}

func TestRank_MutedKeywordExcluded(t *testing.T) {
	now := time.Now()
	clean := publicPost("clean", "a1")
	clean.Content = "a lovely walk in the park"
	matching := publicPost("matching", "a2")
	matching.Title = "Fireworks tonight!"

	viewer := newViewer("v1")
	viewer.MutedKeywords = []string{"fireworks"}

	ranked := Rank([]models.Post{clean, matching}, &Engagement{}, viewer, now, DefaultRankConfig())

	assert.Len(t, ranked, 1)
	assert.Equal(t, "clean", ranked[0].ID)
}

func TestRank_DeterministicTieBreak(t *testing.T) {
	now := time.Now()
	created := now.Add(-1 * time.Hour)

	a := publicPost("aaa", "a1")
	a.CreatedAt = created
	b := publicPost("bbb", "a2")
	b.CreatedAt = created

	first := Rank([]models.Post{b, a}, &Engagement{}, newViewer("v1"), now, DefaultRankConfig())
	second := Rank([]models.Post{a, b}, &Engagement{}, newViewer("v1"), now, DefaultRankConfig())

	// Equal score and timestamp: post id breaks the tie, regardless of
	// input order
	assert.Equal(t, "aaa", first[0].ID)
	assert.Equal(t, first, second)
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	now := time.Now()
	posts := []models.Post{
		publicPost("p1", "a1"),
		publicPost("p2", "a2"),
		publicPost("p3", "a3"),
	}
	posts[0].CreatedAt = now.Add(-10 * time.Hour)
	posts[1].CreatedAt = now.Add(-1 * time.Hour)
	posts[2].CreatedAt = now.Add(-5 * time.Hour)

	original := append([]models.Post(nil), posts...)
	Rank(posts, &Engagement{}, newViewer("v1"), now, DefaultRankConfig())

	assert.Equal(t, original, posts)
}
