package feed

import (
	"fmt"
	"testing"

	"github.com/pawgrove/pawgrove/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func typedPost(id, authorID string, contentType models.ContentType) models.Post {
	p := publicPost(id, authorID)
	p.ContentType = contentType
	return p
}

// countAuthorInWindows verifies the per-author cap holds in every sliding
// window of the result
func maxAuthorPerWindow(posts []models.Post, windowSize int) int {
	max := 0
	for start := 0; start+windowSize <= len(posts); start++ {
		counts := map[string]int{}
		for i := start; i < start+windowSize; i++ {
			counts[posts[i].AuthorID]++
			if counts[posts[i].AuthorID] > max {
				max = counts[posts[i].AuthorID]
			}
		}
	}
	return max
}

func longestTypeRun(posts []models.Post) int {
	longest, run := 0, 0
	for i := range posts {
		if i > 0 && posts[i].ContentType == posts[i-1].ContentType {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

func TestDiversify_AuthorWindowCap(t *testing.T) {
	// Clustered input from three authors; a fully constraint-satisfying
	// interleaving exists, and the greedy walk must find it.
	posts := []models.Post{
		typedPost("a0", "author1", models.ContentStatus),
		typedPost("a1", "author1", models.ContentPhoto),
		typedPost("b0", "author2", models.ContentStatus),
		typedPost("b1", "author2", models.ContentPhoto),
		typedPost("c0", "author3", models.ContentStatus),
		typedPost("c1", "author3", models.ContentPhoto),
	}

	cfg := DiversityConfig{WindowSize: 3, MaxPerAuthorInWindow: 1, MaxSameTypeRun: 2}
	result := Diversify(posts, cfg)

	assert.Len(t, result, len(posts))
	assert.Equal(t, 1, maxAuthorPerWindow(result, cfg.WindowSize))
}

func TestDiversify_SameTypeRunCap(t *testing.T) {
	var posts []models.Post
	for i := 0; i < 3; i++ {
		posts = append(posts, typedPost(fmt.Sprintf("s%d", i), fmt.Sprintf("author%d", i), models.ContentStatus))
	}
	for i := 0; i < 3; i++ {
		posts = append(posts, typedPost(fmt.Sprintf("p%d", i), fmt.Sprintf("author%d", i+3), models.ContentPhoto))
	}

	cfg := DefaultDiversityConfig()
	result := Diversify(posts, cfg)

	assert.Len(t, result, len(posts))
	assert.LessOrEqual(t, longestTypeRun(result), cfg.MaxSameTypeRun)
}

func TestDiversify_AcceptsViolationWhenNoCandidateFits(t *testing.T) {
	// Every post shares the author and type, so every placement past the
	// caps violates; the walk must still terminate and keep all posts.
	var posts []models.Post
	for i := 0; i < 8; i++ {
		posts = append(posts, typedPost(fmt.Sprintf("p%d", i), "author1", models.ContentStatus))
	}

	result := Diversify(posts, DefaultDiversityConfig())

	assert.Len(t, result, 8)
	for i := range posts {
		assert.Equal(t, posts[i].ID, result[i].ID)
	}
}

func TestDiversify_PromotesNearestCandidate(t *testing.T) {
	// Third consecutive author1 post violates; the nearest later candidate
	// (author2, index 2) must be promoted, not a farther one.
	posts := []models.Post{
		typedPost("a1", "author1", models.ContentStatus),
		typedPost("a2", "author1", models.ContentPhoto),
		typedPost("a3", "author1", models.ContentStatus),
		typedPost("b1", "author2", models.ContentPhoto),
		typedPost("c1", "author3", models.ContentStatus),
	}

	cfg := DiversityConfig{WindowSize: 3, MaxPerAuthorInWindow: 2, MaxSameTypeRun: 2}
	result := Diversify(posts, cfg)

	assert.Equal(t, "a1", result[0].ID)
	assert.Equal(t, "a2", result[1].ID)
	assert.Equal(t, "b1", result[2].ID)
}

func TestDiversify_PreservesRelativeOrderOfUnpromoted(t *testing.T) {
	posts := []models.Post{
		typedPost("x1", "author1", models.ContentStatus),
		typedPost("y1", "author2", models.ContentPhoto),
		typedPost("x2", "author1", models.ContentStatus),
		typedPost("y2", "author2", models.ContentPhoto),
	}

	result := Diversify(posts, DefaultDiversityConfig())

	// No constraint fires; order is untouched
	for i := range posts {
		assert.Equal(t, posts[i].ID, result[i].ID)
	}
}

func TestDiversify_EmptyAndSingle(t *testing.T) {
	assert.Empty(t, Diversify(nil, DefaultDiversityConfig()))

	single := []models.Post{publicPost("p1", "a1")}
	assert.Len(t, Diversify(single, DefaultDiversityConfig()), 1)
}
