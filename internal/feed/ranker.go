package feed

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/pawgrove/pawgrove/backend/internal/models"
)

// RankConfig tunes the relevance scoring weights
type RankConfig struct {
	// RecencyHalfLife is the post age at which the recency component halves
	RecencyHalfLife time.Duration
	// FollowBoost is added when the viewer follows the post's author
	FollowBoost float64
	// EngagementWeight scales the log of the weighted engagement sum
	EngagementWeight float64
	// ReactionWeight and CommentWeight weight the engagement sum
	ReactionWeight float64
	CommentWeight  float64
	// PlaceBoost is added when the post is tagged with the viewer's home place
	PlaceBoost float64
}

// DefaultRankConfig returns the production scoring weights
func DefaultRankConfig() RankConfig {
	return RankConfig{
		RecencyHalfLife:  24 * time.Hour,
		FollowBoost:      2.0,
		EngagementWeight: 1.0,
		ReactionWeight:   1.5,
		CommentWeight:    2.0,
		PlaceBoost:       0.5,
	}
}

// Rank scores and orders posts by relevance to the viewer. Posts matching
// any of the viewer's muted keywords are excluded entirely. The input slice
// is never mutated; a new ordering is returned.
//
// Ties are broken by most-recent creation time, then by post id, so the
// ordering is deterministic for identical inputs.
func Rank(posts []models.Post, eng *Engagement, viewer *ViewerContext, now time.Time, cfg RankConfig) []models.Post {
	type scored struct {
		post  models.Post
		score float64
	}

	items := make([]scored, 0, len(posts))
	for i := range posts {
		post := posts[i]
		if matchesMutedKeyword(&post, viewer.MutedKeywords) {
			continue
		}
		items = append(items, scored{post: post, score: score(&post, eng, viewer, now, cfg)})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].score != items[j].score {
			return items[i].score > items[j].score
		}
		if !items[i].post.CreatedAt.Equal(items[j].post.CreatedAt) {
			return items[i].post.CreatedAt.After(items[j].post.CreatedAt)
		}
		return items[i].post.ID < items[j].post.ID
	})

	ranked := make([]models.Post, len(items))
	for i := range items {
		ranked[i] = items[i].post
	}
	return ranked
}

// score combines recency decay, author affinity, log-scaled engagement and
// place affinity into a single relevance value
func score(post *models.Post, eng *Engagement, viewer *ViewerContext, now time.Time, cfg RankConfig) float64 {
	age := now.Sub(post.CreatedAt)
	if age < 0 {
		age = 0
	}
	halfLives := age.Hours() / cfg.RecencyHalfLife.Hours()
	s := math.Exp2(-halfLives)

	if viewer.FollowsAuthor(post.AuthorID) {
		s += cfg.FollowBoost
	}

	engagement := cfg.ReactionWeight*float64(eng.ReactionCounts[post.ID]) +
		cfg.CommentWeight*float64(eng.CommentCounts[post.ID])
	s += cfg.EngagementWeight * math.Log1p(engagement)

	if viewer.HomePlaceID != "" && post.PlaceID != nil && *post.PlaceID == viewer.HomePlaceID {
		s += cfg.PlaceBoost
	}

	return s
}

// matchesMutedKeyword reports whether the post's title or content contains
// any muted keyword, case-insensitively
func matchesMutedKeyword(post *models.Post, keywords []string) bool {
	if len(keywords) == 0 {
		return false
	}
	title := strings.ToLower(post.Title)
	content := strings.ToLower(post.Content)
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if strings.Contains(title, kw) || strings.Contains(content, kw) {
			return true
		}
	}
	return false
}
