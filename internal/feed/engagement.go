package feed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pawgrove/pawgrove/backend/internal/logger"
	"github.com/pawgrove/pawgrove/backend/internal/models"
	"go.uber.org/zap"
)

// CountSource provides batched engagement counters for a set of post ids.
// Each method returns a map keyed by post id; missing keys mean zero.
type CountSource interface {
	CommentCounts(ctx context.Context, postIDs []string) (map[string]int, error)
	ReactionCounts(ctx context.Context, postIDs []string) (map[string]int, error)
	ShareCounts(ctx context.Context, postIDs []string) (map[string]int, error)
	SaveCounts(ctx context.Context, postIDs []string) (map[string]int, error)
}

// Engagement summarizes the engagement state of the visible post set.
// Failures counts sub-lookups that errored and were treated as zero; the
// feed still renders when a single counter source is unavailable.
type Engagement struct {
	CommentCounts  map[string]int
	ReactionCounts map[string]int
	ShareCounts    map[string]int
	SaveCounts     map[string]int

	TotalReactions int
	TotalComments  int
	TotalShares    int
	TotalSaves     int

	LatestUpdate time.Time
	Failures     int
}

// Aggregate computes engagement counters for the visible posts. Share counts
// are derived globally (every share row referencing a post is counted, not
// just shares the viewer can see), which the CountSource implementation is
// responsible for.
func Aggregate(ctx context.Context, src CountSource, visible []models.Post) *Engagement {
	ids := make([]string, len(visible))
	for i := range visible {
		ids[i] = visible[i].ID
	}

	e := &Engagement{}

	e.CommentCounts = e.lookup(ctx, "comment_counts", ids, src.CommentCounts)
	e.ReactionCounts = e.lookup(ctx, "reaction_counts", ids, src.ReactionCounts)
	e.ShareCounts = e.lookup(ctx, "share_counts", ids, src.ShareCounts)
	e.SaveCounts = e.lookup(ctx, "save_counts", ids, src.SaveCounts)

	for i := range visible {
		id := visible[i].ID
		e.TotalComments += e.CommentCounts[id]
		e.TotalReactions += e.ReactionCounts[id]
		e.TotalShares += e.ShareCounts[id]
		e.TotalSaves += e.SaveCounts[id]

		if visible[i].UpdatedAt.After(e.LatestUpdate) {
			e.LatestUpdate = visible[i].UpdatedAt
		}
	}

	return e
}

// lookup runs one batched counter query, falling back to an empty map on
// error so a single failing source never aborts the whole aggregation.
func (e *Engagement) lookup(ctx context.Context, name string, ids []string, fn func(context.Context, []string) (map[string]int, error)) map[string]int {
	counts, err := fn(ctx, ids)
	if err != nil {
		logger.Log.Warn("engagement lookup failed, treating as zero",
			zap.String("source", name),
			zap.Error(err))
		e.Failures++
		return map[string]int{}
	}
	if counts == nil {
		return map[string]int{}
	}
	return counts
}

// Signature builds a compact string summarizing engagement state plus the
// viewer's muted-keyword and hidden-post state. The cache compares it to
// decide whether a stored ranking is still valid without deep comparison.
func Signature(e *Engagement, viewer *ViewerContext) string {
	return fmt.Sprintf("%d|%d|%d|%d|%d|%d|%s",
		e.LatestUpdate.UnixMilli(),
		e.TotalReactions,
		e.TotalComments,
		e.TotalShares,
		e.TotalSaves,
		len(viewer.HiddenPosts),
		strings.Join(viewer.MutedKeywords, ","),
	)
}
