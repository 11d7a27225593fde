package feed

import (
	"github.com/pawgrove/pawgrove/backend/internal/models"
)

// DefaultDiscoveryOffsets are the feed positions discovery content is
// injected at
var DefaultDiscoveryOffsets = []int{5, 15, 30, 50}

// Inject interleaves discovery candidates into the diversified follow-graph
// feed. At each offset the next unused candidate from the pool whose author
// the viewer does not follow is inserted, and the diversity constraints are
// re-applied to the window around the insertion point.
//
// Offsets beyond the current list length clamp to the end, so sparse feeds
// (a viewer following nobody) still surface discovery content. When the
// pool runs out the remaining offsets are skipped. The pool is expected to
// be visibility-filtered and recency-ranked by the caller.
func Inject(base []models.Post, pool []models.Post, viewer *ViewerContext, offsets []int, cfg DiversityConfig) []models.Post {
	result := append([]models.Post(nil), base...)
	if len(pool) == 0 || len(offsets) == 0 {
		return result
	}

	used := make(map[string]bool, len(result))
	for i := range result {
		used[result[i].ID] = true
	}

	poolIdx := 0
	for _, offset := range offsets {
		candidate := nextCandidate(pool, &poolIdx, used, viewer)
		if candidate == nil {
			break
		}

		pos := offset
		if pos > len(result) {
			pos = len(result)
		}

		result = append(result, models.Post{})
		copy(result[pos+1:], result[pos:])
		result[pos] = *candidate
		used[candidate.ID] = true

		result = repairWindow(result, pos, cfg)
	}

	return result
}

// nextCandidate advances the pool cursor to the next post from an author
// the viewer does not follow and that has not already been placed
func nextCandidate(pool []models.Post, idx *int, used map[string]bool, viewer *ViewerContext) *models.Post {
	for ; *idx < len(pool); *idx++ {
		p := &pool[*idx]
		if used[p.ID] {
			continue
		}
		if p.AuthorID == viewer.ViewerID || viewer.FollowsAuthor(p.AuthorID) {
			continue
		}
		*idx++
		return p
	}
	return nil
}

// repairWindow re-applies the diversity constraints to the span surrounding
// an insertion without disturbing the rest of the list
func repairWindow(posts []models.Post, pos int, cfg DiversityConfig) []models.Post {
	if cfg.WindowSize <= 1 {
		return posts
	}

	start := pos - cfg.WindowSize + 1
	if start < 0 {
		start = 0
	}
	end := pos + cfg.WindowSize
	if end > len(posts) {
		end = len(posts)
	}

	window := Diversify(posts[start:end], cfg)
	copy(posts[start:end], window)
	return posts
}
