package feed

import (
	"github.com/pawgrove/pawgrove/backend/internal/models"
)

// DiversityConfig bounds author and content-type repetition in the feed
type DiversityConfig struct {
	// WindowSize is the span of consecutive positions the author cap applies to
	WindowSize int
	// MaxPerAuthorInWindow caps posts by one author inside any window
	MaxPerAuthorInWindow int
	// MaxSameTypeRun caps consecutive posts of the same content type
	MaxSameTypeRun int
}

// DefaultDiversityConfig returns the production diversity constraints
func DefaultDiversityConfig() DiversityConfig {
	return DiversityConfig{
		WindowSize:           5,
		MaxPerAuthorInWindow: 2,
		MaxSameTypeRun:       2,
	}
}

// Diversify reorders a ranked list so that no author dominates a sliding
// window and no content type repeats in long runs. The walk is greedy: when
// the head of the remaining list would violate a constraint, the nearest
// later candidate that satisfies both constraints is promoted; relative
// order of everything else is preserved. If no candidate satisfies the
// constraints the violation is accepted rather than stalling, so the
// function terminates for any finite input.
func Diversify(posts []models.Post, cfg DiversityConfig) []models.Post {
	if len(posts) <= 1 {
		return append([]models.Post(nil), posts...)
	}

	pending := append([]models.Post(nil), posts...)
	result := make([]models.Post, 0, len(posts))

	for len(pending) > 0 {
		pick := 0
		if violates(result, &pending[0], cfg) {
			// Nearest later candidate wins; index order is the tie-break.
			for i := 1; i < len(pending); i++ {
				if !violates(result, &pending[i], cfg) {
					pick = i
					break
				}
			}
		}

		result = append(result, pending[pick])
		pending = append(pending[:pick], pending[pick+1:]...)
	}

	return result
}

// violates reports whether appending the candidate to result would break
// either diversity constraint
func violates(result []models.Post, candidate *models.Post, cfg DiversityConfig) bool {
	if cfg.MaxPerAuthorInWindow > 0 && cfg.WindowSize > 1 {
		// Count the candidate's author within the trailing window that the
		// candidate would complete.
		start := len(result) - (cfg.WindowSize - 1)
		if start < 0 {
			start = 0
		}
		authorCount := 0
		for i := start; i < len(result); i++ {
			if result[i].AuthorID == candidate.AuthorID {
				authorCount++
			}
		}
		if authorCount+1 > cfg.MaxPerAuthorInWindow {
			return true
		}
	}

	if cfg.MaxSameTypeRun > 0 {
		run := 0
		for i := len(result) - 1; i >= 0; i-- {
			if result[i].ContentType != candidate.ContentType {
				break
			}
			run++
		}
		if run+1 > cfg.MaxSameTypeRun {
			return true
		}
	}

	return false
}
