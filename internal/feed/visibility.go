package feed

import (
	"github.com/pawgrove/pawgrove/backend/internal/models"
)

// IsVisible decides whether the viewer is permitted to see the post.
// The checks run in a fixed order: soft deletion, unknown author, the
// viewer's hidden list, mutes, blocks (either direction), then the follow
// requirement for the "following" scope, and finally the privacy predicate.
func IsVisible(post *models.Post, author *models.User, viewer *ViewerContext, scope Scope) bool {
	if post.DeletedAt.Valid {
		return false
	}
	if author == nil || author.DeletedAt.Valid {
		return false
	}
	if viewer.HiddenPosts[post.ID] {
		return false
	}
	if viewer.Muted[author.ID] {
		return false
	}
	if viewer.Blocked[author.ID] {
		return false
	}

	if scope == ScopeFollowing && author.ID != viewer.ViewerID {
		followsPet := post.PetID != nil && viewer.FollowsPet(*post.PetID)
		if !viewer.FollowsAuthor(author.ID) && !followsPet {
			return false
		}
	}

	switch post.Privacy {
	case models.PrivacyPublic:
		return true
	case models.PrivacyFollowersOnly:
		return author.ID == viewer.ViewerID || viewer.FollowsAuthor(author.ID)
	case models.PrivacyPrivate:
		return author.ID == viewer.ViewerID
	default:
		// Unknown privacy levels are treated as private
		return author.ID == viewer.ViewerID
	}
}

// FilterVisible returns the subset of posts the viewer may see, preserving
// input order. Posts whose author is missing from the authors map are
// dropped.
func FilterVisible(posts []models.Post, authors map[string]*models.User, viewer *ViewerContext, scope Scope) []models.Post {
	visible := make([]models.Post, 0, len(posts))
	for i := range posts {
		author := authors[posts[i].AuthorID]
		if IsVisible(&posts[i], author, viewer, scope) {
			visible = append(visible, posts[i])
		}
	}
	return visible
}
