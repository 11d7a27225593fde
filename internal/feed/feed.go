// Package feed implements the ranked feed pipeline: visibility filtering,
// engagement aggregation, relevance ranking, diversity constraints, discovery
// injection and caching of the processed list.
package feed

// Scope selects which feed variant is computed
type Scope string

const (
	// ScopeAll is the global ranked feed with discovery injection
	ScopeAll Scope = "all"
	// ScopeFollowing restricts the feed to followed authors and pets
	ScopeFollowing Scope = "following"
)

// ValidScope reports whether s is a recognized feed scope
func ValidScope(s string) bool {
	return s == string(ScopeAll) || s == string(ScopeFollowing)
}

// ViewerContext carries the per-request social-graph state of the viewer.
// It is assembled by the store once per request and treated as read-only by
// every pipeline stage.
type ViewerContext struct {
	ViewerID      string
	Following     map[string]bool // followed user ids
	FollowedPets  map[string]bool // followed pet ids
	Muted         map[string]bool // muted user ids
	Blocked       map[string]bool // blocked user ids, union of both directions
	HiddenPosts   map[string]bool // post ids the viewer explicitly hid
	MutedKeywords []string
	HomePlaceID   string
}

// FollowsAuthor reports whether the viewer follows the given user
func (v *ViewerContext) FollowsAuthor(userID string) bool {
	return v.Following[userID]
}

// FollowsPet reports whether the viewer follows the given pet
func (v *ViewerContext) FollowsPet(petID string) bool {
	return v.FollowedPets[petID]
}
