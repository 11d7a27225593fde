package feed

import (
	"testing"
	"time"

	"github.com/pawgrove/pawgrove/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func newViewer(id string) *ViewerContext {
	return &ViewerContext{
		ViewerID:     id,
		Following:    map[string]bool{},
		FollowedPets: map[string]bool{},
		Muted:        map[string]bool{},
		Blocked:      map[string]bool{},
		HiddenPosts:  map[string]bool{},
	}
}

func publicPost(id, authorID string) models.Post {
	return models.Post{
		ID:          id,
		AuthorID:    authorID,
		Privacy:     models.PrivacyPublic,
		ContentType: models.ContentStatus,
		CreatedAt:   time.Now(),
	}
}

func TestIsVisible_SoftDeletedPost(t *testing.T) {
	post := publicPost("p1", "a1")
	post.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	author := &models.User{ID: "a1"}

	assert.False(t, IsVisible(&post, author, newViewer("v1"), ScopeAll))
}

func TestIsVisible_DeletedAuthor(t *testing.T) {
	post := publicPost("p1", "a1")
	author := &models.User{ID: "a1", DeletedAt: gorm.DeletedAt{Time: time.Now(), Valid: true}}

	assert.False(t, IsVisible(&post, author, newViewer("v1"), ScopeAll))
	assert.False(t, IsVisible(&post, nil, newViewer("v1"), ScopeAll))
}

func TestIsVisible_HiddenMutedBlocked(t *testing.T) {
	post := publicPost("p1", "a1")
	author := &models.User{ID: "a1"}

	hidden := newViewer("v1")
	hidden.HiddenPosts["p1"] = true
	assert.False(t, IsVisible(&post, author, hidden, ScopeAll))

	muted := newViewer("v1")
	muted.Muted["a1"] = true
	assert.False(t, IsVisible(&post, author, muted, ScopeAll))

	blocked := newViewer("v1")
	blocked.Blocked["a1"] = true
	assert.False(t, IsVisible(&post, author, blocked, ScopeAll))
}

func TestIsVisible_PrivacyLevels(t *testing.T) {
	author := &models.User{ID: "a1"}

	pub := publicPost("p1", "a1")
	assert.True(t, IsVisible(&pub, author, newViewer("v1"), ScopeAll))

	followersOnly := publicPost("p2", "a1")
	followersOnly.Privacy = models.PrivacyFollowersOnly
	assert.False(t, IsVisible(&followersOnly, author, newViewer("v1"), ScopeAll))

	follower := newViewer("v1")
	follower.Following["a1"] = true
	assert.True(t, IsVisible(&followersOnly, author, follower, ScopeAll))

	private := publicPost("p3", "a1")
	private.Privacy = models.PrivacyPrivate
	assert.False(t, IsVisible(&private, author, follower, ScopeAll))
	assert.True(t, IsVisible(&private, author, newViewer("a1"), ScopeAll))
}

func TestIsVisible_UnknownPrivacyTreatedAsPrivate(t *testing.T) {
	post := publicPost("p1", "a1")
	post.Privacy = models.PrivacyLevel("friends-of-friends")
	author := &models.User{ID: "a1"}

	assert.False(t, IsVisible(&post, author, newViewer("v1"), ScopeAll))
	assert.True(t, IsVisible(&post, author, newViewer("a1"), ScopeAll))
}

func TestIsVisible_FollowingScope(t *testing.T) {
	author := &models.User{ID: "a1"}
	post := publicPost("p1", "a1")

	// Not followed: invisible in following scope, visible in all scope
	viewer := newViewer("v1")
	assert.False(t, IsVisible(&post, author, viewer, ScopeFollowing))
	assert.True(t, IsVisible(&post, author, viewer, ScopeAll))

	// Followed author passes
	viewer.Following["a1"] = true
	assert.True(t, IsVisible(&post, author, viewer, ScopeFollowing))

	// A followed pet also satisfies the requirement
	petID := "pet1"
	petPost := publicPost("p2", "a2")
	petPost.PetID = &petID
	petViewer := newViewer("v1")
	petViewer.FollowedPets[petID] = true
	assert.True(t, IsVisible(&petPost, &models.User{ID: "a2"}, petViewer, ScopeFollowing))

	// Own posts always pass the follow requirement
	own := publicPost("p3", "v1")
	assert.True(t, IsVisible(&own, &models.User{ID: "v1"}, newViewer("v1"), ScopeFollowing))
}

func TestFilterVisible_PreservesOrderAndDropsUnknownAuthors(t *testing.T) {
	posts := []models.Post{
		publicPost("p1", "a1"),
		publicPost("p2", "ghost"),
		publicPost("p3", "a2"),
	}
	authors := map[string]*models.User{
		"a1": {ID: "a1"},
		"a2": {ID: "a2"},
	}

	visible := FilterVisible(posts, authors, newViewer("v1"), ScopeAll)

	assert.Len(t, visible, 2)
	assert.Equal(t, "p1", visible[0].ID)
	assert.Equal(t, "p3", visible[1].ID)
}
