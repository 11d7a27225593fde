package feed

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/pawgrove/pawgrove/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeStore implements Store from in-memory fixtures
type fakeStore struct {
	*fakeCounts
	users   map[string]*models.User
	posts   []models.Post
	pets    map[string]*models.Pet
	viewers map[string]*ViewerContext
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		fakeCounts: &fakeCounts{},
		users:      map[string]*models.User{},
		pets:       map[string]*models.Pet{},
		viewers:    map[string]*ViewerContext{},
	}
}

func (f *fakeStore) addUser(id string) *models.User {
	u := &models.User{ID: id, Username: id, DisplayName: "User " + id}
	f.users[id] = u
	return u
}

func (f *fakeStore) addViewer(id string) *ViewerContext {
	f.addUser(id)
	vc := newViewer(id)
	f.viewers[id] = vc
	return vc
}

func (f *fakeStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (f *fakeStore) ListUsers(ctx context.Context) ([]models.User, error) {
	users := make([]models.User, 0, len(f.users))
	for _, u := range f.users {
		users = append(users, *u)
	}
	return users, nil
}

func (f *fakeStore) ListPosts(ctx context.Context) ([]models.Post, error) {
	return append([]models.Post(nil), f.posts...), nil
}

func (f *fakeStore) GetPets(ctx context.Context, ids []string) (map[string]*models.Pet, error) {
	result := map[string]*models.Pet{}
	for _, id := range ids {
		if p, ok := f.pets[id]; ok {
			result[id] = p
		}
	}
	return result, nil
}

func (f *fakeStore) ViewerContext(ctx context.Context, viewerID string) (*ViewerContext, error) {
	vc, ok := f.viewers[viewerID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return vc, nil
}

func newTestService(store Store) *Service {
	return NewService(store, NewLRUCache(16, time.Minute), Config{})
}

func TestPage_SinglePublicPostNoFollows(t *testing.T) {
	store := newFakeStore()
	store.addViewer("viewer")
	store.addUser("author1")
	store.posts = []models.Post{publicPost("p1", "author1")}

	svc := newTestService(store)
	page, err := svc.Page(context.Background(), "viewer", ScopeAll, "", 20)
	require.NoError(t, err)

	require.Len(t, page.Posts, 1)
	assert.Equal(t, "p1", page.Posts[0].ID)
	assert.Equal(t, 1, page.Total)
	assert.Nil(t, page.NextCursor)
	assert.False(t, page.HasMore)
	require.NotNil(t, page.Posts[0].Author)
	assert.Equal(t, "author1", page.Posts[0].Author.ID)
}

func TestPage_UnknownViewer(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	_, err := svc.Page(context.Background(), "nonexistent", ScopeAll, "", 20)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestPage_PrivatePostInvisibleToOthers(t *testing.T) {
	store := newFakeStore()
	store.addViewer("viewer")
	store.addUser("author1")
	private := publicPost("p1", "author1")
	private.Privacy = models.PrivacyPrivate
	store.posts = []models.Post{private}

	svc := newTestService(store)
	page, err := svc.Page(context.Background(), "viewer", ScopeAll, "", 20)
	require.NoError(t, err)

	assert.Empty(t, page.Posts)
	assert.Equal(t, 0, page.Total)
}

func TestPage_FollowersOnlyVisibleToFollower(t *testing.T) {
	store := newFakeStore()
	viewer := store.addViewer("viewer")
	viewer.Following["author1"] = true
	store.addUser("author1")
	post := publicPost("p1", "author1")
	post.Privacy = models.PrivacyFollowersOnly
	store.posts = []models.Post{post}

	svc := newTestService(store)
	page, err := svc.Page(context.Background(), "viewer", ScopeAll, "", 20)
	require.NoError(t, err)

	require.Len(t, page.Posts, 1)
	assert.Equal(t, "p1", page.Posts[0].ID)
}

func TestPage_FollowingScopeFiltersNonFollowed(t *testing.T) {
	store := newFakeStore()
	viewer := store.addViewer("viewer")
	viewer.Following["author1"] = true
	store.addUser("author1")
	store.addUser("author2")
	store.posts = []models.Post{
		publicPost("followed-post", "author1"),
		publicPost("stranger-post", "author2"),
	}

	svc := newTestService(store)
	page, err := svc.Page(context.Background(), "viewer", ScopeFollowing, "", 20)
	require.NoError(t, err)

	require.Len(t, page.Posts, 1)
	assert.Equal(t, "followed-post", page.Posts[0].ID)
}

func TestPage_PaginationWalkReproducesFullList(t *testing.T) {
	store := newFakeStore()
	viewer := store.addViewer("viewer")
	viewer.Following["author1"] = true
	store.addUser("author1")

	now := time.Now()
	for i := 0; i < 7; i++ {
		p := publicPost(fmt.Sprintf("p%d", i), "author1")
		p.CreatedAt = now.Add(-time.Duration(i) * time.Hour)
		store.posts = append(store.posts, p)
	}

	svc := newTestService(store)

	seen := map[string]int{}
	var order []string
	cursor := ""
	pages := 0
	for {
		page, err := svc.Page(context.Background(), "viewer", ScopeAll, cursor, 3)
		require.NoError(t, err)
		require.LessOrEqual(t, len(page.Posts), 3)

		for _, p := range page.Posts {
			seen[p.ID]++
			order = append(order, p.ID)
		}

		if page.NextCursor == nil {
			assert.False(t, page.HasMore)
			break
		}
		assert.True(t, page.HasMore)
		assert.Equal(t, page.Posts[len(page.Posts)-1].ID, *page.NextCursor)
		cursor = *page.NextCursor

		pages++
		require.Less(t, pages, 10, "cursor walk did not terminate")
	}

	assert.Len(t, order, 7)
	for id, count := range seen {
		assert.Equal(t, 1, count, "post %s appeared %d times", id, count)
	}
}

func TestPage_CachedOrderingIsStable(t *testing.T) {
	store := newFakeStore()
	viewer := store.addViewer("viewer")
	viewer.Following["author1"] = true
	store.addUser("author1")

	now := time.Now()
	for i := 0; i < 5; i++ {
		p := publicPost(fmt.Sprintf("p%d", i), "author1")
		p.CreatedAt = now.Add(-time.Duration(i) * time.Minute)
		store.posts = append(store.posts, p)
	}

	svc := newTestService(store)

	first, err := svc.Page(context.Background(), "viewer", ScopeAll, "", 20)
	require.NoError(t, err)
	second, err := svc.Page(context.Background(), "viewer", ScopeAll, "", 20)
	require.NoError(t, err)

	require.Equal(t, len(first.Posts), len(second.Posts))
	for i := range first.Posts {
		assert.Equal(t, first.Posts[i].ID, second.Posts[i].ID)
	}
}

func TestPage_SignatureChangeInvalidatesCache(t *testing.T) {
	store := newFakeStore()
	viewer := store.addViewer("viewer")
	viewer.Following["author1"] = true
	viewer.Following["author2"] = true
	store.addUser("author1")
	store.addUser("author2")

	now := time.Now()
	hot := publicPost("hot", "author1")
	hot.CreatedAt = now.Add(-3 * time.Hour)
	fresh := publicPost("fresh", "author2")
	fresh.CreatedAt = now.Add(-1 * time.Hour)
	store.posts = []models.Post{hot, fresh}

	svc := newTestService(store)

	first, err := svc.Page(context.Background(), "viewer", ScopeAll, "", 20)
	require.NoError(t, err)
	require.Len(t, first.Posts, 2)
	assert.Equal(t, "fresh", first.Posts[0].ID)

	// A burst of reactions changes the signature; the next request must
	// recompute instead of serving the stale ranking
	store.fakeCounts.reactions = map[string]int{"hot": 500}

	second, err := svc.Page(context.Background(), "viewer", ScopeAll, "", 20)
	require.NoError(t, err)
	assert.Equal(t, "hot", second.Posts[0].ID)
	assert.Equal(t, 500, second.Posts[0].ReactionCount)
}

func TestPage_DiscoveryInjectionInAllScope(t *testing.T) {
	store := newFakeStore()
	viewer := store.addViewer("viewer")
	store.addUser("stranger")
	for i := 0; i < 3; i++ {
		friend := fmt.Sprintf("friend%d", i)
		store.addUser(friend)
		viewer.Following[friend] = true
	}

	now := time.Now()
	for i := 0; i < 8; i++ {
		p := publicPost(fmt.Sprintf("post%d", i), fmt.Sprintf("friend%d", i%3))
		p.CreatedAt = now.Add(-time.Duration(i) * time.Hour)
		store.posts = append(store.posts, p)
	}
	discovery := publicPost("discovery", "stranger")
	discovery.CreatedAt = now
	store.posts = append(store.posts, discovery)

	svc := newTestService(store)

	page, err := svc.Page(context.Background(), "viewer", ScopeAll, "", 20)
	require.NoError(t, err)

	require.Len(t, page.Posts, 9)
	assert.Equal(t, "discovery", page.Posts[5].ID)

	// The same stranger post never reaches the following scope
	following, err := svc.Page(context.Background(), "viewer", ScopeFollowing, "", 20)
	require.NoError(t, err)
	for _, p := range following.Posts {
		assert.NotEqual(t, "discovery", p.ID)
	}
}

func TestPage_UnknownCursorStartsFromBeginning(t *testing.T) {
	store := newFakeStore()
	viewer := store.addViewer("viewer")
	viewer.Following["author1"] = true
	store.addUser("author1")
	store.posts = []models.Post{publicPost("p1", "author1")}

	svc := newTestService(store)

	page, err := svc.Page(context.Background(), "viewer", ScopeAll, "no-such-post", 20)
	require.NoError(t, err)
	require.Len(t, page.Posts, 1)
	assert.Equal(t, "p1", page.Posts[0].ID)
}
