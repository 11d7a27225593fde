package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pawgrove/pawgrove/backend/internal/auth"
	"github.com/pawgrove/pawgrove/backend/internal/database"
	"github.com/pawgrove/pawgrove/backend/internal/feed"
	applogger "github.com/pawgrove/pawgrove/backend/internal/logger"
	"github.com/pawgrove/pawgrove/backend/internal/models"
	"github.com/pawgrove/pawgrove/backend/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SocialTestSuite tests the social graph write endpoints
type SocialTestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine
}

func (suite *SocialTestSuite) SetupSuite() {
	applogger.InitializeForTests()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(suite.T(), err)

	database.DB = db
	suite.db = db

	err = db.AutoMigrate(
		&models.User{},
		&models.Pet{},
		&models.Place{},
		&models.Post{},
		&models.PostReaction{},
		&models.Comment{},
		&models.Follow{},
		&models.PetFollow{},
		&models.MutedUser{},
		&models.UserBlock{},
		&models.HiddenPost{},
		&models.SavedPost{},
	)
	require.NoError(suite.T(), err)

	gin.SetMode(gin.TestMode)
}

func (suite *SocialTestSuite) SetupTest() {
	for _, model := range []interface{}{
		&models.PostReaction{}, &models.Comment{}, &models.SavedPost{},
		&models.HiddenPost{}, &models.MutedUser{}, &models.UserBlock{},
		&models.Follow{}, &models.PetFollow{}, &models.Post{},
		&models.Pet{}, &models.User{}, &models.Place{},
	} {
		suite.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(model)
	}

	feedService := feed.NewService(
		store.NewGormStore(suite.db),
		feed.NewLRUCache(16, time.Minute),
		feed.Config{},
	)
	h := NewHandlers(feedService, auth.NewService([]byte("test-secret")))

	suite.router = gin.New()

	// Tests authenticate with a header instead of a real JWT
	authed := suite.router.Group("/api/v1")
	authed.Use(func(c *gin.Context) {
		if userID := c.GetHeader("X-User-ID"); userID != "" {
			c.Set("user_id", userID)
		}
		c.Next()
	})

	authed.POST("/users/:id/follow", h.FollowUser)
	authed.DELETE("/users/:id/follow", h.UnfollowUser)
	authed.POST("/users/:id/mute", h.MuteUser)
	authed.DELETE("/users/:id/mute", h.UnmuteUser)
	authed.POST("/users/:id/block", h.BlockUser)
	authed.DELETE("/users/:id/block", h.UnblockUser)
	authed.POST("/posts/:id/reactions", h.ReactToPost)
	authed.DELETE("/posts/:id/reactions", h.RemoveReaction)
	authed.POST("/posts/:id/save", h.SavePost)
	authed.DELETE("/posts/:id/save", h.UnsavePost)
	authed.POST("/posts/:id/hide", h.HidePost)
	authed.DELETE("/posts/:id/hide", h.UnhidePost)
	authed.POST("/pets/:id/follow", h.FollowPet)
	authed.DELETE("/pets/:id/follow", h.UnfollowPet)
}

func (suite *SocialTestSuite) createUser(id string) *models.User {
	user := &models.User{
		ID:          id,
		Email:       id + "@example.com",
		Username:    id,
		DisplayName: "User " + id,
	}
	require.NoError(suite.T(), suite.db.Create(user).Error)
	return user
}

func (suite *SocialTestSuite) createPost(id, authorID string) *models.Post {
	post := &models.Post{
		ID:       id,
		AuthorID: authorID,
		Content:  "Content of " + id,
	}
	require.NoError(suite.T(), suite.db.Create(post).Error)
	return post
}

func (suite *SocialTestSuite) request(method, path, userID string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(suite.T(), json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	var resp map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func (suite *SocialTestSuite) TestFollowUpdatesCounters() {
	suite.createUser("alice")
	suite.createUser("bob")

	w, resp := suite.request("POST", "/api/v1/users/bob/follow", "alice", nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), true, resp["following"])

	var alice, bob models.User
	require.NoError(suite.T(), suite.db.First(&alice, "id = ?", "alice").Error)
	require.NoError(suite.T(), suite.db.First(&bob, "id = ?", "bob").Error)
	assert.Equal(suite.T(), 1, alice.FollowingCount)
	assert.Equal(suite.T(), 1, bob.FollowerCount)

	// Following again is idempotent and does not double count
	w, _ = suite.request("POST", "/api/v1/users/bob/follow", "alice", nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	require.NoError(suite.T(), suite.db.First(&bob, "id = ?", "bob").Error)
	assert.Equal(suite.T(), 1, bob.FollowerCount)
}

func (suite *SocialTestSuite) TestUnfollowNotFollowingReturns404() {
	suite.createUser("alice")
	suite.createUser("bob")

	w, _ := suite.request("DELETE", "/api/v1/users/bob/follow", "alice", nil)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *SocialTestSuite) TestCannotFollowSelf() {
	suite.createUser("alice")

	w, _ := suite.request("POST", "/api/v1/users/alice/follow", "alice", nil)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *SocialTestSuite) TestBlockSeversFollowsBothWays() {
	suite.createUser("alice")
	suite.createUser("bob")
	require.NoError(suite.T(), suite.db.Create(&models.Follow{FollowerID: "alice", FolloweeID: "bob"}).Error)
	require.NoError(suite.T(), suite.db.Create(&models.Follow{FollowerID: "bob", FolloweeID: "alice"}).Error)

	w, resp := suite.request("POST", "/api/v1/users/bob/block", "alice", nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), true, resp["blocked"])

	var followCount int64
	suite.db.Model(&models.Follow{}).Count(&followCount)
	assert.Equal(suite.T(), int64(0), followCount)
}

func (suite *SocialTestSuite) TestBlockForbidsFollowing() {
	suite.createUser("alice")
	suite.createUser("bob")
	require.NoError(suite.T(), suite.db.Create(&models.UserBlock{BlockerID: "bob", BlockedID: "alice"}).Error)

	w, resp := suite.request("POST", "/api/v1/users/bob/follow", "alice", nil)
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
	assert.Equal(suite.T(), "Cannot follow this user", resp["error"])
}

func (suite *SocialTestSuite) TestMuteAndUnmute() {
	suite.createUser("alice")
	suite.createUser("bob")

	w, resp := suite.request("POST", "/api/v1/users/bob/mute", "alice", nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), true, resp["muted"])

	w, resp = suite.request("POST", "/api/v1/users/bob/mute", "alice", nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), "User already muted", resp["message"])

	w, resp = suite.request("DELETE", "/api/v1/users/bob/mute", "alice", nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), false, resp["muted"])

	w, _ = suite.request("DELETE", "/api/v1/users/bob/mute", "alice", nil)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *SocialTestSuite) TestMuteUnknownUserReturns404() {
	suite.createUser("alice")

	w, _ := suite.request("POST", "/api/v1/users/ghost/mute", "alice", nil)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *SocialTestSuite) TestReactionReplacesCategory() {
	suite.createUser("alice")
	suite.createUser("bob")
	suite.createPost("p1", "bob")

	w, resp := suite.request("POST", "/api/v1/posts/p1/reactions", "alice", gin.H{"category": "like"})
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), "Reaction added", resp["message"])

	// Same category again leaves the row alone
	w, resp = suite.request("POST", "/api/v1/posts/p1/reactions", "alice", gin.H{"category": "like"})
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), "Reaction unchanged", resp["message"])

	// A different category replaces instead of adding a second row
	w, resp = suite.request("POST", "/api/v1/posts/p1/reactions", "alice", gin.H{"category": "love"})
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), "Reaction updated", resp["message"])

	var count int64
	suite.db.Model(&models.PostReaction{}).Where("post_id = ?", "p1").Count(&count)
	assert.Equal(suite.T(), int64(1), count)

	var post models.Post
	require.NoError(suite.T(), suite.db.First(&post, "id = ?", "p1").Error)
	assert.Equal(suite.T(), 1, post.ReactionCount)
}

func (suite *SocialTestSuite) TestInvalidReactionCategoryReturns400() {
	suite.createUser("alice")
	suite.createUser("bob")
	suite.createPost("p1", "bob")

	w, _ := suite.request("POST", "/api/v1/posts/p1/reactions", "alice", gin.H{"category": "yawn"})
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *SocialTestSuite) TestRemoveReactionDecrementsCounter() {
	suite.createUser("alice")
	suite.createUser("bob")
	suite.createPost("p1", "bob")
	suite.request("POST", "/api/v1/posts/p1/reactions", "alice", gin.H{"category": "like"})

	w, _ := suite.request("DELETE", "/api/v1/posts/p1/reactions", "alice", nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var post models.Post
	require.NoError(suite.T(), suite.db.First(&post, "id = ?", "p1").Error)
	assert.Equal(suite.T(), 0, post.ReactionCount)

	w, _ = suite.request("DELETE", "/api/v1/posts/p1/reactions", "alice", nil)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *SocialTestSuite) TestSaveAndUnsavePost() {
	suite.createUser("alice")
	suite.createUser("bob")
	suite.createPost("p1", "bob")

	w, resp := suite.request("POST", "/api/v1/posts/p1/save", "alice", nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), true, resp["saved"])

	var post models.Post
	require.NoError(suite.T(), suite.db.First(&post, "id = ?", "p1").Error)
	assert.Equal(suite.T(), 1, post.SaveCount)

	w, resp = suite.request("DELETE", "/api/v1/posts/p1/save", "alice", nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), false, resp["saved"])

	require.NoError(suite.T(), suite.db.First(&post, "id = ?", "p1").Error)
	assert.Equal(suite.T(), 0, post.SaveCount)
}

func (suite *SocialTestSuite) TestHideAndUnhidePost() {
	suite.createUser("alice")
	suite.createUser("bob")
	suite.createPost("p1", "bob")

	w, resp := suite.request("POST", "/api/v1/posts/p1/hide", "alice", nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), true, resp["hidden"])

	var count int64
	suite.db.Model(&models.HiddenPost{}).Where("user_id = ?", "alice").Count(&count)
	assert.Equal(suite.T(), int64(1), count)

	w, resp = suite.request("DELETE", "/api/v1/posts/p1/hide", "alice", nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), false, resp["hidden"])
}

func (suite *SocialTestSuite) TestPetFollowUpdatesCounter() {
	suite.createUser("alice")
	suite.createUser("bob")
	pet := &models.Pet{ID: "rex", OwnerID: "bob", Name: "Rex", Species: "dog"}
	require.NoError(suite.T(), suite.db.Create(pet).Error)

	w, resp := suite.request("POST", "/api/v1/pets/rex/follow", "alice", nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), true, resp["following"])

	var stored models.Pet
	require.NoError(suite.T(), suite.db.First(&stored, "id = ?", "rex").Error)
	assert.Equal(suite.T(), 1, stored.FollowerCount)

	w, _ = suite.request("DELETE", "/api/v1/pets/rex/follow", "alice", nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	require.NoError(suite.T(), suite.db.First(&stored, "id = ?", "rex").Error)
	assert.Equal(suite.T(), 0, stored.FollowerCount)
}

func (suite *SocialTestSuite) TestUnauthenticatedReturns401() {
	w, _ := suite.request("POST", "/api/v1/users/bob/follow", "", nil)
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

func TestSocialTestSuite(t *testing.T) {
	suite.Run(t, new(SocialTestSuite))
}
