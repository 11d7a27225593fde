package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pawgrove/pawgrove/backend/internal/database"
	"github.com/pawgrove/pawgrove/backend/internal/logger"
	"github.com/pawgrove/pawgrove/backend/internal/models"
	"github.com/pawgrove/pawgrove/backend/internal/util"
	"gorm.io/gorm"
)

// SavePost bookmarks a post for the current user
// POST /api/v1/posts/:id/save
func (h *Handlers) SavePost(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	postID := c.Param("id")
	if postID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Post ID is required"})
		return
	}

	var post models.Post
	if err := database.DB.First(&post, "id = ?", postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to find post"})
		return
	}

	var existing models.SavedPost
	err := database.DB.Where("user_id = ? AND post_id = ?", userID, postID).First(&existing).Error
	if err == nil {
		c.JSON(http.StatusOK, gin.H{
			"message": "Post already saved",
			"saved":   true,
		})
		return
	}

	saved := models.SavedPost{
		UserID: userID,
		PostID: postID,
	}
	if err := database.DB.Create(&saved).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save post"})
		return
	}

	// Cached counter only; the aggregator recounts from rows
	if err := database.DB.Model(&post).Update("save_count", gorm.Expr("save_count + 1")).Error; err != nil {
		logger.WarnWithFields("Failed to bump save count for post "+postID, err)
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Post saved successfully",
		"saved":    true,
		"saved_at": saved.CreatedAt,
	})
}

// UnsavePost removes a bookmark
// DELETE /api/v1/posts/:id/save
func (h *Handlers) UnsavePost(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	postID := c.Param("id")
	if postID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Post ID is required"})
		return
	}

	result := database.DB.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.SavedPost{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unsave post"})
		return
	}

	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post was not saved"})
		return
	}

	if err := database.DB.Model(&models.Post{}).
		Where("id = ? AND save_count > 0", postID).
		Update("save_count", gorm.Expr("save_count - 1")).Error; err != nil {
		logger.WarnWithFields("Failed to decrement save count for post "+postID, err)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Post unsaved successfully",
		"saved":   false,
	})
}

// GetSavedPosts returns the current user's bookmarked posts
// GET /api/v1/users/me/saved
func (h *Handlers) GetSavedPosts(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	limit := util.ParseInt(c.DefaultQuery("limit", "50"), 50)
	offset := util.ParseInt(c.DefaultQuery("offset", "0"), 0)
	if limit > 100 {
		limit = 100
	}

	var savedPosts []models.SavedPost
	err := database.DB.
		Preload("Post").
		Preload("Post.Author").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&savedPosts).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get saved posts"})
		return
	}

	var totalCount int64
	if err := database.DB.Model(&models.SavedPost{}).Where("user_id = ?", userID).Count(&totalCount).Error; err != nil {
		logger.WarnWithFields("Failed to count saved posts for "+userID, err)
		totalCount = 0
	}

	posts := make([]gin.H, len(savedPosts))
	for i, sp := range savedPosts {
		posts[i] = gin.H{
			"id":           sp.Post.ID,
			"title":        sp.Post.Title,
			"content":      sp.Post.Content,
			"content_type": sp.Post.ContentType,
			"author": gin.H{
				"id":           sp.Post.Author.ID,
				"username":     sp.Post.Author.Username,
				"display_name": sp.Post.Author.DisplayName,
				"avatar_url":   sp.Post.Author.GetAvatarURL(),
			},
			"saved_at": sp.CreatedAt,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":       posts,
		"total_count": totalCount,
		"limit":       limit,
		"offset":      offset,
		"has_more":    offset+len(posts) < int(totalCount),
	})
}
