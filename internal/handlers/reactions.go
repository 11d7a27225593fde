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

// ReactToPost sets the current user's reaction on a post. A user holds at
// most one reaction per post; reacting again replaces the category.
// POST /api/v1/posts/:id/reactions
func (h *Handlers) ReactToPost(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	postID := c.Param("id")
	if postID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Post ID is required"})
		return
	}

	var req struct {
		Category string `json:"category" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category is required"})
		return
	}

	category := models.ReactionCategory(req.Category)
	if !validReactionCategory(category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reaction category"})
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

	var existing models.PostReaction
	err := database.DB.Where("post_id = ? AND user_id = ?", postID, userID).First(&existing).Error
	if err == nil {
		if existing.Category == category {
			c.JSON(http.StatusOK, gin.H{
				"message":  "Reaction unchanged",
				"category": category,
			})
			return
		}
		if err := database.DB.Model(&existing).Update("category", category).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update reaction"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message":  "Reaction updated",
			"category": category,
		})
		return
	}

	reaction := models.PostReaction{
		PostID:   postID,
		UserID:   userID,
		Category: category,
	}
	if err := database.DB.Create(&reaction).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to react to post"})
		return
	}

	if err := database.DB.Model(&post).Update("reaction_count", gorm.Expr("reaction_count + 1")).Error; err != nil {
		logger.WarnWithFields("Failed to bump reaction count for post "+postID, err)
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Reaction added",
		"category": category,
	})
}

// RemoveReaction removes the current user's reaction from a post
// DELETE /api/v1/posts/:id/reactions
func (h *Handlers) RemoveReaction(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	postID := c.Param("id")
	if postID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Post ID is required"})
		return
	}

	result := database.DB.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.PostReaction{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove reaction"})
		return
	}

	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No reaction to remove"})
		return
	}

	if err := database.DB.Model(&models.Post{}).
		Where("id = ? AND reaction_count > 0", postID).
		Update("reaction_count", gorm.Expr("reaction_count - 1")).Error; err != nil {
		logger.WarnWithFields("Failed to decrement reaction count for post "+postID, err)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Reaction removed",
	})
}

func validReactionCategory(category models.ReactionCategory) bool {
	for _, valid := range models.ValidReactionCategories {
		if category == valid {
			return true
		}
	}
	return false
}
