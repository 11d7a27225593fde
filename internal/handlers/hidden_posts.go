package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pawgrove/pawgrove/backend/internal/database"
	"github.com/pawgrove/pawgrove/backend/internal/models"
	"github.com/pawgrove/pawgrove/backend/internal/util"
	"gorm.io/gorm"
)

// HidePost hides a post from the current user's feed
// POST /api/v1/posts/:id/hide
func (h *Handlers) HidePost(c *gin.Context) {
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

	var existing models.HiddenPost
	err := database.DB.Where("user_id = ? AND post_id = ?", userID, postID).First(&existing).Error
	if err == nil {
		c.JSON(http.StatusOK, gin.H{
			"message": "Post already hidden",
			"hidden":  true,
		})
		return
	}

	hidden := models.HiddenPost{
		UserID: userID,
		PostID: postID,
	}
	if err := database.DB.Create(&hidden).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hide post"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Post hidden successfully",
		"hidden":  true,
	})
}

// UnhidePost restores a hidden post to the current user's feed
// DELETE /api/v1/posts/:id/hide
func (h *Handlers) UnhidePost(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	postID := c.Param("id")
	if postID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Post ID is required"})
		return
	}

	result := database.DB.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.HiddenPost{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unhide post"})
		return
	}

	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post was not hidden"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Post unhidden successfully",
		"hidden":  false,
	})
}
