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

// MuteUser mutes a user for the current user
// Muting hides the muted user's posts from the feed without unfollowing
// POST /api/v1/users/:id/mute
func (h *Handlers) MuteUser(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	targetUserID := c.Param("id")
	if targetUserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User ID is required"})
		return
	}

	// Can't mute yourself
	if userID == targetUserID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot mute yourself"})
		return
	}

	var targetUser models.User
	if err := database.DB.First(&targetUser, "id = ?", targetUserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to find user"})
		return
	}

	var existingMute models.MutedUser
	err := database.DB.Where("user_id = ? AND muted_user_id = ?", userID, targetUserID).First(&existingMute).Error
	if err == nil {
		c.JSON(http.StatusOK, gin.H{
			"message": "User already muted",
			"muted":   true,
		})
		return
	}

	mutedUser := models.MutedUser{
		UserID:      userID,
		MutedUserID: targetUserID,
	}

	if err := database.DB.Create(&mutedUser).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mute user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "User muted successfully",
		"muted":    true,
		"muted_at": mutedUser.CreatedAt,
	})
}

// UnmuteUser unmutes a user for the current user
// DELETE /api/v1/users/:id/mute
func (h *Handlers) UnmuteUser(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	targetUserID := c.Param("id")
	if targetUserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User ID is required"})
		return
	}

	result := database.DB.Where("user_id = ? AND muted_user_id = ?", userID, targetUserID).Delete(&models.MutedUser{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unmute user"})
		return
	}

	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User was not muted"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User unmuted successfully",
		"muted":   false,
	})
}

// GetMutedUsers returns the current user's muted users list
// GET /api/v1/users/me/muted
func (h *Handlers) GetMutedUsers(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	limit := util.ParseInt(c.DefaultQuery("limit", "50"), 50)
	offset := util.ParseInt(c.DefaultQuery("offset", "0"), 0)
	if limit > 100 {
		limit = 100
	}

	var mutedUsers []models.MutedUser
	err := database.DB.
		Preload("MutedUser").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&mutedUsers).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get muted users"})
		return
	}

	var totalCount int64
	if err := database.DB.Model(&models.MutedUser{}).Where("user_id = ?", userID).Count(&totalCount).Error; err != nil {
		logger.WarnWithFields("Failed to count muted users for "+userID, err)
		totalCount = 0
	}

	users := make([]gin.H, len(mutedUsers))
	for i, mu := range mutedUsers {
		users[i] = gin.H{
			"id":           mu.MutedUser.ID,
			"username":     mu.MutedUser.Username,
			"display_name": mu.MutedUser.DisplayName,
			"avatar_url":   mu.MutedUser.GetAvatarURL(),
			"muted_at":     mu.CreatedAt,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"users":       users,
		"total_count": totalCount,
		"limit":       limit,
		"offset":      offset,
		"has_more":    offset+len(users) < int(totalCount),
	})
}

// UpdateMutedKeywords replaces the current user's muted keyword list
// PUT /api/v1/users/me/muted-keywords
func (h *Handlers) UpdateMutedKeywords(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req struct {
		Keywords []string `json:"keywords" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "keywords list is required"})
		return
	}

	err := database.DB.Model(&models.User{}).
		Where("id = ?", userID).
		Update("muted_keywords", models.StringArray(req.Keywords)).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update muted keywords"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Muted keywords updated",
		"keywords": req.Keywords,
	})
}
