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

// BlockUser blocks a user. Blocks cut feed visibility in both directions
// and also remove any follow relationship between the two users.
// POST /api/v1/users/:id/block
func (h *Handlers) BlockUser(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	targetUserID := c.Param("id")
	if targetUserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User ID is required"})
		return
	}

	if userID == targetUserID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot block yourself"})
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

	var existing models.UserBlock
	err := database.DB.Where("blocker_id = ? AND blocked_id = ?", userID, targetUserID).First(&existing).Error
	if err == nil {
		c.JSON(http.StatusOK, gin.H{
			"message": "User already blocked",
			"blocked": true,
		})
		return
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		block := models.UserBlock{
			BlockerID: userID,
			BlockedID: targetUserID,
		}
		if err := tx.Create(&block).Error; err != nil {
			return err
		}

		// Blocking severs follows both ways
		return tx.
			Where("(follower_id = ? AND followee_id = ?) OR (follower_id = ? AND followee_id = ?)",
				userID, targetUserID, targetUserID, userID).
			Delete(&models.Follow{}).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to block user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User blocked successfully",
		"blocked": true,
	})
}

// UnblockUser removes a block the current user placed
// DELETE /api/v1/users/:id/block
func (h *Handlers) UnblockUser(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	targetUserID := c.Param("id")
	if targetUserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User ID is required"})
		return
	}

	result := database.DB.Where("blocker_id = ? AND blocked_id = ?", userID, targetUserID).Delete(&models.UserBlock{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unblock user"})
		return
	}

	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User was not blocked"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User unblocked successfully",
		"blocked": false,
	})
}
