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

// FollowUser makes the current user follow another user
// POST /api/v1/users/:id/follow
func (h *Handlers) FollowUser(c *gin.Context) {
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
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot follow yourself"})
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

	// A block in either direction forbids following
	var block models.UserBlock
	err := database.DB.
		Where("(blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)",
			userID, targetUserID, targetUserID, userID).
		First(&block).Error
	if err == nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cannot follow this user"})
		return
	}

	var existing models.Follow
	err = database.DB.Where("follower_id = ? AND followee_id = ?", userID, targetUserID).First(&existing).Error
	if err == nil {
		c.JSON(http.StatusOK, gin.H{
			"message":   "Already following",
			"following": true,
		})
		return
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		follow := models.Follow{
			FollowerID: userID,
			FolloweeID: targetUserID,
		}
		if err := tx.Create(&follow).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("id = ?", userID).
			Update("following_count", gorm.Expr("following_count + 1")).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", targetUserID).
			Update("follower_count", gorm.Expr("follower_count + 1")).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to follow user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Now following",
		"following": true,
	})
}

// UnfollowUser removes a follow relationship
// DELETE /api/v1/users/:id/follow
func (h *Handlers) UnfollowUser(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	targetUserID := c.Param("id")
	if targetUserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User ID is required"})
		return
	}

	var deleted int64
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("follower_id = ? AND followee_id = ?", userID, targetUserID).Delete(&models.Follow{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected
		if deleted == 0 {
			return nil
		}
		if err := tx.Model(&models.User{}).Where("id = ? AND following_count > 0", userID).
			Update("following_count", gorm.Expr("following_count - 1")).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ? AND follower_count > 0", targetUserID).
			Update("follower_count", gorm.Expr("follower_count - 1")).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unfollow user"})
		return
	}

	if deleted == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not following this user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Unfollowed",
		"following": false,
	})
}

// FollowPet makes the current user follow a pet profile
// POST /api/v1/pets/:id/follow
func (h *Handlers) FollowPet(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	petID := c.Param("id")
	if petID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Pet ID is required"})
		return
	}

	var pet models.Pet
	if err := database.DB.First(&pet, "id = ?", petID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Pet not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to find pet"})
		return
	}

	var existing models.PetFollow
	err := database.DB.Where("follower_id = ? AND pet_id = ?", userID, petID).First(&existing).Error
	if err == nil {
		c.JSON(http.StatusOK, gin.H{
			"message":   "Already following",
			"following": true,
		})
		return
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		follow := models.PetFollow{
			FollowerID: userID,
			PetID:      petID,
		}
		if err := tx.Create(&follow).Error; err != nil {
			return err
		}
		return tx.Model(&models.Pet{}).Where("id = ?", petID).
			Update("follower_count", gorm.Expr("follower_count + 1")).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to follow pet"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Now following",
		"following": true,
	})
}

// UnfollowPet removes a pet follow
// DELETE /api/v1/pets/:id/follow
func (h *Handlers) UnfollowPet(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	petID := c.Param("id")
	if petID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Pet ID is required"})
		return
	}

	var deleted int64
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("follower_id = ? AND pet_id = ?", userID, petID).Delete(&models.PetFollow{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected
		if deleted == 0 {
			return nil
		}
		return tx.Model(&models.Pet{}).Where("id = ? AND follower_count > 0", petID).
			Update("follower_count", gorm.Expr("follower_count - 1")).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unfollow pet"})
		return
	}

	if deleted == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not following this pet"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Unfollowed",
		"following": false,
	})
}
