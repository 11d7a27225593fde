package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/pawgrove/pawgrove/backend/internal/auth"
	"github.com/pawgrove/pawgrove/backend/internal/database"
	"github.com/pawgrove/pawgrove/backend/internal/models"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var tokenUserID string

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a development JWT for a user",
	Long:  "Looks the user up in the database and prints a signed token for calling the write endpoints locally",
	RunE: func(cmd *cobra.Command, args []string) error {
		secret := os.Getenv("JWT_SECRET")
		if secret == "" {
			return errors.New("JWT_SECRET is not set")
		}

		if err := initDB(); err != nil {
			return err
		}
		defer database.Close()

		var user models.User
		if err := database.DB.First(&user, "id = ? OR username = ?", tokenUserID, tokenUserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("user %q not found", tokenUserID)
			}
			return err
		}

		resp, err := auth.NewService([]byte(secret)).GenerateTokenForUser(&user)
		if err != nil {
			return err
		}

		fmt.Printf("user:    %s (%s)\n", user.Username, user.ID)
		fmt.Printf("expires: %s\n", resp.ExpiresAt.Format("2006-01-02 15:04:05 MST"))
		fmt.Printf("token:   %s\n", resp.Token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenUserID, "user", "", "User ID or username to issue the token for")
	tokenCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(tokenCmd)
}
