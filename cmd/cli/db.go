package main

import (
	"os"

	"github.com/pawgrove/pawgrove/backend/internal/database"
	"github.com/pawgrove/pawgrove/backend/internal/logger"
	"github.com/pawgrove/pawgrove/backend/internal/seed"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := initDB(); err != nil {
			return err
		}
		defer database.Close()
		return database.Migrate()
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the development database with realistic data",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := initDB(); err != nil {
			return err
		}
		defer database.Close()

		if err := database.Migrate(); err != nil {
			return err
		}

		seeder := seed.NewSeeder(database.DB)
		return seeder.SeedDev()
	},
}

func initDB() error {
	if err := logger.Initialize(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FILE")); err != nil {
		return err
	}
	return database.Initialize()
}
