package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"example.com/factory/services/fulfillment/config"
	"example.com/factory/services/fulfillment/internal/database"
	"example.com/factory/services/fulfillment/internal/model"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long:  `Apply the order schema to the configured database and exit`,
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return err
	}

	db, err := database.Connect(cfg.DB)
	if err != nil {
		return err
	}

	if err := model.SetupModels(db); err != nil {
		return err
	}

	log.Info().Msg("Migrations applied")
	return nil
}
