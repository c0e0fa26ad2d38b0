package cli

import (
	"github.com/SAP-F-2025/form-service/internal/config"
	"github.com/SAP-F-2025/form-service/internal/utils"
	"github.com/SAP-F-2025/form-service/pkg"
	"github.com/spf13/cobra"
)

// NewMigrateCmd applies the schema to the configured database.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			logger := utils.NewLogger(cfg.Environment, cmd.OutOrStdout())
			return runMigrations(cfg, logger)
		},
	}
}

func runMigrations(cfg *config.Config, logger utils.Logger) error {
	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := pkg.Migrate(db); err != nil {
		return err
	}
	logger.Info("Migrations applied")
	return nil
}
