package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"mindcare-be/internal/config"
	"mindcare-be/internal/database"
	"mindcare-be/internal/logging"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Run all pending migrations against the PostgreSQL account store.
The serve command also migrates on startup; this is for running them ahead of a deploy.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrate(cmd, status)
		},
	}
	cmd.Flags().BoolVar(&status, "status", false, "print migration status instead of applying")

	return cmd
}

func runMigrate(cmd *cobra.Command, statusOnly bool) error {
	cfg, err := config.Load()
	if err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}
	if cfg.StoreDriver != config.DriverPostgres {
		return oops.Code("CONFIG_INVALID").
			With("driver", cfg.StoreDriver).
			Errorf("migrations only apply to the postgres store")
	}
	if cfg.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("DATABASE_URL environment variable is required")
	}

	logger := logging.Setup(cfg.LogFormat, cfg.LogLevel, cmd.ErrOrStderr())
	ctx := cmd.Context()

	db, err := database.NewConnection(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	defer db.Close()

	if statusOnly {
		return database.MigrationStatus(ctx, db)
	}

	cmd.Println("Running migrations...")
	if err := database.RunMigrations(ctx, db); err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "run migrations").Wrap(err)
	}

	version, err := database.SchemaVersion(ctx, db)
	if err != nil {
		return oops.Code("MIGRATION_FAILED").Wrap(err)
	}
	cmd.Printf("Migrations completed successfully (version %d)\n", version)
	return nil
}
