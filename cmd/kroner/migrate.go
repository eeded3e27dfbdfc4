package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/kroner/internal/cli"
	"github.com/Veraticus/kroner/internal/config"
	"github.com/Veraticus/kroner/internal/storage"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

Only sqlite and mysql stores have a local schema. Expired sign-in sessions
are removed afterwards.`,
		RunE: runMigrate,
	}

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	kind, err := settings.StoreKind()
	if err != nil {
		return err
	}
	if kind == config.StoreREST {
		return fmt.Errorf("migrate: %w", errLocalOnly)
	}

	slog.Info("Starting database migration", "store", kind)

	store, err := storage.Open(settings.StoreURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	pruned, err := store.DeleteExpiredSessions(ctx, time.Now())
	if err != nil {
		slog.Warn("Failed to prune expired sessions", "error", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Schema at version %d (%s)", storage.ExpectedSchemaVersion, store.Dialect())))
	if pruned > 0 {
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo(fmt.Sprintf("Removed %d expired sessions", pruned)))
	}
	return nil
}
