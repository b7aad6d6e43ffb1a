package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ecodocs/reportpipe/internal/storage"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

This command ensures the database has all the required tables, indexes
and seeded category reference data.`,
		RunE: runMigrate,
	}

	cmd.Flags().Bool("status", false, "Show current schema version without applying changes")
	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	status, _ := cmd.Flags().GetBool("status")

	// openStorage migrates as part of opening; for --status we want the raw
	// version before touching anything, so open without migrating.
	store, err := openStorageRaw()
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("Failed to close database", "error", closeErr)
		}
	}()

	if status {
		version, versionErr := store.SchemaVersion(ctx)
		if versionErr != nil {
			return versionErr
		}
		fmt.Printf("Schema version: %d (latest: %d)\n", version, storage.ExpectedSchemaVersion)
		return nil
	}

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Printf("Database migrated to schema version %d\n", storage.ExpectedSchemaVersion)
	return nil
}
