package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ecodocs/reportpipe/internal/server"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP trigger server",
		Long: `Start an HTTP server exposing the pipeline trigger endpoint.

POST /api/documents/process starts a batch run (optionally for a single
document) and returns the processing report. Individual document failures
are part of the report, not an HTTP error.`,
		RunE: runServe,
	}

	cmd.Flags().String("address", "", "Listen address (default :8085)")
	_ = viper.BindPFlag("server.address", cmd.Flags().Lookup("address"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("Failed to close database", "error", closeErr)
		}
	}()

	orchestrator, err := buildOrchestrator(store, nil)
	if err != nil {
		return err
	}

	addr := viper.GetString("server.address")
	slog.Info("starting trigger server", "address", addr)

	srv := server.NewServer(orchestrator)
	if err := srv.Run(addr); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}
