package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/viper"

	"github.com/ecodocs/reportpipe/internal/analyzer"
	"github.com/ecodocs/reportpipe/internal/common"
	"github.com/ecodocs/reportpipe/internal/config"
	"github.com/ecodocs/reportpipe/internal/content"
	"github.com/ecodocs/reportpipe/internal/model"
	"github.com/ecodocs/reportpipe/internal/pipeline"
	"github.com/ecodocs/reportpipe/internal/storage"
)

// openStorageRaw opens the configured database without running migrations.
func openStorageRaw() (*storage.SQLiteStorage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath()
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, common.NewUserError("failed to open database", err)
	}

	slog.Debug("connected to database", "path", dbPath)
	return store, nil
}

// openStorage opens the configured database and brings the schema up to date.
func openStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	store, err := openStorageRaw()
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, common.NewUserError("failed to run migrations", err)
	}

	return store, nil
}

// buildOrchestrator wires the pipeline components from configuration.
func buildOrchestrator(store *storage.SQLiteStorage, onOutcome func(model.ProcessingOutcome)) (*pipeline.Orchestrator, error) {
	bucketRoot := config.ExpandPath(viper.GetString("storage.bucket_root"))
	if bucketRoot == "" {
		return nil, fmt.Errorf("%w: storage.bucket_root", common.ErrMissingConfig)
	}

	scratchDir := config.ExpandPath(viper.GetString("storage.scratch_dir"))
	if scratchDir == "" {
		scratchDir = config.DefaultScratchDir()
	}

	resolver, err := content.NewResolver(content.Config{
		BucketRoot: bucketRoot,
		ScratchDir: scratchDir,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create content resolver: %w", err)
	}

	analyzerURL := viper.GetString("analyzer.url")
	if analyzerURL == "" {
		return nil, fmt.Errorf("%w: analyzer.url", common.ErrMissingConfig)
	}

	client, err := analyzer.NewClient(analyzer.Config{
		BaseURL: analyzerURL,
		Timeout: viper.GetDuration("analyzer.timeout"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create analysis client: %w", err)
	}

	pacer := pipeline.NewFixedPacer(
		viper.GetDuration("pipeline.success_delay"),
		viper.GetDuration("pipeline.failure_delay"),
	)

	return pipeline.NewWithConfig(store, resolver, client, pacer, pipeline.Config{
		BatchSize: viper.GetInt("pipeline.batch_size"),
		OnOutcome: onOutcome,
	}), nil
}

func setConfigDefaults() {
	viper.SetDefault("analyzer.timeout", 15*time.Minute)
	viper.SetDefault("pipeline.success_delay", pipeline.DefaultSuccessDelay)
	viper.SetDefault("pipeline.failure_delay", pipeline.DefaultFailureDelay)
	viper.SetDefault("pipeline.batch_size", storage.DefaultBatchLimit)
	viper.SetDefault("server.address", ":8085")
}

func init() {
	setConfigDefaults()
}
