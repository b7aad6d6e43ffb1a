package main

import (
	"fmt"
	"log/slog"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ecodocs/reportpipe/internal/model"
)

func processCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Analyze documents missing summaries or extracted data",
		Long: `Run the analysis pipeline over pending documents.

Documents are processed oldest first, one at a time, with a pause between
analysis calls so the analysis service gets time to recover. A failing
document is recorded and skipped; it never aborts the batch.

Examples:
  reportpipe process                 # Process all pending documents
  reportpipe process --document 42   # Reprocess a specific document`,
		RunE: runProcess,
	}

	cmd.Flags().Int64P("document", "d", 0, "Process only this document ID (bypasses the pending filter)")
	cmd.Flags().Int("batch-size", 0, "Maximum documents per run (default 500)")

	_ = viper.BindPFlag("pipeline.document", cmd.Flags().Lookup("document"))
	_ = viper.BindPFlag("pipeline.batch_size", cmd.Flags().Lookup("batch-size"))

	return cmd
}

func runProcess(cmd *cobra.Command, _ []string) error {
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

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(color.BlueString("Analyzing documents...")),
		progressbar.OptionSetItsString("docs"),
		progressbar.OptionShowCount(),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetRenderBlankState(true),
	)

	orchestrator, err := buildOrchestrator(store, func(outcome model.ProcessingOutcome) {
		_ = bar.Add(1)
	})
	if err != nil {
		return err
	}

	var documentID *int64
	if id := viper.GetInt64("pipeline.document"); id > 0 {
		documentID = &id
	}

	report, err := orchestrator.ProcessBatch(ctx, documentID)
	_ = bar.Finish()
	fmt.Println()
	if err != nil {
		return fmt.Errorf("batch run failed: %w", err)
	}

	printReport(report)

	if report.Failed > 0 {
		return fmt.Errorf("%d of %d documents failed", report.Failed, report.NeedsProcessing)
	}
	return nil
}

func printReport(report *model.ProcessingReport) {
	color.Cyan("Batch complete")
	fmt.Printf("  Found:             %d\n", report.TotalFound)
	fmt.Printf("  Already complete:  %d\n", report.AlreadyProcessed)
	fmt.Printf("  Needed processing: %d\n", report.NeedsProcessing)
	color.Green("  Processed:         %d", report.Processed)
	if report.Failed > 0 {
		color.Red("  Failed:            %d", report.Failed)
		for _, outcome := range report.Outcomes {
			if outcome.Failed() {
				color.Red("    - %s (#%d): %s", outcome.Title, outcome.DocumentID, outcome.Error)
			}
		}
	}
}
