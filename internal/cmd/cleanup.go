package cmd

import (
	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vellumworks/sheetglot/internal/config"
	"github.com/vellumworks/sheetglot/internal/observability"
	"github.com/vellumworks/sheetglot/pkg/blobstore"
	"github.com/vellumworks/sheetglot/pkg/pipeline"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup <job-id>",
	Short: "Delete a job's leftover work artifacts",
	Long: `Delete every transient work artifact a job left behind.

Completed jobs sweep their own artifacts; cleanup covers jobs that were
interrupted or failed mid-flight. It is safe to run repeatedly.`,
	Args: cobra.ExactArgs(1),
	RunE: runCleanup,
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	jobID := args[0]

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid configuration", err)
	}

	blobs, err := buildBlobStore(ctx, cfg.Storage)
	if err != nil {
		observability.CLILogger.Error("Failed to connect to storage", zap.Error(err))
		return exitError(foundry.ExitExternalServiceUnavailable, "Failed to connect to storage", err)
	}
	defer func() { _ = blobs.Close() }()

	deleted, err := blobstore.DeletePrefix(ctx, blobs, pipeline.WorkPrefix(jobID))
	if err != nil {
		return exitError(foundry.ExitExternalServiceUnavailable, "Cleanup incomplete", err)
	}

	observability.CLILogger.Info("Cleanup finished",
		zap.String("job_id", jobID),
		zap.Int("deleted", deleted))
	return nil
}
