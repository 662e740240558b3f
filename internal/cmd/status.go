package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vellumworks/sheetglot/internal/config"
	"github.com/vellumworks/sheetglot/internal/observability"
	"github.com/vellumworks/sheetglot/pkg/jobstore"
)

var statusCmd = &cobra.Command{
	Use:   "status <job-id>",
	Short: "Show the record and progress of a job",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	jobID := args[0]

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid configuration", err)
	}

	jobs, err := buildJobStore(ctx, cfg.Jobs)
	if err != nil {
		observability.CLILogger.Error("Failed to connect to job store", zap.Error(err))
		return exitError(foundry.ExitExternalServiceUnavailable, "Failed to connect to job store", err)
	}
	defer func() { _ = jobs.Close() }()

	rec, err := jobs.Get(ctx, jobID)
	if err != nil {
		if errors.Is(err, jobstore.ErrNotFound) {
			return exitError(foundry.ExitFileNotFound, "Job not found", err)
		}
		return exitError(foundry.ExitExternalServiceUnavailable, "Failed to load job", err)
	}

	body, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(body))
	return nil
}
