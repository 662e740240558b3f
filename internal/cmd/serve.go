package cmd

import (
	"os/signal"
	"syscall"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vellumworks/sheetglot/internal/config"
	"github.com/vellumworks/sheetglot/internal/observability"
	"github.com/vellumworks/sheetglot/internal/server"
	"github.com/vellumworks/sheetglot/pkg/pipeline"
	"github.com/vellumworks/sheetglot/pkg/workbook"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the translation job API server",
	Long: `Run the HTTP server that accepts translation jobs and reports
their progress. Jobs run asynchronously; clients poll the job record.`,
	RunE: runServe,
}

var (
	serveHost string
	servePort int
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveHost, "host", "", "Override listen host")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Override listen port")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid configuration", err)
	}
	if serveHost != "" {
		cfg.Server.Host = serveHost
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	blobs, err := buildBlobStore(ctx, cfg.Storage)
	if err != nil {
		observability.Logger.Error("failed to connect to storage", zap.Error(err))
		return exitError(foundry.ExitExternalServiceUnavailable, "Failed to connect to storage", err)
	}
	defer func() { _ = blobs.Close() }()

	jobs, err := buildJobStore(ctx, cfg.Jobs)
	if err != nil {
		observability.Logger.Error("failed to connect to job store", zap.Error(err))
		return exitError(foundry.ExitExternalServiceUnavailable, "Failed to connect to job store", err)
	}
	defer func() { _ = jobs.Close() }()

	translator, err := buildTranslator(cfg.Inference, cfg.Translation)
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid inference configuration", err)
	}

	coordinator := pipeline.New(
		workbook.NewBlobService(blobs),
		blobs,
		jobs,
		translator,
		pipeline.Config{
			BatchSize:     cfg.Translation.BatchSize,
			Concurrency:   cfg.Translation.Concurrency,
			PresignExpiry: cfg.Output.PresignExpiry,
		},
	).WithLogger(observability.Logger)

	srv := server.New(cfg.Server.Host, cfg.Server.Port, server.Deps{
		Jobs:    jobs,
		Runner:  coordinator,
		Version: versionInfo.Version,
		Logger:  observability.Logger,
	})

	if err := srv.Start(ctx, cfg.Server.ShutdownTimeout); err != nil {
		return exitError(foundry.ExitExternalServiceUnavailable, "Server failed", err)
	}

	observability.Logger.Info("server stopped")
	return nil
}
