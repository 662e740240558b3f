package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vellumworks/sheetglot/internal/config"
	"github.com/vellumworks/sheetglot/internal/observability"
	"github.com/vellumworks/sheetglot/pkg/manifest"
	"github.com/vellumworks/sheetglot/pkg/match"
	"github.com/vellumworks/sheetglot/pkg/output"
	"github.com/vellumworks/sheetglot/pkg/pipeline"
	"github.com/vellumworks/sheetglot/pkg/workbook"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a translation job from manifest",
	Long: `Run a translation job as defined in a YAML or JSON manifest file.

The manifest specifies the document, the language pair, storage backends,
and translation behavior.

Example:
  sheetglot run --job job.yaml
  sheetglot run --job job.yaml --dry-run`,
	RunE: runJob,
}

var (
	runJobPath    string
	runJobID      string
	runExportPath string
	runDryRun     bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runJobPath, "job", "j", "", "Path to job manifest (required)")
	runCmd.Flags().StringVar(&runJobID, "job-id", "", "Use a fixed job id instead of a generated one")
	runCmd.Flags().StringVar(&runExportPath, "export", "", "Write a JSONL translation export to this path")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Validate manifest and show plan without executing")

	_ = runCmd.MarkFlagRequired("job")
}

func runJob(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	m, err := manifest.Load(runJobPath)
	if err != nil {
		observability.CLILogger.Error("Failed to load manifest",
			zap.String("path", runJobPath),
			zap.Error(err))
		return exitError(foundry.ExitInvalidArgument, "Invalid manifest", err)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid configuration", err)
	}
	applyManifest(cfg, m)

	if runDryRun {
		return showRunPlan(m)
	}

	blobs, err := buildBlobStore(ctx, cfg.Storage)
	if err != nil {
		observability.CLILogger.Error("Failed to connect to storage", zap.Error(err))
		return exitError(foundry.ExitExternalServiceUnavailable, "Failed to connect to storage", err)
	}
	defer func() { _ = blobs.Close() }()

	jobs, err := buildJobStore(ctx, cfg.Jobs)
	if err != nil {
		observability.CLILogger.Error("Failed to connect to job store", zap.Error(err))
		return exitError(foundry.ExitExternalServiceUnavailable, "Failed to connect to job store", err)
	}
	defer func() { _ = jobs.Close() }()

	translator, err := buildTranslator(cfg.Inference, cfg.Translation)
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid inference configuration", err)
	}

	var sheetFilter func(string) bool
	if s := m.Document.Sheets; s != nil {
		matcher, merr := match.New(match.Config{Includes: s.Includes, Excludes: s.Excludes})
		if merr != nil {
			observability.CLILogger.Error("Invalid sheet patterns", zap.Error(merr))
			return exitError(foundry.ExitInvalidArgument, "Invalid sheet patterns", merr)
		}
		sheetFilter = matcher.Match
	}

	jobID := runJobID
	if jobID == "" {
		jobID = uuid.NewString()
	}

	exportPath := runExportPath
	if exportPath == "" {
		exportPath = m.Output.Export
	}
	var export output.Writer
	if exportPath != "" {
		f, ferr := os.Create(exportPath)
		if ferr != nil {
			observability.CLILogger.Error("Failed to create export file",
				zap.String("path", exportPath),
				zap.Error(ferr))
			return exitError(foundry.ExitFileWriteError, "Failed to create export file", ferr)
		}
		defer func() { _ = f.Close() }()
		w := output.NewJSONLWriter(f, jobID)
		defer func() { _ = w.Close() }()
		export = w
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
			SheetFilter:   sheetFilter,
			Export:        export,
		},
	).WithLogger(observability.Logger)

	observability.CLILogger.Info("Starting translation job",
		zap.String("job_id", jobID),
		zap.String("document", m.Document.Key),
		zap.String("source", m.Document.SourceLanguage),
		zap.String("target", m.Document.TargetLanguage))

	out, err := coordinator.Run(ctx, pipeline.Submission{
		JobID:          jobID,
		DocumentKey:    m.Document.Key,
		SourceLanguage: m.Document.SourceLanguage,
		TargetLanguage: m.Document.TargetLanguage,
	})
	if err != nil {
		var derr *pipeline.DocumentError
		if errors.As(err, &derr) && derr.Op == "write" {
			return exitError(foundry.ExitFileWriteError, "Failed to write translated document", err)
		}
		if errors.As(err, &derr) {
			return exitError(foundry.ExitFileReadError, "Failed to read source document", err)
		}
		return exitError(foundry.ExitExternalServiceUnavailable, "Translation job failed", err)
	}

	observability.CLILogger.Info("Job completed",
		zap.String("job_id", out.JobID),
		zap.String("output_key", out.OutputKey),
		zap.Int("translated_cells", out.Stats.TranslatedCells),
		zap.Int("batches", out.Stats.BatchCount))
	if out.DownloadURL != "" {
		fmt.Println(out.DownloadURL)
	}
	return nil
}

// applyManifest overlays manifest settings onto the base config.
func applyManifest(cfg *config.Config, m *manifest.Manifest) {
	cfg.Storage.Provider = m.Storage.Provider
	if m.Storage.Bucket != "" {
		cfg.Storage.Bucket = m.Storage.Bucket
	}
	if m.Storage.Region != "" {
		cfg.Storage.Region = m.Storage.Region
	}
	if m.Storage.Endpoint != "" {
		cfg.Storage.Endpoint = m.Storage.Endpoint
	}
	if m.Storage.Profile != "" {
		cfg.Storage.Profile = m.Storage.Profile
	}
	if m.Storage.ForcePathStyle {
		cfg.Storage.ForcePathStyle = true
	}

	cfg.Jobs.Backend = m.Jobs.Backend
	if m.Jobs.Addr != "" {
		cfg.Jobs.Addr = m.Jobs.Addr
	}
	if m.Jobs.Password != "" {
		cfg.Jobs.Password = m.Jobs.Password
	}
	if m.Jobs.DB != 0 {
		cfg.Jobs.DB = m.Jobs.DB
	}

	if m.Translation.Model != "" {
		cfg.Inference.Model = m.Translation.Model
	}
	cfg.Inference.Breaker = m.Translation.BreakerEnabled()
	cfg.Translation.BatchSize = m.Translation.BatchSize
	cfg.Translation.Concurrency = m.Translation.Concurrency
	cfg.Translation.RateLimit = m.Translation.RateLimit
	cfg.Translation.Temperature = m.Translation.Temperature
	cfg.Output.PresignExpiry = m.Output.PresignExpiryDuration()
}

// showRunPlan displays what would run without executing.
func showRunPlan(m *manifest.Manifest) error {
	fmt.Println("=== Translation Plan (dry-run) ===")
	fmt.Println()
	fmt.Printf("Document:    %s\n", m.Document.Key)
	fmt.Printf("Languages:   %s -> %s\n", m.Document.SourceLanguage, m.Document.TargetLanguage)
	if s := m.Document.Sheets; s != nil {
		fmt.Printf("Sheets:      include %v", s.Includes)
		if len(s.Excludes) > 0 {
			fmt.Printf(", exclude %v", s.Excludes)
		}
		fmt.Println()
	}
	fmt.Println()
	fmt.Printf("Storage:     %s", m.Storage.Provider)
	if m.Storage.Bucket != "" {
		fmt.Printf(" (bucket %s)", m.Storage.Bucket)
	}
	fmt.Println()
	fmt.Printf("Job store:   %s\n", m.Jobs.Backend)
	fmt.Println()
	fmt.Printf("Batch size:  %d\n", m.Translation.BatchSize)
	fmt.Printf("Concurrency: %d\n", m.Translation.Concurrency)
	if m.Translation.RateLimit > 0 {
		fmt.Printf("Rate limit:  %.1f req/s\n", m.Translation.RateLimit)
	}
	if m.Translation.Model != "" {
		fmt.Printf("Model:       %s\n", m.Translation.Model)
	}
	fmt.Println()
	fmt.Println("Manifest validated successfully. Remove --dry-run to execute.")
	return nil
}
