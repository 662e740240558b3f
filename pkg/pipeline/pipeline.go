// Package pipeline coordinates the three-stage translation run.
//
// Prepare scans and deduplicates the source document and persists bounded
// batches. The Map stage translates the batches in parallel, each unit
// terminating independently. Merge waits for every unit, unions their partial
// maps, compensates for gaps with inline single-text calls, and finalizes the
// job. Batch-level failures never fail a job; only document I/O does.
package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vellumworks/sheetglot/pkg/blobstore"
	"github.com/vellumworks/sheetglot/pkg/jobstore"
	"github.com/vellumworks/sheetglot/pkg/output"
	"github.com/vellumworks/sheetglot/pkg/progress"
	"github.com/vellumworks/sheetglot/pkg/translate"
	"github.com/vellumworks/sheetglot/pkg/workbook"
)

// Config tunes coordinator behavior.
type Config struct {
	// BatchSize is the maximum unique texts per batch.
	// Default: dedup.DefaultBatchSize
	BatchSize int

	// Concurrency caps the number of Map units running at once.
	// Default: 4
	Concurrency int

	// PresignExpiry is the lifetime of the download URL issued on completion.
	// Default: 1h
	PresignExpiry time.Duration

	// SheetFilter restricts the scan to sheets it accepts. Nil scans all.
	SheetFilter func(name string) bool

	// Export receives one record per resolved unique text plus a summary.
	// Nil disables export. Export failures are logged and never fail a job.
	Export output.Writer
}

// DefaultConcurrency is the Map stage fan-out when not configured.
const DefaultConcurrency = 4

// Coordinator drives jobs through Prepare, Map, and Merge.
type Coordinator struct {
	docs       workbook.Service
	blobs      blobstore.Store
	jobs       jobstore.Store
	translator *translate.Client
	tracker    *progress.Tracker
	cfg        Config
	logger     *zap.Logger
}

// New creates a coordinator over the given collaborators.
func New(docs workbook.Service, blobs blobstore.Store, jobs jobstore.Store, translator *translate.Client, cfg Config) *Coordinator {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.PresignExpiry <= 0 {
		cfg.PresignExpiry = time.Hour
	}
	return &Coordinator{
		docs:       docs,
		blobs:      blobs,
		jobs:       jobs,
		translator: translator,
		tracker:    progress.NewTracker(jobs, nil),
		cfg:        cfg,
		logger:     zap.NewNop(),
	}
}

// WithLogger sets the logger. Returns the coordinator for chaining.
func (c *Coordinator) WithLogger(logger *zap.Logger) *Coordinator {
	if logger != nil {
		c.logger = logger
		c.tracker = progress.NewTracker(c.jobs, logger)
	}
	return c
}

// Run executes a submission end to end and returns the completion payload.
//
// A missing job record is created on entry, so callers may submit without
// pre-registering. The returned error is non-nil only for document I/O
// failures and context cancellation; the job record carries the outcome
// either way.
func (c *Coordinator) Run(ctx context.Context, sub Submission) (*MergeOutput, error) {
	if _, err := c.jobs.Get(ctx, sub.JobID); errors.Is(err, jobstore.ErrNotFound) {
		rec := &jobstore.Record{
			JobID:          sub.JobID,
			DocumentKey:    sub.DocumentKey,
			SourceLanguage: sub.SourceLanguage,
			TargetLanguage: sub.TargetLanguage,
		}
		if err := c.jobs.Create(ctx, rec); err != nil {
			c.logger.Warn("failed to create job record",
				zap.String("job_id", sub.JobID),
				zap.Error(err))
		}
	}

	prep, err := c.Prepare(ctx, sub)
	if err != nil {
		return nil, err
	}

	results := c.runMapStage(ctx, prep.Batches)

	return c.Merge(ctx, MergeInput{
		JobID:       prep.JobID,
		DocumentKey: prep.DocumentKey,
		WorkDataKey: prep.WorkDataKey,
		Results:     results,
		Stats:       prep.Stats,
	})
}

// runMapStage fans batches out to bounded workers and blocks until every unit
// reaches a terminal outcome. The wait is the Merge barrier: no result is
// read before its unit finished.
func (c *Coordinator) runMapStage(ctx context.Context, batches []BatchDescriptor) []BatchResult {
	results := make([]BatchResult, len(batches))

	sem := make(chan struct{}, c.cfg.Concurrency)
	var wg sync.WaitGroup
	for i := range batches {
		sem <- struct{}{}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = c.RunBatch(ctx, batches[i])
		}(i)
	}
	wg.Wait()

	return results
}

// setStatus advances the job lifecycle, logging and swallowing store errors.
func (c *Coordinator) setStatus(ctx context.Context, jobID string, status jobstore.Status) {
	if err := c.jobs.SetStatus(ctx, jobID, status); err != nil {
		c.logger.Warn("failed to update job status",
			zap.String("job_id", jobID),
			zap.String("status", string(status)),
			zap.Error(err))
	}
}

// setProgress persists a progress snapshot, logging and swallowing store
// errors.
func (c *Coordinator) setProgress(ctx context.Context, jobID string, p jobstore.Progress) {
	if err := c.jobs.SetProgress(ctx, jobID, p); err != nil {
		c.logger.Warn("failed to persist progress",
			zap.String("job_id", jobID),
			zap.Error(err))
	}
}

// failJob finalizes the job as FAILED with the captured error message.
func (c *Coordinator) failJob(ctx context.Context, jobID string, cause error) {
	c.logger.Error("job failed",
		zap.String("job_id", jobID),
		zap.Error(cause))
	if err := c.jobs.Fail(ctx, jobID, cause.Error()); err != nil {
		c.logger.Warn("failed to record job failure",
			zap.String("job_id", jobID),
			zap.Error(err))
	}
}
