package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vellumworks/sheetglot/pkg/dedup"
	"github.com/vellumworks/sheetglot/pkg/jobstore"
	"github.com/vellumworks/sheetglot/pkg/progress"
)

// Prepare scans the source document, builds the unique-text batches, and
// persists the work snapshot and batch artifacts.
//
// Both the snapshot and every batch must be durable before any Map unit
// starts, so Prepare is the only stage that writes them. A batch that fails
// to persist still gets a descriptor: its Map unit will fail to load it and
// Merge compensates, same as any other batch-level failure.
func (c *Coordinator) Prepare(ctx context.Context, sub Submission) (*PrepareOutput, error) {
	start := time.Now().UTC()
	c.setStatus(ctx, sub.JobID, jobstore.StatusPreparing)

	wb, err := c.docs.Load(ctx, sub.DocumentKey)
	if err != nil {
		derr := &DocumentError{Op: opRead, Key: sub.DocumentKey, Err: err}
		c.failJob(ctx, sub.JobID, derr)
		return nil, derr
	}

	scan := dedup.ScanFiltered(wb, c.cfg.SheetFilter)
	batches := dedup.Partition(scan.UniqueTexts, c.cfg.BatchSize)

	c.logger.Info("document scanned",
		zap.String("job_id", sub.JobID),
		zap.Int("sheets", scan.Sheets),
		zap.Int("total_cells", scan.TotalCells),
		zap.Int("translatable_cells", len(scan.Cells)),
		zap.Int("unique_texts", len(scan.UniqueTexts)),
		zap.Int("batches", len(batches)))

	snapshot := WorkSnapshot{
		JobID:          sub.JobID,
		DocumentKey:    sub.DocumentKey,
		SourceLanguage: sub.SourceLanguage,
		TargetLanguage: sub.TargetLanguage,
		Cells:          scan.Cells,
		TotalCells:     scan.TotalCells,
		UniqueTexts:    len(scan.UniqueTexts),
		BatchCount:     len(batches),
	}
	body, err := json.Marshal(snapshot)
	if err != nil {
		err = fmt.Errorf("encode work snapshot: %w", err)
		c.failJob(ctx, sub.JobID, err)
		return nil, err
	}
	snapKey := workDataKey(sub.JobID)
	if err := c.blobs.Put(ctx, snapKey, body); err != nil {
		// Merge cannot locate a single cell without the snapshot, so this is
		// the one artifact whose loss fails the job.
		err = fmt.Errorf("persist work snapshot: %w", err)
		c.failJob(ctx, sub.JobID, err)
		return nil, err
	}

	descs := make([]BatchDescriptor, 0, len(batches))
	for _, b := range batches {
		key := batchKey(sub.JobID, b.ID)
		payload, merr := json.Marshal(batchPayload{Texts: b.Texts})
		if merr == nil {
			merr = c.blobs.Put(ctx, key, payload)
		}
		if merr != nil {
			c.logger.Warn("failed to persist batch",
				zap.String("job_id", sub.JobID),
				zap.Int("batch_id", b.ID),
				zap.Error(merr))
		}
		descs = append(descs, BatchDescriptor{
			BatchID:        b.ID,
			BatchKey:       key,
			TextCount:      len(b.Texts),
			JobID:          sub.JobID,
			SourceLanguage: sub.SourceLanguage,
			TargetLanguage: sub.TargetLanguage,
			TotalBatches:   len(batches),
			StartTime:      start,
		})
	}

	stats := jobstore.Stats{
		TotalCells:        scan.TotalCells,
		TranslatableCells: len(scan.Cells),
		UniqueTexts:       len(scan.UniqueTexts),
		BatchCount:        len(batches),
		SheetsProcessed:   scan.Sheets,
	}
	if err := c.jobs.SetStats(ctx, sub.JobID, stats); err != nil {
		c.logger.Warn("failed to persist job stats",
			zap.String("job_id", sub.JobID),
			zap.Error(err))
	}
	c.setStatus(ctx, sub.JobID, jobstore.StatusTranslating)
	c.setProgress(ctx, sub.JobID, progress.Prepared(len(batches)))

	return &PrepareOutput{
		JobID:        sub.JobID,
		DocumentKey:  sub.DocumentKey,
		WorkDataKey:  snapKey,
		Batches:      descs,
		TotalBatches: len(batches),
		StartTime:    start,
		Stats:        stats,
	}, nil
}
