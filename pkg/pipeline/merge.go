package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/vellumworks/sheetglot/pkg/blobstore"
	"github.com/vellumworks/sheetglot/pkg/jobstore"
	"github.com/vellumworks/sheetglot/pkg/output"
	"github.com/vellumworks/sheetglot/pkg/progress"
	"github.com/vellumworks/sheetglot/pkg/workbook"
)

// Merge reconciles every Map outcome into the translated document and
// finalizes the job.
//
// The union of partial maps answers most cells. A text missing from the union
// (its batch failed, or its entry was discarded) is filled by an inline
// single-text call, which itself degrades to passthrough. Merge therefore
// never leaves a translatable cell blank.
func (c *Coordinator) Merge(ctx context.Context, in MergeInput) (*MergeOutput, error) {
	c.setStatus(ctx, in.JobID, jobstore.StatusMerging)
	c.setProgress(ctx, in.JobID, progress.Merging(in.Stats.BatchCount))

	body, err := c.blobs.Get(ctx, in.WorkDataKey)
	if err != nil {
		err = fmt.Errorf("load work snapshot: %w", err)
		c.failJob(ctx, in.JobID, err)
		return nil, err
	}
	var snap WorkSnapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		err = fmt.Errorf("decode work snapshot: %w", err)
		c.failJob(ctx, in.JobID, err)
		return nil, err
	}

	union, failed := c.unionResults(ctx, in.Results)
	if failed > 0 {
		c.logger.Warn("merging with missing batches",
			zap.String("job_id", in.JobID),
			zap.Int("failed_batches", failed),
			zap.Int("total_batches", len(in.Results)))
	}

	wb, err := c.docs.Load(ctx, in.DocumentKey)
	if err != nil {
		derr := &DocumentError{Op: opRead, Key: in.DocumentKey, Err: err}
		c.failJob(ctx, in.JobID, derr)
		return nil, derr
	}

	sheets := make(map[string]workbook.Sheet)
	for _, s := range wb.Sheets() {
		sheets[s.Name()] = s
	}

	translated, inline := 0, 0
	exported := make(map[string]struct{})
	for _, cell := range snap.Cells {
		sheet, ok := sheets[cell.Sheet]
		if !ok {
			c.logger.Warn("snapshot references unknown sheet",
				zap.String("job_id", in.JobID),
				zap.String("sheet", cell.Sheet))
			continue
		}
		origin := output.OriginBatch
		value, ok := union[cell.Text]
		if !ok {
			value = c.translator.TranslateSingle(ctx, cell.Text, snap.SourceLanguage, snap.TargetLanguage)
			origin = output.OriginInline
			inline++
		}
		if value == "" {
			value = cell.Text
			origin = output.OriginPassthrough
		}
		sheet.SetCell(cell.Coordinate, value)
		translated++

		if _, done := exported[cell.Text]; !done {
			exported[cell.Text] = struct{}{}
			c.exportEntry(ctx, in.JobID, &output.EntryRecord{
				SourceText:  cell.Text,
				Translation: value,
				Origin:      origin,
			})
		}
	}

	outKey := OutputKey(in.DocumentKey)
	if err := c.docs.Save(ctx, wb, outKey); err != nil {
		derr := &DocumentError{Op: opWrite, Key: outKey, Err: err}
		c.failJob(ctx, in.JobID, derr)
		return nil, derr
	}

	downloadURL := ""
	if p, ok := c.blobs.(blobstore.Presigner); ok {
		url, perr := p.PresignGet(ctx, outKey, c.cfg.PresignExpiry)
		if perr != nil {
			c.logger.Warn("failed to presign download url",
				zap.String("job_id", in.JobID),
				zap.Error(perr))
		} else {
			downloadURL = url
		}
	}

	if n, cerr := blobstore.DeletePrefix(ctx, c.blobs, WorkPrefix(in.JobID)); cerr != nil {
		c.logger.Warn("work artifact cleanup incomplete",
			zap.String("job_id", in.JobID),
			zap.Error(cerr))
	} else {
		c.logger.Debug("work artifacts swept",
			zap.String("job_id", in.JobID),
			zap.Int("deleted", n))
	}

	stats := in.Stats
	stats.TranslatedCells = translated
	if c.cfg.Export != nil {
		if err := c.cfg.Export.WriteSummary(ctx, &output.SummaryRecord{
			TotalCells:        stats.TotalCells,
			TranslatableCells: stats.TranslatableCells,
			UniqueTexts:       stats.UniqueTexts,
			BatchCount:        stats.BatchCount,
			TranslatedCells:   stats.TranslatedCells,
		}); err != nil {
			c.logger.Warn("export summary failed",
				zap.String("job_id", in.JobID),
				zap.Error(err))
		}
	}
	c.setProgress(ctx, in.JobID, progress.Completed(stats.BatchCount))
	if err := c.jobs.Complete(ctx, in.JobID, outKey, downloadURL, stats); err != nil {
		c.logger.Warn("failed to finalize job record",
			zap.String("job_id", in.JobID),
			zap.Error(err))
	}

	c.logger.Info("job completed",
		zap.String("job_id", in.JobID),
		zap.String("output_key", outKey),
		zap.Int("translated_cells", translated),
		zap.Int("inline_fills", inline))

	return &MergeOutput{
		JobID:       in.JobID,
		OutputKey:   outKey,
		DownloadURL: downloadURL,
		Stats:       stats,
	}, nil
}

// exportEntry writes one export record, logging and swallowing failures.
func (c *Coordinator) exportEntry(ctx context.Context, jobID string, entry *output.EntryRecord) {
	if c.cfg.Export == nil {
		return
	}
	if err := c.cfg.Export.WriteEntry(ctx, entry); err != nil {
		c.logger.Warn("export entry failed",
			zap.String("job_id", jobID),
			zap.String("source_text", entry.SourceText),
			zap.Error(err))
	}
}

// unionResults loads every successful partial map and unions them, returning
// the combined map and the number of batches contributing nothing.
func (c *Coordinator) unionResults(ctx context.Context, results []BatchResult) (map[string]string, int) {
	union := make(map[string]string)
	failed := 0
	for _, r := range results {
		if !r.Success || r.TranslationKey == "" {
			failed++
			continue
		}
		blob, err := c.blobs.Get(ctx, r.TranslationKey)
		if err != nil {
			c.logger.Warn("translation map unreadable",
				zap.Int("batch_id", r.BatchID),
				zap.Error(err))
			failed++
			continue
		}
		var p translationPayload
		if err := json.Unmarshal(blob, &p); err != nil {
			c.logger.Warn("translation map malformed",
				zap.Int("batch_id", r.BatchID),
				zap.Error(err))
			failed++
			continue
		}
		for text, translation := range p.Translations {
			union[text] = translation
		}
	}
	return union, failed
}
