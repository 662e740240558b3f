package pipeline

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
)

// RunBatch executes one Map unit: load the batch, translate it, persist the
// partial translation map, and bump the shared progress counter.
//
// RunBatch never returns an error. Every failure path yields a result with
// Success false, which Merge treats as a gap to compensate for.
func (c *Coordinator) RunBatch(ctx context.Context, d BatchDescriptor) BatchResult {
	res := BatchResult{BatchID: d.BatchID}

	body, err := c.blobs.Get(ctx, d.BatchKey)
	if err != nil {
		c.logger.Warn("batch artifact unreadable",
			zap.String("job_id", d.JobID),
			zap.Int("batch_id", d.BatchID),
			zap.Error(err))
		return res
	}
	var payload batchPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		c.logger.Warn("batch artifact malformed",
			zap.String("job_id", d.JobID),
			zap.Int("batch_id", d.BatchID),
			zap.Error(err))
		return res
	}

	out, err := c.translator.TranslateBatch(ctx, payload.Texts, d.SourceLanguage, d.TargetLanguage)
	if err != nil {
		c.logger.Warn("batch translation aborted",
			zap.String("job_id", d.JobID),
			zap.Int("batch_id", d.BatchID),
			zap.Error(err))
		return res
	}

	key := translationKey(d.JobID, d.BatchID)
	blob, err := json.Marshal(translationPayload{Translations: out.Translations})
	if err == nil {
		err = c.blobs.Put(ctx, key, blob)
	}
	if err != nil {
		c.logger.Warn("failed to persist translation map",
			zap.String("job_id", d.JobID),
			zap.Int("batch_id", d.BatchID),
			zap.Error(err))
		return res
	}

	completed := c.tracker.BatchCompleted(ctx, d.JobID, d.TotalBatches, d.StartTime)

	c.logger.Info("batch translated",
		zap.String("job_id", d.JobID),
		zap.Int("batch_id", d.BatchID),
		zap.Int("texts", len(payload.Texts)),
		zap.Int("translated", out.Translated()),
		zap.Int("passthrough", len(out.Passthrough)),
		zap.Int("completed_batches", completed))

	res.TranslationKey = key
	res.TranslatedCount = out.Translated()
	res.Success = true
	return res
}
