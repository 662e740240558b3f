// Package progress derives and persists phase-weighted job progress.
//
// Percent is split across the three pipeline stages: Prepare owns a fixed
// 5%, the Translate stage spans 5-90% proportional to completed batches, and
// Merge covers the final 90-100%.
package progress

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/vellumworks/sheetglot/pkg/jobstore"
)

// Phase names persisted in progress snapshots.
const (
	PhasePrepared    = "prepared"
	PhaseTranslating = "translating"
	PhaseMerging     = "merging"
	PhaseCompleted   = "completed"
)

const (
	preparedPercent = 5
	translateSpan   = 85
	mergingPercent  = 90
	donePercent     = 100
)

// Percent maps completed batches onto the translate stage's 5-90% span.
func Percent(completed, total int) int {
	if total <= 0 {
		return preparedPercent
	}
	if completed > total {
		completed = total
	}
	return preparedPercent + completed*translateSpan/total
}

// Prepared builds the snapshot written when Prepare hands off to Map.
func Prepared(totalBatches int) jobstore.Progress {
	return jobstore.Progress{
		Phase:        PhasePrepared,
		Percent:      preparedPercent,
		TotalBatches: totalBatches,
	}
}

// Merging builds the snapshot written when Merge starts.
func Merging(totalBatches int) jobstore.Progress {
	return jobstore.Progress{
		Phase:            PhaseMerging,
		Percent:          mergingPercent,
		CompletedBatches: totalBatches,
		TotalBatches:     totalBatches,
	}
}

// Completed builds the terminal snapshot.
func Completed(totalBatches int) jobstore.Progress {
	return jobstore.Progress{
		Phase:            PhaseCompleted,
		Percent:          donePercent,
		CompletedBatches: totalBatches,
		TotalBatches:     totalBatches,
	}
}

// Tracker persists completion events against the shared counter.
//
// Many Map units report concurrently, so the count comes from the job
// store's atomic increment, never from a locally cached value.
type Tracker struct {
	store  jobstore.Store
	logger *zap.Logger

	// now is an injection point for tests.
	now func() time.Time
}

// NewTracker creates a tracker writing through the given store.
func NewTracker(store jobstore.Store, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{store: store, logger: logger, now: time.Now}
}

// BatchCompleted atomically bumps the completed-batch counter and persists a
// fresh snapshot. It returns the new count.
//
// A failure to persist is logged and swallowed: losing one progress update
// must never fail the batch that was reporting it.
func (t *Tracker) BatchCompleted(ctx context.Context, jobID string, totalBatches int, startTime time.Time) int {
	completed, err := t.store.IncrementCompleted(ctx, jobID)
	if err != nil {
		t.logger.Warn("failed to increment completed batches",
			zap.String("job_id", jobID),
			zap.Error(err))
		return 0
	}

	snapshot := t.Snapshot(completed, totalBatches, startTime)
	if err := t.store.SetProgress(ctx, jobID, snapshot); err != nil {
		t.logger.Warn("failed to persist progress snapshot",
			zap.String("job_id", jobID),
			zap.Error(err))
	}

	t.logger.Debug("progress updated",
		zap.String("job_id", jobID),
		zap.Int("completed", completed),
		zap.Int("total", totalBatches),
		zap.Int("percent", snapshot.Percent))

	return completed
}

// Snapshot builds the translating-phase snapshot for the given counts,
// deriving elapsed time and a linear ETA once at least one batch is done.
func (t *Tracker) Snapshot(completed, totalBatches int, startTime time.Time) jobstore.Progress {
	p := jobstore.Progress{
		Phase:            PhaseTranslating,
		Percent:          Percent(completed, totalBatches),
		CompletedBatches: completed,
		TotalBatches:     totalBatches,
	}

	if completed > 0 && !startTime.IsZero() {
		elapsed := t.now().Sub(startTime)
		elapsedSec := int64(elapsed.Seconds())
		remaining := int64(float64(elapsedSec) / float64(completed) * float64(totalBatches-completed))
		p.ElapsedSeconds = &elapsedSec
		p.EstimatedRemainingSeconds = &remaining
	}

	return p
}
