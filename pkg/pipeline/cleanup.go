package pipeline

import (
	"context"

	"github.com/vellumworks/sheetglot/pkg/blobstore"
)

// CleanupJob sweeps every transient work artifact for a job and returns how
// many blobs were deleted. Sweeping an already-clean job deletes nothing and
// succeeds, so retrying after a partial failure is safe.
func (c *Coordinator) CleanupJob(ctx context.Context, jobID string) (int, error) {
	return blobstore.DeletePrefix(ctx, c.blobs, WorkPrefix(jobID))
}
