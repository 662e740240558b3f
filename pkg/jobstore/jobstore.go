// Package jobstore persists translation job records and their progress.
//
// The one concurrently-mutated field is the completed-batch counter: many Map
// units finish at once, so the counter must be bumped with the backing
// store's own atomic increment primitive, never read-modify-write against a
// locally cached value.
package jobstore

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for store operations.
var (
	// ErrNotFound indicates the requested job does not exist.
	ErrNotFound = errors.New("job not found")

	// ErrTerminal indicates an update was attempted on a completed or failed job.
	ErrTerminal = errors.New("job is in a terminal state")

	// ErrBadTransition indicates a status change that violates the lifecycle order.
	ErrBadTransition = errors.New("illegal status transition")
)

// Store persists job records.
//
// Implementations must be safe for concurrent use and must implement
// IncrementCompleted as a single atomic operation in the backing store.
type Store interface {
	// Create persists a new record. The record's Status is set to PENDING if empty.
	Create(ctx context.Context, rec *Record) error

	// Get returns the record for jobID.
	// Returns ErrNotFound if the job does not exist.
	Get(ctx context.Context, jobID string) (*Record, error)

	// SetStatus transitions the job's status.
	// Returns ErrTerminal if the job already reached a terminal state and
	// ErrBadTransition if the move violates the lifecycle order.
	SetStatus(ctx context.Context, jobID string, status Status) error

	// SetProgress replaces the job's progress snapshot.
	SetProgress(ctx context.Context, jobID string, p Progress) error

	// SetStats replaces the job's aggregate stats.
	SetStats(ctx context.Context, jobID string, stats Stats) error

	// IncrementCompleted atomically bumps the completed-batch counter and
	// returns the new count.
	IncrementCompleted(ctx context.Context, jobID string) (int, error)

	// Complete finalizes the job as COMPLETED with its output reference.
	Complete(ctx context.Context, jobID, outputKey, downloadURL string, stats Stats) error

	// Fail finalizes the job as FAILED carrying the captured error message.
	Fail(ctx context.Context, jobID, message string) error

	// Close releases any resources held by the store.
	Close() error
}

// transitionError builds the error for a rejected status change.
func transitionError(jobID string, from, to Status) error {
	if from.Terminal() {
		return fmt.Errorf("job %s: %s -> %s: %w", jobID, from, to, ErrTerminal)
	}
	return fmt.Errorf("job %s: %s -> %s: %w", jobID, from, to, ErrBadTransition)
}
