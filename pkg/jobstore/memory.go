package jobstore

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore is an in-process Store used by tests and local runs.
type MemoryStore struct {
	mu        sync.Mutex
	records   map[string]*Record
	completed map[string]int
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory job store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records:   make(map[string]*Record),
		completed: make(map[string]int),
	}
}

// Create persists a new record.
func (s *MemoryStore) Create(ctx context.Context, rec *Record) error {
	if rec == nil || rec.JobID == "" {
		return fmt.Errorf("job record requires a jobId")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[rec.JobID]; exists {
		return fmt.Errorf("job %s already exists", rec.JobID)
	}
	cp := *rec
	if cp.Status == "" {
		cp.Status = StatusPending
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	s.records[rec.JobID] = &cp
	return nil
}

// Get returns a copy of the record for jobID.
func (s *MemoryStore) Get(ctx context.Context, jobID string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[jobID]
	if !ok {
		return nil, fmt.Errorf("job %s: %w", jobID, ErrNotFound)
	}
	cp := *rec
	if rec.Progress != nil {
		p := *rec.Progress
		cp.Progress = &p
	}
	if rec.Stats != nil {
		st := *rec.Stats
		cp.Stats = &st
	}
	return &cp, nil
}

// SetStatus transitions the job's status, enforcing lifecycle order.
func (s *MemoryStore) SetStatus(ctx context.Context, jobID string, status Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[jobID]
	if !ok {
		return fmt.Errorf("job %s: %w", jobID, ErrNotFound)
	}
	if !rec.Status.CanTransition(status) {
		return transitionError(jobID, rec.Status, status)
	}
	rec.Status = status
	return nil
}

// SetProgress replaces the job's progress snapshot.
func (s *MemoryStore) SetProgress(ctx context.Context, jobID string, p Progress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[jobID]
	if !ok {
		return fmt.Errorf("job %s: %w", jobID, ErrNotFound)
	}
	cp := p
	rec.Progress = &cp
	return nil
}

// SetStats replaces the job's aggregate stats.
func (s *MemoryStore) SetStats(ctx context.Context, jobID string, stats Stats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[jobID]
	if !ok {
		return fmt.Errorf("job %s: %w", jobID, ErrNotFound)
	}
	cp := stats
	rec.Stats = &cp
	return nil
}

// IncrementCompleted atomically bumps the completed-batch counter.
func (s *MemoryStore) IncrementCompleted(ctx context.Context, jobID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[jobID]; !ok {
		return 0, fmt.Errorf("job %s: %w", jobID, ErrNotFound)
	}
	s.completed[jobID]++
	return s.completed[jobID], nil
}

// Complete finalizes the job as COMPLETED.
func (s *MemoryStore) Complete(ctx context.Context, jobID, outputKey, downloadURL string, stats Stats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[jobID]
	if !ok {
		return fmt.Errorf("job %s: %w", jobID, ErrNotFound)
	}
	if !rec.Status.CanTransition(StatusCompleted) {
		return transitionError(jobID, rec.Status, StatusCompleted)
	}
	now := time.Now().UTC()
	cp := stats
	rec.Status = StatusCompleted
	rec.OutputKey = outputKey
	rec.DownloadURL = downloadURL
	rec.Stats = &cp
	rec.CompletedAt = &now
	return nil
}

// Fail finalizes the job as FAILED with the captured message.
func (s *MemoryStore) Fail(ctx context.Context, jobID, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[jobID]
	if !ok {
		return fmt.Errorf("job %s: %w", jobID, ErrNotFound)
	}
	if !rec.Status.CanTransition(StatusFailed) {
		return transitionError(jobID, rec.Status, StatusFailed)
	}
	now := time.Now().UTC()
	rec.Status = StatusFailed
	rec.Error = message
	rec.CompletedAt = &now
	return nil
}

// Close releases nothing; it satisfies the interface.
func (s *MemoryStore) Close() error {
	return nil
}
