package jobstore

import "time"

// Status is the lifecycle state of a translation job.
//
// NOTE: These values are persisted in the job store and are part of the
// stable external contract.
type Status string

const (
	StatusPending     Status = "PENDING"
	StatusPreparing   Status = "PREPARING"
	StatusTranslating Status = "TRANSLATING"
	StatusMerging     Status = "MERGING"
	StatusCompleted   Status = "COMPLETED"
	StatusFailed      Status = "FAILED"
)

// Terminal reports whether the status is an end state. Terminal records are
// immutable: the store rejects any further transition.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// rank orders the non-terminal progression. FAILED is reachable from any
// non-terminal state; everything else moves strictly forward.
func (s Status) rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusPreparing:
		return 1
	case StatusTranslating:
		return 2
	case StatusMerging:
		return 3
	case StatusCompleted:
		return 4
	case StatusFailed:
		return 5
	}
	return -1
}

// CanTransition reports whether moving from s to next is a legal lifecycle
// step.
func (s Status) CanTransition(next Status) bool {
	if s.Terminal() {
		return false
	}
	if next == StatusFailed {
		return true
	}
	return next.rank() > s.rank() && next != StatusFailed
}

// Progress is the typed progress snapshot attached to a job record.
//
// Percent is phase-weighted: Prepare holds a fixed 5%, Translate spans 5-90%
// proportional to completed batches, Merge spans 90-100%.
type Progress struct {
	Phase            string `json:"phase"`
	Percent          int    `json:"percent"`
	CompletedBatches int    `json:"completedBatches"`
	TotalBatches     int    `json:"totalBatches"`

	// ElapsedSeconds and EstimatedRemainingSeconds are present only once at
	// least one batch has completed.
	ElapsedSeconds            *int64 `json:"elapsedSeconds,omitempty"`
	EstimatedRemainingSeconds *int64 `json:"estimatedRemainingSeconds,omitempty"`
}

// Stats aggregates counts across the life of a job.
type Stats struct {
	TotalCells        int `json:"totalCells"`
	TranslatableCells int `json:"translatableCells"`
	UniqueTexts       int `json:"uniqueTexts"`
	BatchCount        int `json:"batchCount"`
	TranslatedCells   int `json:"translatedCells,omitempty"`
	SheetsProcessed   int `json:"sheetsProcessed,omitempty"`
}

// Record is the persistent job record.
//
// The schema is designed for backward-compatible extension (additive fields).
type Record struct {
	JobID          string `json:"jobId"`
	DocumentKey    string `json:"documentKey"`
	SourceLanguage string `json:"sourceLanguage"`
	TargetLanguage string `json:"targetLanguage"`
	Status         Status `json:"status"`

	Progress *Progress `json:"progress,omitempty"`
	Stats    *Stats    `json:"stats,omitempty"`

	OutputKey   string `json:"outputKey,omitempty"`
	DownloadURL string `json:"downloadUrl,omitempty"`
	Error       string `json:"error,omitempty"`

	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}
