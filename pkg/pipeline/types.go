package pipeline

import (
	"time"

	"github.com/vellumworks/sheetglot/pkg/dedup"
	"github.com/vellumworks/sheetglot/pkg/jobstore"
)

// Submission is the external request that starts a job.
type Submission struct {
	JobID          string `json:"jobId"`
	DocumentKey    string `json:"documentKey"`
	SourceLanguage string `json:"sourceLanguage"`
	TargetLanguage string `json:"targetLanguage"`
}

// BatchDescriptor is the Prepare → Map hand-off for one batch.
//
// It carries everything a Map unit needs so that units stay independent:
// no unit reads another's state, and the shared start time keeps ETA math
// consistent across concurrent completions.
type BatchDescriptor struct {
	BatchID        int       `json:"batchId"`
	BatchKey       string    `json:"batchKey"`
	TextCount      int       `json:"textCount"`
	JobID          string    `json:"jobId"`
	SourceLanguage string    `json:"sourceLanguage"`
	TargetLanguage string    `json:"targetLanguage"`
	TotalBatches   int       `json:"totalBatches"`
	StartTime      time.Time `json:"startTime"`
}

// BatchResult is the Map → Merge hand-off for one batch.
//
// Success false is still a terminal outcome: Merge compensates for the gap,
// it never waits for a retry.
type BatchResult struct {
	BatchID         int    `json:"batchId"`
	TranslationKey  string `json:"translationKey,omitempty"`
	TranslatedCount int    `json:"translatedCount"`
	Success         bool   `json:"success"`
}

// WorkSnapshot is written once by Prepare and immutable afterward.
type WorkSnapshot struct {
	JobID          string          `json:"jobId"`
	DocumentKey    string          `json:"documentKey"`
	SourceLanguage string          `json:"sourceLanguage"`
	TargetLanguage string          `json:"targetLanguage"`
	Cells          []dedup.CellRef `json:"cells"`
	TotalCells  int             `json:"totalCells"`
	UniqueTexts int             `json:"uniqueTexts"`
	BatchCount  int             `json:"batchCount"`
}

// PrepareOutput is everything the Map stage fan-out needs.
type PrepareOutput struct {
	JobID        string            `json:"jobId"`
	DocumentKey  string            `json:"documentKey"`
	WorkDataKey  string            `json:"workDataKey"`
	Batches      []BatchDescriptor `json:"batches"`
	TotalBatches int               `json:"totalBatches"`
	StartTime    time.Time         `json:"startTime"`
	Stats        jobstore.Stats    `json:"stats"`
}

// MergeInput aggregates the terminal outcome of every dispatched batch.
type MergeInput struct {
	JobID       string         `json:"jobId"`
	DocumentKey string         `json:"documentKey"`
	WorkDataKey string         `json:"workDataKey"`
	Results     []BatchResult  `json:"batchResults"`
	Stats       jobstore.Stats `json:"stats"`
}

// MergeOutput is the job-completion payload.
type MergeOutput struct {
	JobID       string         `json:"jobId"`
	OutputKey   string         `json:"outputKey"`
	DownloadURL string         `json:"downloadUrl,omitempty"`
	Stats       jobstore.Stats `json:"stats"`
}

// batchPayload is the blob body for one stored batch.
type batchPayload struct {
	Texts []string `json:"texts"`
}

// translationPayload is the blob body for one stored translation map.
type translationPayload struct {
	Translations map[string]string `json:"translations"`
}
