// Package output provides JSONL export of translation results.
//
// An export is a stream of typed record envelopes: one entry per unique
// translated text plus a closing summary. Each line is a self-contained
// JSON object, so exports can be diffed, grepped, and fed into translation
// memory tooling without a full parse.
package output

import (
	"encoding/json"
	"errors"
	"time"
)

// Record type constants define the envelope types for JSONL output.
// These follow the pattern: sheetglot.<type>.v<version>
const (
	// TypeEntry identifies translated-text records.
	TypeEntry = "sheetglot.entry.v1"

	// TypeSummary identifies final summary records.
	TypeSummary = "sheetglot.summary.v1"
)

// Entry origins. They record which layer of the protocol resolved the text.
const (
	OriginBatch       = "batch"
	OriginInline      = "inline"
	OriginPassthrough = "passthrough"
)

// Record is the envelope for all JSONL output.
//
// Each line contains a Record with a type-specific payload in the Data
// field. The type field determines how to interpret Data.
type Record struct {
	// Type identifies the record type (e.g., "sheetglot.entry.v1").
	Type string `json:"type"`

	// TS is the timestamp when the record was created (RFC3339Nano).
	TS time.Time `json:"ts"`

	// JobID is the correlation ID for this translation job.
	JobID string `json:"job_id"`

	// Data contains the type-specific payload as raw JSON.
	Data json.RawMessage `json:"data"`
}

// EntryRecord is the data payload for one unique translated text.
type EntryRecord struct {
	// SourceText is the original cell text.
	SourceText string `json:"source_text"`

	// Translation is the resolved output value.
	Translation string `json:"translation"`

	// Origin records which protocol layer produced the value:
	// "batch", "inline", or "passthrough".
	Origin string `json:"origin"`
}

// SummaryRecord is the data payload for the closing summary line.
type SummaryRecord struct {
	TotalCells        int `json:"total_cells"`
	TranslatableCells int `json:"translatable_cells"`
	UniqueTexts       int `json:"unique_texts"`
	BatchCount        int `json:"batch_count"`
	TranslatedCells   int `json:"translated_cells"`
}

// ErrWriterClosed is returned when writing to a closed writer.
var ErrWriterClosed = errors.New("output writer is closed")

// WriteError wraps output failures with the failing operation.
type WriteError struct {
	Op  string
	Err error
}

func (e *WriteError) Error() string {
	return "output " + e.Op + ": " + e.Err.Error()
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
